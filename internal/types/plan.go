package types

// ProjectInfo carries the repository metadata embedded verbatim in
// frozen deployment steps.
type ProjectInfo struct {
	RepoOwner string
	RepoName  string
	CommitTag string
}

// StepRef identifies the parent step a frozen plan hangs off: dotted
// path and dotted step number.
type StepRef struct {
	Path    string
	StepNum string
}

// DeploymentStep is one frozen bundle deployment, consumed by an
// external plan executor. Created once during freeze, immutable after.
type DeploymentStep struct {
	Name       string `yaml:"name"`
	Path       string `yaml:"path"`
	StepNum    string `yaml:"step_num"`
	Kind       string `yaml:"kind"`
	IsRequired bool   `yaml:"is_required"`
	TaskClass  string `yaml:"task_class"`
	TaskConfig string `yaml:"task_config"`
}

// BundleDependency is the single dependency entry declared by a frozen
// step's task config.
type BundleDependency struct {
	RepoOwner string `json:"repo_owner"`
	RepoName  string `json:"repo_name"`
	Tag       string `json:"tag"`
	Subfolder string `json:"subfolder"`
}
