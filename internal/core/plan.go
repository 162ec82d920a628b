package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"orgtasks/internal/types"
)

// UpdateDependenciesTask is the executor task identifier declared by
// every frozen bundle step.
const UpdateDependenciesTask = "orgtasks.deploy.UpdateDependencies"

type dependencyTaskConfig struct {
	Options struct {
		Dependencies []types.BundleDependency `json:"dependencies"`
	} `json:"options"`
}

// BuildFreezeSteps expands directory entries into an ordered sequence
// of deployment steps hanging off the parent step. Entries are sorted
// lexicographically (byte order), the same order a live deploy visits,
// and numbered from 1. Output is byte-identical across calls for fixed
// inputs.
func BuildFreezeSteps(ctx context.Context, parent types.StepRef, project types.ProjectInfo, path string, entries []string) ([]types.DeploymentStep, error) {
	names := make([]string, len(entries))
	copy(names, entries)
	sort.Strings(names)

	steps := make([]types.DeploymentStep, 0, len(names))
	for i, name := range names {
		config := dependencyTaskConfig{}
		config.Options.Dependencies = []types.BundleDependency{{
			RepoOwner: project.RepoOwner,
			RepoName:  project.RepoName,
			Tag:       project.CommitTag,
			Subfolder: path + "/" + name,
		}}
		encoded, err := json.Marshal(config)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode step task config").
				WithCause(err)
		}
		steps = append(steps, types.DeploymentStep{
			Name:       fmt.Sprintf("Deploy %s/%s", path, name),
			Path:       fmt.Sprintf("%s.%s", parent.Path, name),
			StepNum:    fmt.Sprintf("%s.%d", parent.StepNum, i+1),
			Kind:       "metadata",
			IsRequired: true,
			TaskClass:  UpdateDependenciesTask,
			TaskConfig: string(encoded),
		})
	}

	log.Ctx(ctx).Debug().Int("steps", len(steps)).Msg("deployment plan frozen")
	return steps, nil
}
