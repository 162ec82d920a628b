package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"orgtasks/internal/ports"
	"orgtasks/internal/types"
)

type PlanFileAdapter struct{}

func NewPlanFileAdapter() PlanFileAdapter {
	return PlanFileAdapter{}
}

type planDocument struct {
	Steps []types.DeploymentStep `yaml:"steps"`
}

// WritePlan serializes the frozen plan as YAML. The path "-" writes to
// standard output.
func (a PlanFileAdapter) WritePlan(path string, steps []types.DeploymentStep) error {
	data, err := yaml.Marshal(planDocument{Steps: steps})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode deployment plan").
			WithCause(err)
	}
	if path == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write deployment plan").
				WithCause(err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write deployment plan file").
			WithCause(err)
	}
	return nil
}

var _ ports.PlanWriterPort = PlanFileAdapter{}
