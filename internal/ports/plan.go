package ports

import "orgtasks/internal/types"

// PlanWriterPort serializes a frozen deployment plan. The path "-"
// addresses standard output.
type PlanWriterPort interface {
	WritePlan(path string, steps []types.DeploymentStep) error
}
