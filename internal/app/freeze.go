package app

import (
	"context"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"orgtasks/internal/core"
)

// Freeze produces the ordered deployment plan for the bundles under the
// parent path without deploying anything. Every directory entry yields
// one step; the caller is trusted to pass a bundle root. The path must
// exist.
func (s Service) Freeze(ctx context.Context, req FreezeRequest) (FreezeResult, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return FreezeResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bundle path is required")
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return FreezeResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("bundle path not found").
			WithCause(err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	steps, err := core.BuildFreezeSteps(ctx, req.ParentStep, req.Project, path, names)
	if err != nil {
		return FreezeResult{}, err
	}

	if req.OutputPath != "" {
		if err := s.Plans.WritePlan(req.OutputPath, steps); err != nil {
			return FreezeResult{}, err
		}
	}
	return FreezeResult{Steps: steps}, nil
}
