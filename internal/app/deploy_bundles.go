package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// DeployBundles deploys every immediate subdirectory of the parent path
// as an independent metadata bundle, in lexicographic order. A missing
// or non-directory path is not an error: bundle directories are
// optional inputs, so it warns and deploys nothing. The first deploy
// failure aborts the remaining bundles and propagates unchanged.
func (s Service) DeployBundles(ctx context.Context, req DeployBundlesRequest) (DeployBundlesResult, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return DeployBundlesResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bundle path is required")
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		cwd, err := os.Getwd()
		if err != nil {
			return DeployBundlesResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to resolve working directory").
				WithCause(err)
		}
		resolved = filepath.Join(cwd, path)
	}

	log.Ctx(ctx).Info().Str("path", resolved).Msg("deploying all metadata bundles")

	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		log.Ctx(ctx).Warn().Str("path", resolved).Msg("bundle path not found, skipping")
		return DeployBundlesResult{}, nil
	}

	// os.ReadDir returns entries sorted by name in byte order, the
	// same order Freeze numbers its steps in.
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return DeployBundlesResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list bundle directory").
			WithCause(err)
	}

	var deployed []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		log.Ctx(ctx).Info().Str("bundle", path+"/"+entry.Name()).Msg("deploying bundle")
		if err := s.Deployer.Deploy(ctx, filepath.Join(resolved, entry.Name())); err != nil {
			return DeployBundlesResult{}, err
		}
		deployed = append(deployed, entry.Name())
	}
	return DeployBundlesResult{Bundles: deployed}, nil
}
