package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"orgtasks/internal/app"
)

type deployBundlesOptions struct {
	Path string
}

func newDeployBundlesCommand() *cobra.Command {
	opts := deployBundlesOptions{}
	cmd := &cobra.Command{
		Use:   "deploy-bundles",
		Short: "Deploy every metadata bundle under a parent directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeployBundles(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Path, "path", "", "Parent directory containing the metadata bundle directories")
	_ = viper.BindPFlag("path", cmd.Flags().Lookup("path"))
	return cmd
}

func runDeployBundles(cmd *cobra.Command, opts deployBundlesOptions) error {
	service, err := newPlatformService()
	if err != nil {
		return err
	}
	result, err := service.DeployBundles(operationContext(cmd), app.DeployBundlesRequest{
		Path: resolveString(cmd, opts.Path, "path", "path"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("deployed %d bundles\n", len(result.Bundles))
	return nil
}
