package cli

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"orgtasks/internal/adapters"
	"orgtasks/internal/app"
	"orgtasks/internal/types"
)

type freezeOptions struct {
	Path      string
	StepPath  string
	StepNum   string
	Output    string
	RepoOwner string
	RepoName  string
	RepoTag   string
}

func newFreezeCommand() *cobra.Command {
	opts := freezeOptions{}
	cmd := &cobra.Command{
		Use:   "freeze",
		Short: "Produce the ordered deployment plan without deploying",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFreeze(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Path, "path", "", "Parent directory containing the metadata bundle directories")
	cmd.Flags().StringVar(&opts.StepPath, "step-path", "deploy_bundles", "Dotted path of the parent plan step")
	cmd.Flags().StringVar(&opts.StepNum, "step-num", "1", "Dotted number of the parent plan step")
	cmd.Flags().StringVar(&opts.Output, "output", "-", "Plan output file (- for stdout)")
	cmd.Flags().StringVar(&opts.RepoOwner, "repo-owner", "", "Project repository owner")
	cmd.Flags().StringVar(&opts.RepoName, "repo-name", "", "Project repository name")
	cmd.Flags().StringVar(&opts.RepoTag, "repo-tag", "", "Project repository commit tag")
	_ = viper.BindPFlag("path", cmd.Flags().Lookup("path"))
	_ = viper.BindPFlag("step_path", cmd.Flags().Lookup("step-path"))
	_ = viper.BindPFlag("step_num", cmd.Flags().Lookup("step-num"))
	_ = viper.BindPFlag("plan_output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("repo_owner", cmd.Flags().Lookup("repo-owner"))
	_ = viper.BindPFlag("repo_name", cmd.Flags().Lookup("repo-name"))
	_ = viper.BindPFlag("repo_tag", cmd.Flags().Lookup("repo-tag"))
	return cmd
}

func runFreeze(cmd *cobra.Command, opts freezeOptions) error {
	project := types.ProjectInfo{
		RepoOwner: resolveString(cmd, opts.RepoOwner, "repo_owner", "repo-owner"),
		RepoName:  resolveString(cmd, opts.RepoName, "repo_name", "repo-name"),
		CommitTag: resolveString(cmd, opts.RepoTag, "repo_tag", "repo-tag"),
	}
	if strings.TrimSpace(project.RepoOwner) == "" || strings.TrimSpace(project.RepoName) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repo owner and repo name are required to freeze a plan")
	}

	// Freezing never touches the platform, only the filesystem.
	service := app.Service{Plans: adapters.NewPlanFileAdapter()}
	output := resolveString(cmd, opts.Output, "plan_output", "output")
	result, err := service.Freeze(operationContext(cmd), app.FreezeRequest{
		Path: resolveString(cmd, opts.Path, "path", "path"),
		ParentStep: types.StepRef{
			Path:    resolveString(cmd, opts.StepPath, "step_path", "step-path"),
			StepNum: resolveString(cmd, opts.StepNum, "step_num", "step-num"),
		},
		Project:    project,
		OutputPath: output,
	})
	if err != nil {
		return err
	}
	if output != "-" {
		fmt.Printf("froze %d deployment steps to %s\n", len(result.Steps), output)
	}
	return nil
}
