package cli

import (
	"context"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"orgtasks/internal/adapters"
	"orgtasks/internal/app"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "ORGTASKS"

const defaultAPIVersion = "60.0"

type RootConfig struct {
	ConfigFile string
	LogLevel   string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:     "orgtasks",
		Short:   "Deploy metadata bundles and user assets to a CRM org",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	cmd.PersistentFlags().String("instance-url", "", "Platform instance URL")
	cmd.PersistentFlags().String("access-token", "", "Platform access token")
	cmd.PersistentFlags().String("api-version", defaultAPIVersion, "Platform API version")
	cmd.PersistentFlags().Int("platform-timeout", 60, "Platform HTTP timeout in seconds")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("instance_url", cmd.PersistentFlags().Lookup("instance-url"))
	_ = viper.BindPFlag("access_token", cmd.PersistentFlags().Lookup("access-token"))
	_ = viper.BindPFlag("api_version", cmd.PersistentFlags().Lookup("api-version"))
	_ = viper.BindPFlag("platform_timeout_sec", cmd.PersistentFlags().Lookup("platform-timeout"))

	cmd.AddCommand(newDeployBundlesCommand())
	cmd.AddCommand(newFreezeCommand())
	cmd.AddCommand(newUploadPhotoCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("orgtasks")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/orgtasks")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// operationContext stamps each invocation with an operation id so every
// log line of one run correlates.
func operationContext(cmd *cobra.Command) context.Context {
	logger := log.Logger.With().Str("operation_id", uuid.NewString()).Logger()
	return logger.WithContext(cmd.Context())
}

// newPlatformService wires the app service against the live platform
// adapters. Used by the commands that talk to the org; freeze builds
// its own plan-only service.
func newPlatformService() (app.Service, error) {
	instanceURL := strings.TrimSpace(viper.GetString("instance_url"))
	if instanceURL == "" {
		return app.Service{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("platform instance url is required")
	}
	accessToken := strings.TrimSpace(viper.GetString("access_token"))
	if accessToken == "" {
		return app.Service{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("platform access token is required")
	}
	apiVersion := strings.TrimSpace(viper.GetString("api_version"))
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	if _, err := semver.NewVersion(apiVersion); err != nil {
		return app.Service{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("platform api version is not a valid version").
			WithCause(err)
	}
	timeoutSec := viper.GetInt("platform_timeout_sec")

	return app.Service{
		Deployer: adapters.NewRestDeployAdapter(adapters.RestDeployConfig{
			InstanceURL: instanceURL,
			AccessToken: accessToken,
			APIVersion:  apiVersion,
			TimeoutSec:  timeoutSec,
		}),
		Records: adapters.NewRestRecordAdapter(adapters.RestRecordConfig{
			InstanceURL: instanceURL,
			AccessToken: accessToken,
			APIVersion:  apiVersion,
			TimeoutSec:  timeoutSec,
		}),
		Plans: adapters.NewPlanFileAdapter(),
	}, nil
}

func exitCodeForError(err error) int {
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument:
		return 2
	case errbuilder.CodeFailedPrecondition:
		return 3
	case errbuilder.CodeNotFound:
		return 4
	case errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
