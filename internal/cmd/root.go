package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hayeswinckle/appraisals/internal/appid"
	"github.com/hayeswinckle/appraisals/internal/config"
	"github.com/hayeswinckle/appraisals/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// App identity loaded from the embedded app.yaml
	appIdentity *appidentity.Identity

	// Loaded by initConfig before any subcommand runs
	appConfig *config.Config

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// GetAppIdentity returns the loaded app identity (only valid after initConfig)
func GetAppIdentity() *appidentity.Identity {
	return appIdentity
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	// NOTE: initConfig() overwrites these from app identity.
	Use:   filepath.Base(os.Args[0]),
	Short: "HayesWinckle appraisal lead site",
	Long: `Serves the HayesWinckle home, property appraisal and rental appraisal
pages and forwards each valid submission to EmailJS.

Use the subcommands to perform specific operations.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Disable global telemetry early so CLI commands never emit metrics to
	// stdout. serve initializes the exporter later.
	if sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: false}); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	// Load app identity early for help text (before cobra processes --help)
	if identity, err := appid.Get(context.Background()); err == nil && identity != nil {
		appIdentity = identity
		applyIdentity(identity)
	}

	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; defaults to app identity config path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func applyIdentity(identity *appidentity.Identity) {
	if identity.BinaryName != "" {
		rootCmd.Use = identity.BinaryName
	}
	if identity.Description != "" {
		rootCmd.Short = identity.Description
		rootCmd.Long = fmt.Sprintf("%s - %s\n\nUse the subcommands to perform specific operations.", identity.BinaryName, identity.Description)
	}
	if f := rootCmd.PersistentFlags().Lookup("config"); f != nil && identity.ConfigName != "" {
		f.Usage = fmt.Sprintf("config file (default is $XDG_CONFIG_HOME/%s/config.yaml)", identity.ConfigName)
	}
}

// initConfig loads app identity, the CLI logger and the layered config.
func initConfig() {
	ctx := context.Background()
	identity, err := appid.Get(ctx)
	if err != nil {
		ExitWithCodeStderr(foundry.ExitFileNotFound, "Failed to load app identity", err)
	}
	appIdentity = identity
	applyIdentity(identity)

	observability.InitCLILogger(identity.BinaryName, verbose || viper.GetBool("verbose"))

	cfg, err := config.LoadFile(ctx, cfgFile)
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to load configuration", err)
	}
	appConfig = cfg

	if verbose {
		path := cfgFile
		if path == "" {
			path = config.DefaultConfigPath()
		}
		observability.CLILogger.Debug("Configuration loaded",
			zap.String("config_path", path),
			zap.String("env_prefix", config.EnvPrefix()+"_"))
	}
}

// loadedConfig returns the config loaded by initConfig, loading defaults when
// a command runs outside cobra's initialization (tests).
func loadedConfig(ctx context.Context) (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	cfg, err := config.LoadFile(ctx, cfgFile)
	if err != nil {
		return nil, err
	}
	appConfig = cfg
	return cfg, nil
}
