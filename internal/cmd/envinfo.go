package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hayeswinckle/appraisals/internal/config"
	"github.com/hayeswinckle/appraisals/internal/lead"
	"github.com/hayeswinckle/appraisals/internal/mailer"
	"github.com/hayeswinckle/appraisals/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display environment, configuration and version information. Secrets are shown as (set) or (not set).",
	Run: func(cmd *cobra.Command, args []string) {
		log := observability.CLILogger
		version := crucible.GetVersion()
		identity := GetAppIdentity()

		log.Info("=== Appraisals Environment Information ===")
		log.Info("")

		log.Info("Application:")
		log.Info("  Name:       " + identity.BinaryName)
		log.Info("  Version:    " + versionInfo.Version)
		log.Info("  Commit:     " + versionInfo.Commit)
		log.Info("  Built:      " + versionInfo.BuildDate)
		log.Info("  Env Prefix: " + config.EnvPrefix() + "_")
		log.Info("")

		log.Info("SSOT:")
		log.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		log.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		log.Info("")

		log.Info("Runtime:")
		log.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		log.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		log.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		log.Info("")

		cfg, err := loadedConfig(cmd.Context())
		if err != nil {
			log.Warn("Config load failed", zap.Error(err))
			return
		}

		log.Info("Configuration:")
		log.Info("  Server:         "+fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), zap.String("host", cfg.Server.Host), zap.Int("port", cfg.Server.Port))
		log.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		log.Info(fmt.Sprintf("  Metrics:        %t (port %d)", cfg.Metrics.Enabled, cfg.Metrics.Port))
		log.Info("  Time Zone:      " + cfg.Site.TimeZone)
		log.Info("  Config File:    "+config.DefaultConfigPath(), zap.String("config_file", config.DefaultConfigPath()))
		log.Info("")

		log.Info("Rate Limit:")
		log.Info(fmt.Sprintf("  Max Requests:   %d", cfg.RateLimit.MaxRequests), zap.Int("max_requests", cfg.RateLimit.MaxRequests))
		log.Info("  Window:         " + cfg.RateLimit.Window.String())
		log.Info("  Cleanup:        " + cfg.RateLimit.CleanupInterval.String())
		log.Info("")

		log.Info("EmailJS:")
		log.Info("  Base URL:       " + cfg.Email.BaseURL)
		log.Info("  Timeout:        " + cfg.Email.Timeout.String())
		log.Info(fmt.Sprintf("  Throttle:       %.2f/s burst %d", cfg.Email.RatePerSecond, cfg.Email.Burst))
		accounts := cfg.Email.Accounts()
		for _, kind := range lead.Kinds {
			logAccount(string(kind), accounts[kind])
		}
		log.Info("")

		log.Info("=== End Environment Information ===")
	},
}

func logAccount(name string, account mailer.Account) {
	log := observability.CLILogger
	log.Info(fmt.Sprintf("  %s.service_id:  %s", name, orUnset(account.ServiceID)))
	log.Info(fmt.Sprintf("  %s.templates:   %s / %s", name, orUnset(account.CustomerTemplateID), orUnset(account.AgentTemplateID)))
	log.Info(fmt.Sprintf("  %s.agent_email: %s", name, orUnset(account.AgentEmail)))
	log.Info(fmt.Sprintf("  %s.public_key:  %s", name, setOrNot(account.PublicKey)))
	log.Info(fmt.Sprintf("  %s.private_key: %s", name, setOrNot(account.PrivateKey)))
}

func orUnset(value string) string {
	if value == "" {
		return "(unset)"
	}
	return value
}

func setOrNot(value string) string {
	if value == "" {
		return "(not set)"
	}
	return "(set)"
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
