package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	errwrap "github.com/hayeswinckle/appraisals/internal/errors"
	"github.com/hayeswinckle/appraisals/internal/lead"
	"github.com/hayeswinckle/appraisals/internal/observability"
	"github.com/hayeswinckle/appraisals/internal/site"
)

var healthURL string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long: `Verify the application can start: configuration, form catalog, page
templates and EmailJS accounts. With --url, also probe a running server's
readiness endpoint.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := observability.CLILogger
		if logger == nil {
			ExitWithCodeStderr(foundry.ExitConfigInvalid, "Logger not initialized", errwrap.NewConfigInvalidError("Logger not initialized"))
			return
		}
		logger.Info("Running health check...")

		if versionInfo.Version == "" {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewConfigInvalidError("Version information missing"))
			return
		}
		logger.Info("✅ Version information available", zap.String("version", versionInfo.Version))

		cfg, err := loadedConfig(cmd.Context())
		if err != nil {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Configuration invalid", err)
			return
		}
		logger.Info("✅ Configuration loaded")

		catalog, err := lead.LoadCatalog()
		if err != nil {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Form catalog invalid", err)
			return
		}
		if _, err := site.NewRenderer(catalog); err != nil {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Page templates invalid", err)
			return
		}
		logger.Info("✅ Form catalog and templates parsed", zap.Int("forms", len(catalog.Forms)))

		if err := cfg.Email.ValidateAccounts(); err != nil {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "EmailJS accounts incomplete", errwrap.WrapConfigInvalid(cmd.Context(), err, "email configuration invalid"))
			return
		}
		logger.Info("✅ EmailJS accounts configured")

		if healthURL != "" {
			if err := probeReady(cmd.Context(), healthURL); err != nil {
				ExitWithCode(logger, foundry.ExitExternalServiceUnavailable, "Server not ready", err)
				return
			}
			logger.Info("✅ Server ready", zap.String("url", healthURL))
		}

		logger.Info("")
		logger.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVar(&healthURL, "url", "", "base URL of a running server to probe (e.g. http://localhost:8080)")
}

func probeReady(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	endpoint := strings.TrimRight(baseURL, "/") + "/health/ready"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck // status only

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", endpoint, resp.StatusCode)
	}
	return nil
}
