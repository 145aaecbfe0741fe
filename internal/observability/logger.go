package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

var (
	// CLILogger is used for CLI commands (SIMPLE profile)
	CLILogger *logging.Logger

	// ServerLogger is used by serve and the request path
	ServerLogger *logging.Logger
)

// ServerLogOptions configures the server logger.
type ServerLogOptions struct {
	Service     string
	Level       string // trace, debug, info, warn, error
	Profile     string // STRUCTURED (json) or SIMPLE (console)
	Namespace   string
	Environment string
}

// InitCLILogger initializes the CLI logger with SIMPLE profile
func InitCLILogger(serviceName string, verbose bool) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize CLI logger", err)
	}

	if verbose {
		logger.SetLevel(logging.DEBUG)
	}

	CLILogger = logger
}

// InitServerLogger initializes ServerLogger. The STRUCTURED profile writes
// JSON with request correlation; SIMPLE writes plain console lines.
func InitServerLogger(opts ServerLogOptions) {
	logger, err := logging.New(serverLoggerConfig(opts))
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize server logger", err)
	}
	ServerLogger = logger
}

func serverLoggerConfig(opts ServerLogOptions) *logging.LoggerConfig {
	staticFields := make(map[string]any)
	if opts.Namespace != "" {
		staticFields["namespace"] = opts.Namespace
	}

	environment := opts.Environment
	if environment == "" {
		environment = "production"
	}

	if strings.EqualFold(opts.Profile, "SIMPLE") {
		return &logging.LoggerConfig{
			Profile:      logging.ProfileSimple,
			DefaultLevel: parseLogLevel(opts.Level),
			Service:      opts.Service,
			Environment:  environment,
			StaticFields: staticFields,
			Sinks: []logging.SinkConfig{
				{
					Type:   "console",
					Format: "console",
					Console: &logging.ConsoleSinkConfig{
						Stream:   "stderr",
						Colorize: false,
					},
				},
			},
		}
	}

	return &logging.LoggerConfig{
		Profile:      logging.ProfileStructured,
		DefaultLevel: parseLogLevel(opts.Level),
		Service:      opts.Service,
		Environment:  environment,
		StaticFields: staticFields,
		Middleware: []logging.MiddlewareConfig{
			{
				Name:    "correlation",
				Enabled: true,
				Order:   100,
				Config:  make(map[string]any),
			},
		},
		Sinks: []logging.SinkConfig{
			{
				Type:   "console",
				Format: "json",
				Console: &logging.ConsoleSinkConfig{
					Stream:   "stderr",
					Colorize: false,
				},
			},
		},
		EnableCaller:     true,
		EnableStacktrace: true,
	}
}

// parseLogLevel converts string log level to logging severity string
func parseLogLevel(levelStr string) string {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return "TRACE"
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARN"
	case "error":
		return "ERROR"
	default:
		return "INFO"
	}
}

// MaskedEmail logs an address with the local part reduced to its first
// character, e.g. j***@example.com.
func MaskedEmail(key, email string) zap.Field {
	return zap.String(key, maskEmail(email))
}

func maskEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// exitWithCodeStderr exits with a semantic exit code, writing to stderr.
// Used for logger failures, before any logger exists.
func exitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: %s (exit code: %d)\n", msg, exitCode)
		}
		os.Exit(int(exitCode))
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	}
	fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)

	os.Exit(info.Code)
}
