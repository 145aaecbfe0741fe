package cmd

import (
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

// ExitWithCode logs err with foundry exit code metadata and exits. logger
// may be nil for failures before logging is initialized.
func ExitWithCode(logger *logging.Logger, exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		os.Exit(int(exitCode))
	}

	if logger == nil {
		writeFatal(msg, err)
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
		os.Exit(info.Code)
	}

	fields := []zap.Field{
		zap.Int("exit_code", info.Code),
		zap.String("exit_name", info.Name),
		zap.String("exit_category", info.Category),
	}
	if envelope, ok := err.(*errors.ErrorEnvelope); ok {
		fields = append(fields,
			zap.String("error_code", envelope.Code),
			zap.String("error_message", envelope.Message),
			zap.String("correlation_id", envelope.CorrelationID),
		)
		if envelope.Context != nil {
			fields = append(fields, zap.Any("error_context", envelope.Context))
		}
		if original, ok := envelope.Original.(error); ok {
			err = original
		}
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Error(msg, fields...)

	os.Exit(info.Code)
}

// ExitWithCodeStderr writes to stderr and exits. Use it before the logger exists.
func ExitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		os.Exit(int(exitCode))
	}

	writeFatal(msg, err)
	fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
	os.Exit(info.Code)
}

func writeFatal(msg string, err error) {
	switch e := err.(type) {
	case nil:
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	case *errors.ErrorEnvelope:
		fmt.Fprintf(os.Stderr, "FATAL: %s [%s]: %s\n", msg, e.Code, e.Message)
		if original, ok := e.Original.(error); ok {
			fmt.Fprintf(os.Stderr, "Underlying error: %v\n", original)
		}
	default:
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	}
}
