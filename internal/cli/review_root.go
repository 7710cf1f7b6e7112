// Package cli implements reviewctl, a command line front end to the
// analysis pipeline and the reply composer.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bravo6co-debug/ai-riview/config"
	"github.com/bravo6co-debug/ai-riview/internal/bootstrap"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
)

const version = "0.1.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

// Run executes the root command and returns an exit code.
func Run(args []string) int {
	root := NewRootCmd(os.Stdout)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if isUsageError(err) {
			return ExitUsageError
		}
		return ExitRuntimeError
	}
	return ExitSuccess
}

// NewRootCmd builds the command tree writing results to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Analyze Korean store reviews and draft owner replies",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	root.SetOut(out)

	root.AddCommand(newScoreCmd())
	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newReplyCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print reviewctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reviewctl version %s\n", version)
		},
	})
	return root
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func isUsageError(err error) bool {
	_, ok := err.(usageError)
	return ok || strings.HasPrefix(err.Error(), "unknown command") || strings.HasPrefix(err.Error(), "accepts ")
}

// reviewText joins the positional args into the review body.
func reviewText(args []string) (string, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return "", usageError{"review text is required"}
	}
	return text, nil
}

// withDependencies loads config from the environment and runs fn against
// the wired services. Logs go to stderr so stdout stays machine readable.
func withDependencies(ctx context.Context, fn func(deps *bootstrap.Dependencies) error) error {
	logger.Init(logger.Config{Level: logger.LevelWarn, Output: os.Stderr, Service: "reviewctl", Console: true})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	deps, cleanup, err := bootstrap.NewDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer cleanup()

	return fn(deps)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
