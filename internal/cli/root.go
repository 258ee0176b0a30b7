package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
	"github.com/abdul-hamid-achik/logomark/internal/config"
	"github.com/abdul-hamid-achik/logomark/internal/logger"
	"github.com/abdul-hamid-achik/logomark/internal/output"
	"github.com/abdul-hamid-achik/logomark/internal/version"
	"github.com/spf13/cobra"
)

const (
	ExitOK         = 0
	ExitError      = 1
	ExitFileFailed = 2
)

// ExitCodeError carries a specific process exit status.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	return e.Err.Error()
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ec *ExitCodeError
	if errors.As(err, &ec) {
		return ec.Code
	}
	return ExitError
}

// app holds the state shared by every command of one invocation.
type app struct {
	configPath string
	jsonOutput bool
	quietMode  bool
	noColor    bool
	logLevel   string
	logFormat  string

	cfg     *config.Config
	printer *output.Printer

	stdout io.Writer
	stderr io.Writer
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "logomark",
		Short: "Stamp a logo onto every image and video in a folder",
		Long: `logomark overlays a logo in the bottom-right corner of every image and
video in an input folder and writes the results to an output folder.

Images are written as PNG, videos are re-encoded to H.264/AAC MP4.

Get started:
  logomark run stories --logo logo.png     # Watermark ./stories
  logomark probe clip.mov                  # Show how a file is classified
  logomark place --target 1080x1920 --logo-size 400x200`,
		Version: version.Full(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stdout = cmd.OutOrStdout()
			a.stderr = cmd.ErrOrStderr()
			a.printer = output.New(
				output.WithJSON(a.jsonOutput),
				output.WithQuiet(a.quietMode),
				output.WithNoColor(a.noColor),
				output.WithOutput(a.stdout),
				output.WithErrOutput(a.stderr),
			)

			if cmd.Annotations["skipConfigLoad"] == "true" {
				return nil
			}

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = a.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = a.logFormat
			}
			a.cfg = cfg

			log := logger.New(a.stderr, cfg.LogLevel, cfg.LogFormat)
			cmd.SetContext(logger.WithLogger(cmd.Context(), log))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default ~/.config/logomark/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output as JSON (for scripting)")
	rootCmd.PersistentFlags().BoolVar(&a.quietMode, "quiet", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.SetVersionTemplate("logomark version {{.Version}}\n")

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newProbeCmd(a))
	rootCmd.AddCommand(newPlaceCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newDoctorCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the command line and returns the process exit status.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errSilent) {
		prefix := "error"
		if apperror.IsConfiguration(err) {
			prefix = "configuration error"
		}
		fmt.Fprintf(stderr, "%s: %v\n", prefix, err)
	}
	return ExitCode(err)
}

// errSilent marks failures that were already reported to the user.
var errSilent = errors.New("already reported")

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "logomark %s\n", version.Full())
		},
	}
}
