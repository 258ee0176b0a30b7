package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/logomark/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View the effective configuration or write a starter config file.`,
	}

	configCmd.AddCommand(newConfigShowCmd(a))
	configCmd.AddCommand(newConfigInitCmd(a))
	configCmd.AddCommand(newConfigPathCmd(a))

	return configCmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shown := *a.cfg
			if shown.Publish.SecretKey != "" {
				shown.Publish.SecretKey = "********"
			}
			if a.printer.IsJSON() {
				return a.printer.JSON(shown)
			}
			data, err := shown.YAML()
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
}

func newConfigInitCmd(a *app) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with the default settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(a.configPath)
			if target == "" {
				p, err := config.Path()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = p
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.Default().Save(target); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			a.printer.Success("Wrote %s", target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newConfigPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Show the config file path",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := a.configPath
			if target == "" {
				p, err := config.Path()
				if err != nil {
					return err
				}
				target = p
			}
			fmt.Fprintln(a.stdout, target)
			return nil
		},
	}
}
