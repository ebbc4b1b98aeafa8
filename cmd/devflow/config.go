package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/devflow/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create a devflow.toml with default settings",
				Description: `Creates a new devflow.toml configuration file in the current directory
with sensible defaults. Use --output to specify a different location.

Examples:
  devflow config init                          # Creates devflow.toml
  devflow config init -o .devflow/devflow.toml # Creates config in .devflow
  devflow config init --force                  # Overwrite existing config file`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Value:   "devflow.toml",
						Usage:   "Output file path",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite existing config file",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the configuration from defaults and the config file.

Examples:
  devflow config show                 # Show effective config
  devflow -c devflow.toml config show # Show config from specific file`,
				Action: runConfigShow,
			},
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a devflow configuration file for syntax errors and invalid values.

Examples:
  devflow config validate                          # Validates default config locations
  devflow -c .devflow/devflow.toml config validate # Validates specific file`,
				Action: runConfigValidate,
			},
		},
	}
}

func loadOptions(c *cli.Context) []config.LoadOption {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	return opts
}

func runConfigInit(c *cli.Context) error {
	outputPath := c.String("output")
	force := c.Bool("force")

	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.New(color.FgGreen).Fprintf(c.App.Writer, "Created %s\n", outputPath)
	fmt.Fprintln(c.App.Writer, "Edit this file to customize analysis settings.")
	return nil
}

func generateDefaultConfig() (string, error) {
	content, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# DevFlow configuration\n")
	buf.WriteString("# Documentation: https://github.com/panbanda/devflow\n\n")
	buf.Write(content)
	return buf.String(), nil
}

func runConfigShow(c *cli.Context) error {
	result, err := config.LoadConfig(loadOptions(c)...)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if result.Source != "" {
		fmt.Fprintf(w, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(w, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(w, string(content))
	return nil
}

func runConfigValidate(c *cli.Context) error {
	w := c.App.Writer
	result, err := config.LoadConfig(loadOptions(c)...)
	if err != nil {
		color.New(color.FgRed).Fprintln(w, "Configuration validation failed:")
		fmt.Fprintf(w, "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		color.New(color.FgGreen).Fprintf(w, "Configuration valid: %s\n", result.Source)
	} else {
		color.New(color.FgYellow).Fprintln(w, "No config file found. Default configuration is valid.")
	}
	return nil
}
