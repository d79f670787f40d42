// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"stratum-cli/internal/config"
	"stratum-cli/internal/issue"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stratum configuration",
	Long: `Manage stratum configuration.

Configuration is stored in:
  - Linux: ~/.config/stratum/config.cue
  - macOS: ~/Library/Application Support/stratum/config.cue
  - Windows: %APPDATA%\stratum\config.cue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfigFile()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value and write it to the config file",
		Long: `Set a configuration value and write it to the config file.

Keys: container_engine, strict_identities, keep_failed_containers,
pull.retries, pull.always, ui.color_scheme, ui.verbose`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(args[0], args[1])
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	})
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		renderIssue(issue.ConfigLoadFailedId)
		return err
	}

	keyStyle := StepStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	if path := config.GetConfigPath(); path != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", keyStyle.Render("container_engine"), valueStyle.Render(string(cfg.ContainerEngine)))
	fmt.Printf("%s: %s\n", keyStyle.Render("strict_identities"), valueStyle.Render(fmt.Sprintf("%v", cfg.StrictIdentities)))
	fmt.Printf("%s: %s\n", keyStyle.Render("keep_failed_containers"), valueStyle.Render(fmt.Sprintf("%v", cfg.KeepFailedContainers)))

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("pull"))
	fmt.Printf("  retries: %s\n", valueStyle.Render(fmt.Sprintf("%d", cfg.Pull.Retries)))
	fmt.Printf("  always: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Pull.Always)))

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("ui"))
	fmt.Printf("  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Printf("  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func initConfigFile() error {
	if err := config.CreateDefaultConfig(); err != nil {
		return err
	}
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	fmt.Println(SuccessStyle.Render("Configuration ready: ") + path)
	return nil
}

// setConfigValue updates one key on a copy of the loaded configuration,
// validates the result, and persists it.
func setConfigValue(key, value string) error {
	cfg, err := config.Load()
	if err != nil {
		renderIssue(issue.ConfigLoadFailedId)
		return err
	}
	updated := *cfg

	switch key {
	case "container_engine":
		updated.ContainerEngine = config.ContainerEngine(value)
	case "strict_identities":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects a boolean, got %q", key, value)
		}
		updated.StrictIdentities = b
	case "keep_failed_containers":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects a boolean, got %q", key, value)
		}
		updated.KeepFailedContainers = b
	case "pull.retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s expects an integer, got %q", key, value)
		}
		updated.Pull.Retries = n
	case "pull.always":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects a boolean, got %q", key, value)
		}
		updated.Pull.Always = b
	case "ui.color_scheme":
		updated.UI.ColorScheme = config.ColorScheme(value)
	case "ui.verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects a boolean, got %q", key, value)
		}
		updated.UI.Verbose = b
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}

	if valid, errs := updated.IsValid(); !valid {
		return errors.Join(errs...)
	}
	if err := config.Save(&updated); err != nil {
		return err
	}

	fmt.Println(SuccessStyle.Render("Configuration updated: ") + key + " = " + value)
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	fmt.Println(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, SubtitleStyle.Render("(file does not exist yet; run 'stratum config init')"))
	}
	return nil
}
