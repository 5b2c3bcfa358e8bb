package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/secrets"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config file and check that credentials resolve",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		_, vr := config.NormalizeAndValidate(a.cfg)
		w := cmd.OutOrStdout()
		for _, warn := range vr.Warnings {
			fmt.Fprintf(w, "warning: %s\n", warn)
		}
		if err := vr.Err(); err != nil {
			return err
		}
		if _, err := secrets.Resolve(a.cfg); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: ok\n", a.cfgPath)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		abs, _ := filepath.Abs(a.cfgPath)
		fmt.Fprintln(cmd.OutOrStdout(), abs)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (env overrides applied)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(a.cfg)
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
}
