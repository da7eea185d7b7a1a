package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/leadwizard/internal/config"
	"github.com/spf13/cobra"
)

var setupFlags struct {
	project  bool
	force    bool
	endpoint string
	agent    string
	siteKey  string
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create leadwizard configuration file",
	Long: `Create a leadwizard configuration file with sensible defaults.

By default, creates a global config at ~/.config/leadwizard/leadwizard.yml.
Use --project to create a project-local config in the current directory.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
	setupCmd.Flags().StringVar(&setupFlags.endpoint, "endpoint", "", "Base URL of the lead intake service")
	setupCmd.Flags().StringVar(&setupFlags.agent, "agent", "", "Agent display name for micro-site leads")
	setupCmd.Flags().StringVar(&setupFlags.siteKey, "site-key", "", "Verification challenge site key")
}

func runSetup(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := config.Default()
	if setupFlags.endpoint != "" {
		cfg.Endpoint = setupFlags.endpoint
	}
	cfg.Agent = setupFlags.agent
	cfg.Captcha.SiteKey = setupFlags.siteKey
	if err := cfg.Validate(); err != nil {
		return err
	}

	var err error
	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Config written to: %s\n\n", targetPath)
	_, _ = fmt.Fprintln(out, "Run 'leadwizard quote' to get started.")
	return nil
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
