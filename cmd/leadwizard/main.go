package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/leadwizard/internal/logger"
	"github.com/mark3labs/leadwizard/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█   █▀▀ ▄▀█ █▀▄ █ █ █ █ ▀█ ▄▀█ █▀█ █▀▄"
	logoText2 = "█▄▄ ██▄ █▀█ █▄▀ ▀▄▀▄▀ █ █▄ █▀█ █▀▄ █▄▀"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "leadwizard",
	Short: "Insurance lead capture wizards for the terminal",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

leadwizard walks prospects through the brokerage's multi-step lead forms:
quote requests, consultation scheduling, agent recruitment and general
contact. Answers are validated step by step, an illustrative premium
estimate is shown for quotes, and the lead is posted to the brokerage's
intake endpoint once the verification challenge is passed.`

	for _, cmd := range leadCommands() {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(setupCmd)
}
