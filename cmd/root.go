// Package cmd wires the termai command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/termai/termai/internal/build"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   build.Slug,
	Short: "AI-assisted terminal with scriptable workflows",
	Long: `Termai owns a PTY session shared between a human and an AI agent,
runs workflows of shell, AI, branch and file steps, and classifies
what the user is asking for from the live terminal context.
`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $XDG_CONFIG_HOME/termai/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-error logs")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(flowsCmd())
	rootCmd.AddCommand(executionsCmd())
	rootCmd.AddCommand(probeCmd())
	rootCmd.AddCommand(classifyCmd())
}
