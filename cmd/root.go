// Package cmd provides the command-line interface for the college portal server.
package cmd

import (
	"collegeportal/bootstrap"
	"collegeportal/routes"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X collegeportal/cmd.Version=..."
var Version = "dev"

// CLI output formatters
var (
	headerColor  = color.New(color.FgBlue, color.Bold)
	keyColor     = color.New(color.FgCyan)
	warningColor = color.New(color.FgYellow)
)

// Global flags
var (
	outputJSON bool
	noColor    bool
)

// NewRootCmd creates the root command. Without a subcommand it runs the server.
// groups binds the route groups; unset groups answer 501.
func NewRootCmd(groups routes.Set) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "collegeportal",
		Short: "College portal API server",
		Long: `College portal API server.

Loads API_VERSION, DB_STRING, NODE_ENV and PORT from the environment or a .env file,
mounts the college, student, login, categories, states, services and city route groups,
connects to MongoDB in the background and listens on port 5000.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.NewApp(bootstrap.WithRoutes(groups))
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newVersionCmd creates the 'version' subcommand
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("collegeportal %s\n", Version)
		},
	}
}
