package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"collegeportal/config"

	"github.com/spf13/cobra"
)

// newConfigCmd creates the 'config' subcommand
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Print the configuration the server would start with, after .env, config.yaml
and environment variables are applied. Credentials in DB_STRING are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if outputJSON {
				return writeSettingsJSON(cmd.OutOrStdout(), cfg.Settings())
			}
			return writeSettingsTable(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	return cmd
}

func writeSettingsJSON(w io.Writer, settings []config.Setting) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(settings)
}

func writeSettingsTable(w io.Writer, cfg *config.Config) error {
	headerColor.Fprintln(w, "College portal configuration")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range cfg.Settings() {
		value := s.Value
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(tw, "%s\t%s\n", keyColor.Sprint(s.Key), value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, ignored := cfg.ListenPort(); ignored {
		warningColor.Fprintf(w, "\nPORT=%s is ignored, the server listens on %d\n", cfg.Port, config.DefaultListenPort)
	}
	return nil
}
