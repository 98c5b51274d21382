package cli

import (
	"github.com/spf13/cobra"

	"github.com/madfam-org/ticketbooth/internal/client"
)

// Version is overridden at build time.
var Version = "dev"

func NewRootCommand(cfg *Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ticketbooth",
		Short: "Issue and inspect short-lived access tokens",
		Long: `ticketbooth talks to a ticketbooth-api server to mint opaque access
tokens for a user and list the ones that have not expired yet.

The API key is read from --api-key or TICKETBOOTH_API_KEY.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if url, _ := cmd.Flags().GetString("api-url"); url != "" {
				cfg.APIURL = url
			}
			if key, _ := cmd.Flags().GetString("api-key"); key != "" {
				cfg.APIKey = key
			}
			if output, _ := cmd.Flags().GetString("output"); output != "" {
				cfg.Output = output
			}
			return validateOutput(cfg.Output)
		},
	}

	rootCmd.PersistentFlags().String("api-url", cfg.APIURL, "ticketbooth-api base URL")
	rootCmd.PersistentFlags().String("api-key", "", "API key (or set TICKETBOOTH_API_KEY)")
	rootCmd.PersistentFlags().StringP("output", "o", cfg.Output, "Output format (table, json, yaml)")

	newClient := func() *client.APIClient {
		return client.NewAPIClient(cfg.APIURL, cfg.APIKey)
	}

	rootCmd.AddCommand(NewTokensCommand(cfg, newClient))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("ticketbooth version %s\n", Version)
		},
	}
}
