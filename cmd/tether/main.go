package main

import (
	"os"

	"github.com/alfredjeanlab/tether/internal/client"
	"github.com/alfredjeanlab/tether/internal/ui"
	"github.com/spf13/cobra"
)

var (
	httpURL    string
	authToken  string
	jsonOutput bool

	tetherClient client.TetherClient
)

func defaultHTTPURL() string {
	if s := os.Getenv("TETHER_HTTP_URL"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultAuthToken() string {
	if s := os.Getenv("TETHER_AUTH_TOKEN"); s != "" {
		return s
	}
	return activeRemoteToken()
}

var rootCmd = &cobra.Command{
	Use:   "tether <command>",
	Short: "CLI client for the Tether connector registry",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		tetherClient = client.NewHTTPClient(httpURL, authToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if tetherClient != nil {
			tetherClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "HTTP server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultAuthToken(), "bearer token for authentication")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "types", Title: "Connector types:"},
		&cobra.Group{ID: "bindings", Title: "Bindings:"},
		&cobra.Group{ID: "schemas", Title: "Config schemas:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(bindingCmd)
	rootCmd.AddCommand(schemaCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if !ui.ShouldUseColor() {
		ui.ForceNoColor()
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
