package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alfredjeanlab/tether/internal/client"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:     "schema",
	Short:   "Manage config schemas",
	GroupID: "schemas",
}

// readSchemaFile reads and validates a JSON schema document from path.
func readSchemaFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s is not valid JSON", path)
	}
	return data, nil
}

var schemaPublishCmd = &cobra.Command{
	Use:   "publish <type-id> <instance-schema-file>",
	Short: "Publish a config schema version for a connector type",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetInt("version")
		nodeFile, _ := cmd.Flags().GetString("node-schema")

		instanceSchema, err := readSchemaFile(args[1])
		if err != nil {
			return err
		}

		req := &client.PublishSchemaRequest{
			TypeID:         args[0],
			Version:        version,
			InstanceSchema: instanceSchema,
		}
		if nodeFile != "" {
			nodeSchema, err := readSchemaFile(nodeFile)
			if err != nil {
				return err
			}
			req.NodeSchema = nodeSchema
		}

		cs, err := tetherClient.PublishSchema(context.Background(), req)
		if err != nil {
			return fmt.Errorf("publishing schema: %w", err)
		}

		if jsonOutput {
			printJSON(cs)
		} else {
			printSchemaTable(cs)
		}
		return nil
	},
}

var schemaListCmd = &cobra.Command{
	Use:   "list <type-id>",
	Short: "List schema versions for a connector type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schemas, err := tetherClient.ListSchemas(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("listing schemas: %w", err)
		}

		if jsonOutput {
			printJSON(schemas)
		} else {
			printSchemaListTable(schemas)
		}
		return nil
	},
}

var schemaShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a config schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cs, err := tetherClient.GetSchema(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching schema: %w", err)
		}

		if jsonOutput {
			printJSON(cs)
		} else {
			printSchemaTable(cs)
		}
		return nil
	},
}

var schemaDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a config schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := tetherClient.DeleteSchema(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting schema: %w", err)
		}
		fmt.Printf("schema %s deleted\n", args[0])
		return nil
	},
}

func init() {
	schemaPublishCmd.Flags().Int("version", 0, "schema version (0 = next available)")
	schemaPublishCmd.Flags().String("node-schema", "", "path to the node-level schema file")

	schemaCmd.AddCommand(schemaPublishCmd)
	schemaCmd.AddCommand(schemaListCmd)
	schemaCmd.AddCommand(schemaShowCmd)
	schemaCmd.AddCommand(schemaDeleteCmd)
}
