package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/tether/internal/client"
	"github.com/spf13/cobra"
)

var bindingCmd = &cobra.Command{
	Use:     "binding",
	Short:   "Manage data-source bindings",
	GroupID: "bindings",
}

// parseMetadata converts key=value pairs into a map.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", p)
		}
		m[k] = v
	}
	return m, nil
}

var bindingRegisterCmd = &cobra.Command{
	Use:   "register <account-id> <type-id>",
	Short: "Register a binding for an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		displayName, _ := cmd.Flags().GetString("display-name")
		storage, _ := cmd.Flags().GetString("storage")
		maxFileSize, _ := cmd.Flags().GetInt64("max-file-size")
		rateLimit, _ := cmd.Flags().GetInt64("rate-limit")
		schemaID, _ := cmd.Flags().GetString("schema")
		metaPairs, _ := cmd.Flags().GetStringArray("meta")

		metadata, err := parseMetadata(metaPairs)
		if err != nil {
			return err
		}

		resp, err := tetherClient.RegisterBinding(context.Background(), &client.RegisterBindingRequest{
			AccountID:       args[0],
			TypeID:          args[1],
			DisplayName:     displayName,
			StorageLocation: storage,
			Metadata:        metadata,
			MaxFileSize:     maxFileSize,
			RateLimit:       rateLimit,
			SchemaID:        schemaID,
		})
		if err != nil {
			return fmt.Errorf("registering binding: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
		} else {
			printBindingTable(resp.Binding)
			printSecret(resp.Secret)
		}
		return nil
	},
}

var bindingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bindings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		accountID, _ := cmd.Flags().GetString("account")
		typeID, _ := cmd.Flags().GetString("type")
		includeInactive, _ := cmd.Flags().GetBool("all")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := tetherClient.ListBindings(context.Background(), &client.ListBindingsRequest{
			AccountID:       accountID,
			TypeID:          typeID,
			IncludeInactive: includeInactive,
			Limit:           limit,
			Offset:          offset,
		})
		if err != nil {
			return fmt.Errorf("listing bindings: %w", err)
		}

		if jsonOutput {
			printJSON(resp.Bindings)
		} else {
			printBindingListTable(resp.Bindings, resp.Total)
		}
		return nil
	},
}

var bindingShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a binding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := tetherClient.GetBinding(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching binding: %w", err)
		}

		if jsonOutput {
			printJSON(b)
		} else {
			printBindingTable(b)
		}
		return nil
	},
}

var bindingDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Soft-delete a binding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := tetherClient.DeleteBinding(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting binding: %w", err)
		}
		fmt.Printf("binding %s deleted\n", args[0])
		return nil
	},
}

var bindingRotateCmd = &cobra.Command{
	Use:   "rotate <id>",
	Short: "Rotate a binding's credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := tetherClient.RotateCredential(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("rotating credential: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
		} else {
			printBindingTable(resp.Binding)
			printSecret(resp.Secret)
		}
		return nil
	},
}

var bindingVerifyCmd = &cobra.Command{
	Use:   "verify <id> <secret>",
	Short: "Verify a binding credential",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := tetherClient.VerifyCredential(context.Background(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("verifying credential: %w", err)
		}

		if jsonOutput {
			printJSON(map[string]bool{"valid": ok})
			return nil
		}
		if ok {
			fmt.Println("valid")
			return nil
		}
		fmt.Println("invalid")
		return fmt.Errorf("credential rejected")
	},
}

var bindingEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable a binding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := tetherClient.EnableBinding(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("enabling binding: %w", err)
		}

		if jsonOutput {
			printJSON(b)
		} else {
			printBindingTable(b)
		}
		return nil
	},
}

var bindingDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable a binding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := tetherClient.DisableBinding(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("disabling binding: %w", err)
		}

		if jsonOutput {
			printJSON(b)
		} else {
			printBindingTable(b)
		}
		return nil
	},
}

var bindingConfigCmd = &cobra.Command{
	Use:   "config <id>",
	Short: "Show a binding's effective configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := tetherClient.EffectiveConfig(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching effective config: %w", err)
		}
		// Merged config is a JSON document; table output adds nothing.
		printJSON(cfg)
		return nil
	},
}

func init() {
	bindingRegisterCmd.Flags().String("display-name", "", "human-readable name")
	bindingRegisterCmd.Flags().String("storage", "", "storage location")
	bindingRegisterCmd.Flags().Int64("max-file-size", 0, "max file size in bytes (0 = unlimited)")
	bindingRegisterCmd.Flags().Int64("rate-limit", 0, "rate limit (0 = unlimited)")
	bindingRegisterCmd.Flags().String("schema", "", "config schema ID")
	bindingRegisterCmd.Flags().StringArrayP("meta", "m", nil, "metadata (key=value, repeatable)")

	bindingListCmd.Flags().StringP("account", "a", "", "filter by account ID")
	bindingListCmd.Flags().StringP("type", "t", "", "filter by connector type ID")
	bindingListCmd.Flags().Bool("all", false, "include inactive bindings")
	bindingListCmd.Flags().Int("limit", 0, "max results")
	bindingListCmd.Flags().Int("offset", 0, "result offset")

	bindingCmd.AddCommand(bindingRegisterCmd)
	bindingCmd.AddCommand(bindingListCmd)
	bindingCmd.AddCommand(bindingShowCmd)
	bindingCmd.AddCommand(bindingDeleteCmd)
	bindingCmd.AddCommand(bindingRotateCmd)
	bindingCmd.AddCommand(bindingVerifyCmd)
	bindingCmd.AddCommand(bindingEnableCmd)
	bindingCmd.AddCommand(bindingDisableCmd)
	bindingCmd.AddCommand(bindingConfigCmd)
}
