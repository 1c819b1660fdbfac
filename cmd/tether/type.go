package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/tether/internal/client"
	"github.com/spf13/cobra"
)

var typeCmd = &cobra.Command{
	Use:     "type",
	Short:   "Manage connector types",
	GroupID: "types",
}

var typeRegisterCmd = &cobra.Command{
	Use:   "register <type-name>",
	Short: "Register a connector type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		displayName, _ := cmd.Flags().GetString("display-name")
		description, _ := cmd.Flags().GetString("description")
		mode, _ := cmd.Flags().GetString("mode")
		ownerTeam, _ := cmd.Flags().GetString("owner-team")
		docsURL, _ := cmd.Flags().GetString("docs-url")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		req := &client.RegisterTypeRequest{
			TypeName:    args[0],
			DisplayName: displayName,
			Description: description,
			Mode:        mode,
			OwnerTeam:   ownerTeam,
			DocsURL:     docsURL,
			Tags:        tags,
		}
		if cmd.Flags().Changed("persist") {
			persist, _ := cmd.Flags().GetBool("persist")
			req.DefaultPersist = &persist
		}
		if cmd.Flags().Changed("max-inline-size") {
			size, _ := cmd.Flags().GetInt64("max-inline-size")
			req.DefaultMaxInlineSize = &size
		}

		ct, err := tetherClient.RegisterType(context.Background(), req)
		if err != nil {
			return fmt.Errorf("registering connector type: %w", err)
		}

		if jsonOutput {
			printJSON(ct)
		} else {
			printTypeTable(ct)
		}
		return nil
	},
}

var typeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connector types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		tag, _ := cmd.Flags().GetString("tag")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := tetherClient.ListTypes(context.Background(), &client.ListTypesRequest{
			Mode:   mode,
			Tag:    tag,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return fmt.Errorf("listing connector types: %w", err)
		}

		if jsonOutput {
			printJSON(resp.ConnectorTypes)
		} else {
			printTypeListTable(resp.ConnectorTypes, resp.Total)
		}
		return nil
	},
}

var typeShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a connector type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ct, err := tetherClient.GetType(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching connector type: %w", err)
		}

		if jsonOutput {
			printJSON(ct)
		} else {
			printTypeTable(ct)
		}
		return nil
	},
}

var typeUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a connector type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.UpdateTypeRequest{}
		if cmd.Flags().Changed("display-name") {
			v, _ := cmd.Flags().GetString("display-name")
			req.DisplayName = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			req.Description = &v
		}
		if cmd.Flags().Changed("mode") {
			v, _ := cmd.Flags().GetString("mode")
			req.Mode = &v
		}
		if cmd.Flags().Changed("persist") {
			v, _ := cmd.Flags().GetBool("persist")
			req.DefaultPersist = &v
		}
		if cmd.Flags().Changed("max-inline-size") {
			v, _ := cmd.Flags().GetInt64("max-inline-size")
			req.DefaultMaxInlineSize = &v
		}
		if cmd.Flags().Changed("owner-team") {
			v, _ := cmd.Flags().GetString("owner-team")
			req.OwnerTeam = &v
		}
		if cmd.Flags().Changed("docs-url") {
			v, _ := cmd.Flags().GetString("docs-url")
			req.DocsURL = &v
		}
		if cmd.Flags().Changed("tag") {
			req.Tags, _ = cmd.Flags().GetStringSlice("tag")
		}

		ct, err := tetherClient.UpdateType(context.Background(), args[0], req)
		if err != nil {
			return fmt.Errorf("updating connector type: %w", err)
		}

		if jsonOutput {
			printJSON(ct)
		} else {
			printTypeTable(ct)
		}
		return nil
	},
}

func init() {
	typeRegisterCmd.Flags().String("display-name", "", "human-readable name")
	typeRegisterCmd.Flags().StringP("description", "d", "", "type description")
	typeRegisterCmd.Flags().StringP("mode", "m", "managed", "management mode (managed or unmanaged)")
	typeRegisterCmd.Flags().Bool("persist", false, "default document persistence")
	typeRegisterCmd.Flags().Int64("max-inline-size", 0, "default max inline document size in bytes")
	typeRegisterCmd.Flags().String("owner-team", "", "owning team")
	typeRegisterCmd.Flags().String("docs-url", "", "documentation URL")
	typeRegisterCmd.Flags().StringSliceP("tag", "t", nil, "tags (repeatable)")

	typeListCmd.Flags().StringP("mode", "m", "", "filter by management mode")
	typeListCmd.Flags().StringP("tag", "t", "", "filter by tag")
	typeListCmd.Flags().Int("limit", 0, "max results")
	typeListCmd.Flags().Int("offset", 0, "result offset")

	typeUpdateCmd.Flags().String("display-name", "", "human-readable name")
	typeUpdateCmd.Flags().StringP("description", "d", "", "type description")
	typeUpdateCmd.Flags().StringP("mode", "m", "", "management mode (managed or unmanaged)")
	typeUpdateCmd.Flags().Bool("persist", false, "default document persistence")
	typeUpdateCmd.Flags().Int64("max-inline-size", 0, "default max inline document size in bytes")
	typeUpdateCmd.Flags().String("owner-team", "", "owning team")
	typeUpdateCmd.Flags().String("docs-url", "", "documentation URL")
	typeUpdateCmd.Flags().StringSliceP("tag", "t", nil, "replacement tag set (repeatable)")

	typeCmd.AddCommand(typeRegisterCmd)
	typeCmd.AddCommand(typeListCmd)
	typeCmd.AddCommand(typeShowCmd)
	typeCmd.AddCommand(typeUpdateCmd)
}
