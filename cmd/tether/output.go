package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/tether/internal/model"
	"github.com/alfredjeanlab/tether/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printTypeTable(ct *model.ConnectorType) {
	fmt.Printf("ID:           %s\n", ct.ID)
	fmt.Printf("Type Name:    %s\n", ct.TypeName)
	if ct.DisplayName != "" {
		fmt.Printf("Display Name: %s\n", ct.DisplayName)
	}
	fmt.Printf("Mode:         %s\n", ct.Mode)
	if ct.Description != "" {
		fmt.Printf("Description:  %s\n", ct.Description)
	}
	if ct.DefaultPersist != nil {
		fmt.Printf("Persist:      %t\n", *ct.DefaultPersist)
	}
	if ct.DefaultMaxInlineSize != nil {
		fmt.Printf("Max Inline:   %d\n", *ct.DefaultMaxInlineSize)
	}
	if ct.OwnerTeam != "" {
		fmt.Printf("Owner Team:   %s\n", ct.OwnerTeam)
	}
	if ct.DocsURL != "" {
		fmt.Printf("Docs:         %s\n", ct.DocsURL)
	}
	if len(ct.Tags) > 0 {
		fmt.Printf("Tags:         %s\n", strings.Join(ct.Tags, ", "))
	}
	if !ct.CreatedAt.IsZero() {
		fmt.Printf("Created At:   %s\n", ct.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if !ct.UpdatedAt.IsZero() {
		fmt.Printf("Updated At:   %s\n", ct.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printTypeListTable(types []*model.ConnectorType, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODE\tOWNER\tTAGS")
	for _, ct := range types {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			ct.ID,
			ct.TypeName,
			ct.Mode,
			ct.OwnerTeam,
			strings.Join(ct.Tags, ","),
		)
	}
	w.Flush()
	fmt.Printf("\n%d connector types (%d total)\n", len(types), total)
}

func bindingStatus(b *model.DataSourceBinding) string {
	if b.Active {
		return ui.RenderActive("active")
	}
	s := "inactive"
	if b.StatusReason != "" {
		s += " (" + b.StatusReason + ")"
	}
	return ui.RenderInactive(s)
}

func printBindingTable(b *model.DataSourceBinding) {
	fmt.Printf("ID:           %s\n", b.ID)
	fmt.Printf("Account:      %s\n", b.AccountID)
	fmt.Printf("Type:         %s\n", b.TypeID)
	if b.DisplayName != "" {
		fmt.Printf("Display Name: %s\n", b.DisplayName)
	}
	fmt.Printf("Status:       %s\n", bindingStatus(b))
	if b.StorageLocation != "" {
		fmt.Printf("Storage:      %s\n", b.StorageLocation)
	}
	if b.MaxFileSize > 0 {
		fmt.Printf("Max File:     %d\n", b.MaxFileSize)
	}
	if b.RateLimit > 0 {
		fmt.Printf("Rate Limit:   %d\n", b.RateLimit)
	}
	if b.SchemaID != "" {
		fmt.Printf("Schema:       %s\n", b.SchemaID)
	}
	if !b.CreatedAt.IsZero() {
		fmt.Printf("Created At:   %s\n", b.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if b.RotatedAt != nil {
		fmt.Printf("Rotated At:   %s\n", b.RotatedAt.Format("2006-01-02 15:04:05"))
	}
	if b.DeletedAt != nil {
		fmt.Printf("Deleted At:   %s\n", b.DeletedAt.Format("2006-01-02 15:04:05"))
	}
}

func printBindingListTable(bindings []*model.DataSourceBinding, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tACCOUNT\tTYPE\tSTATUS\tNAME")
	for _, b := range bindings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			b.ID,
			b.AccountID,
			b.TypeID,
			bindingStatus(b),
			b.DisplayName,
		)
	}
	w.Flush()
	fmt.Printf("\n%d bindings (%d total)\n", len(bindings), total)
}

// printSecret prints the plaintext secret with a warning. The server never
// returns it again.
func printSecret(secret string) {
	fmt.Println()
	fmt.Printf("Secret: %s\n", ui.RenderAccent(secret))
	fmt.Println(ui.RenderMuted("Store this secret now; it cannot be retrieved later."))
}

func printSchemaTable(cs *model.ConfigSchema) {
	fmt.Printf("ID:         %s\n", cs.ID)
	fmt.Printf("Type:       %s\n", cs.TypeID)
	fmt.Printf("Version:    %d\n", cs.Version)
	if len(cs.InstanceSchema) > 0 {
		fmt.Printf("Instance:   %s\n", string(cs.InstanceSchema))
	}
	if len(cs.NodeSchema) > 0 {
		fmt.Printf("Node:       %s\n", string(cs.NodeSchema))
	}
	if !cs.CreatedAt.IsZero() {
		fmt.Printf("Created At: %s\n", cs.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printSchemaListTable(schemas []*model.ConfigSchema) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tVERSION\tCREATED")
	for _, cs := range schemas {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			cs.ID,
			cs.TypeID,
			cs.Version,
			cs.CreatedAt.Format("2006-01-02"),
		)
	}
	w.Flush()
	fmt.Printf("\n%d schemas\n", len(schemas))
}
