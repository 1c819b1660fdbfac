package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// remoteProfile is a saved server endpoint the CLI can target.
type remoteProfile struct {
	URL         string `toml:"url"`
	Token       string `toml:"token,omitempty"`
	Description string `toml:"description,omitempty"`
}

// remotesFile is the on-disk profile store at
// ~/.local/state/tether/remotes.toml.
type remotesFile struct {
	Active   string                   `toml:"active"`
	Profiles map[string]remoteProfile `toml:"remotes"`
}

func (rf *remotesFile) lookup(name string) (remoteProfile, error) {
	p, ok := rf.Profiles[name]
	if !ok {
		return remoteProfile{}, fmt.Errorf("remote %q not found", name)
	}
	return p, nil
}

func remotesPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "tether", "remotes.toml"), nil
}

func readRemotes() (*remotesFile, error) {
	path, err := remotesPath()
	if err != nil {
		return nil, err
	}
	rf := &remotesFile{Profiles: map[string]remoteProfile{}}
	if _, err := toml.DecodeFile(path, rf); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if rf.Profiles == nil {
		rf.Profiles = map[string]remoteProfile{}
	}
	return rf, nil
}

// mutateRemotes loads the profile store, applies fn, and writes it back.
// The file is created with 0600 since it can hold tokens.
func mutateRemotes(fn func(*remotesFile) error) error {
	rf, err := readRemotes()
	if err != nil {
		return err
	}
	if err := fn(rf); err != nil {
		return err
	}
	path, err := remotesPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(rf)
}

var activeRemote = sync.OnceValue(func() remoteProfile {
	rf, err := readRemotes()
	if err != nil || rf.Active == "" {
		return remoteProfile{}
	}
	return rf.Profiles[rf.Active]
})

func activeRemoteURL() string   { return activeRemote().URL }
func activeRemoteToken() string { return activeRemote().Token }

// maskToken keeps the first few characters of a token for recognition.
func maskToken(tok string) string {
	if len(tok) <= 8 {
		return tok
	}
	return tok[:8] + strings.Repeat("*", len(tok)-8)
}

var remoteCmd = &cobra.Command{
	Use:     "remote",
	Short:   "Manage named server remotes",
	GroupID: "system",
	// Profile management never talks to a server.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var remoteAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add or update a named remote",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		desc, _ := cmd.Flags().GetString("description")
		err := mutateRemotes(func(rf *remotesFile) error {
			rf.Profiles[args[0]] = remoteProfile{URL: args[1], Token: token, Description: desc}
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Printf("remote %q added (%s)\n", args[0], args[1])
		return nil
	},
}

var remoteRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a named remote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := mutateRemotes(func(rf *remotesFile) error {
			if _, err := rf.lookup(args[0]); err != nil {
				return err
			}
			delete(rf.Profiles, args[0])
			if rf.Active == args[0] {
				rf.Active = ""
			}
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Printf("remote %q removed\n", args[0])
		return nil
	},
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all remotes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rf, err := readRemotes()
		if err != nil {
			return err
		}
		if len(rf.Profiles) == 0 {
			fmt.Println("no remotes configured")
			return nil
		}

		names := make([]string, 0, len(rf.Profiles))
		for name := range rf.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  NAME\tURL\tTOKEN\tDESCRIPTION")
		for _, name := range names {
			p := rf.Profiles[name]
			marker := "  "
			if name == rf.Active {
				marker = "* "
			}
			token := ""
			if p.Token != "" {
				token = maskToken(p.Token)
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n", marker, name, p.URL, token, p.Description)
		}
		return w.Flush()
	},
}

var remoteUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the active remote (no args clears it)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := mutateRemotes(func(rf *remotesFile) error {
			if len(args) == 0 {
				rf.Active = ""
				return nil
			}
			if _, err := rf.lookup(args[0]); err != nil {
				return err
			}
			rf.Active = args[0]
			return nil
		})
		if err != nil {
			return err
		}
		if len(args) == 0 {
			fmt.Println("active remote cleared")
		} else {
			fmt.Printf("active remote set to %q\n", args[0])
		}
		return nil
	},
}

var remoteShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show details for a remote (defaults to active)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rf, err := readRemotes()
		if err != nil {
			return err
		}

		name := rf.Active
		if len(args) == 1 {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf("no active remote; specify a name or run 'tether remote use <name>'")
		}
		p, err := rf.lookup(name)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		suffix := ""
		if name == rf.Active {
			suffix = " (active)"
		}
		fmt.Fprintf(w, "name:\t%s%s\n", name, suffix)
		if p.Description != "" {
			fmt.Fprintf(w, "description:\t%s\n", p.Description)
		}
		fmt.Fprintf(w, "url:\t%s\n", p.URL)
		if p.Token != "" {
			fmt.Fprintf(w, "token:\t%s\n", maskToken(p.Token))
		}
		return w.Flush()
	},
}

func init() {
	remoteAddCmd.Flags().String("token", "", "bearer token for authentication")
	remoteAddCmd.Flags().String("description", "", "human-readable description of the remote")

	remoteCmd.AddCommand(remoteAddCmd)
	remoteCmd.AddCommand(remoteRemoveCmd)
	remoteCmd.AddCommand(remoteListCmd)
	remoteCmd.AddCommand(remoteUseCmd)
	remoteCmd.AddCommand(remoteShowCmd)
}
