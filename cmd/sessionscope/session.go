package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/aretw0/sessionscope/internal/config"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted sessions",
	Long:  `List, inspect, and remove sessions recorded in the file or redis session index.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all known sessions",
	Run: func(cmd *cobra.Command, args []string) {
		b := mustOpenPersistent(cmd)
		defer b.close()

		sessions, err := b.index.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}

		if len(sessions) == 0 {
			fmt.Println("No active sessions found.")
			return
		}
		sort.Strings(sessions)

		out := termenv.NewOutput(os.Stdout)
		fmt.Println(out.String("Active Sessions:").Bold())
		now := time.Now()
		for _, id := range sessions {
			line := "- " + id
			meta, err := b.index.Load(cmd.Context(), id)
			switch {
			case err != nil:
				fmt.Println(out.String(line + " (unreadable)").Foreground(out.Color("1")))
			case meta.Expired(now):
				fmt.Println(out.String(line + " (expired)").Faint())
			default:
				fmt.Println(out.String(line).Foreground(out.Color("2")))
			}
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the metadata of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID := args[0]
		b := mustOpenPersistent(cmd)
		defer b.close()

		meta, err := b.index.Load(cmd.Context(), sessionID)
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", sessionID, err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling session: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b := mustOpenPersistent(cmd)
		defer b.close()
		hasError := false

		for _, sessionID := range args {
			if err := b.index.Delete(cmd.Context(), sessionID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", sessionID, err)
				hasError = true
			} else {
				fmt.Printf("Removed session '%s'\n", sessionID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

// mustOpenPersistent opens the configured index, refusing the memory backend
// whose sessions only exist inside a running server.
func mustOpenPersistent(cmd *cobra.Command) backends {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Store.Backend == config.StoreMemory {
		fmt.Println("The memory store keeps sessions inside the server process; use --store file or --store redis.")
		os.Exit(1)
	}
	return openBackends(cfg)
}
