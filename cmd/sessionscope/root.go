package main

import (
	"fmt"
	"os"

	"github.com/aretw0/sessionscope/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sessionscope",
	Short: "sessionscope hosts per-session singletons over HTTP",
	Long:  `sessionscope serves HTTP sessions whose singletons are constructed once per session, and manages the persisted session index.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "sessionscope.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("store", "", "Session index backend (memory, file, redis); overrides config")
}

// loadConfig reads the config file and environment, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, os.Environ())
	if err != nil {
		return cfg, err
	}

	if backend, _ := cmd.Flags().GetString("store"); backend != "" {
		cfg.Store.Backend = backend
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("ttl") {
		cfg.Session.TTL, _ = cmd.Flags().GetDuration("ttl")
	}
	return cfg, cfg.Validate()
}
