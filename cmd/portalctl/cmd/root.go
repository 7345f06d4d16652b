// Package cmd implements portalctl, a terminal view onto a running clubportal edge.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	envEdgeURL  = "PORTAL_EDGE_URL"
	envProfile  = "PORTAL_PROFILE"
	profileFile = "profile"
)

var (
	edgeURL   string
	profileID string
	asJSON    bool

	client *edgeClient
)

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:           "portalctl [command] [flags]",
	Short:         "portalctl: club portal from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveProfile(profileID)
		if err != nil {
			return err
		}
		client = newEdgeClient(edgeURL, id)
		return nil
	},
}

func init() {
	defaultURL := os.Getenv(envEdgeURL)
	if defaultURL == "" {
		defaultURL = "http://localhost:3000"
	}
	RootCmd.PersistentFlags().StringVar(&edgeURL, "edge", defaultURL, "edge base URL")
	RootCmd.PersistentFlags().StringVar(&profileID, "profile", os.Getenv(envProfile), "client profile id (defaults to the one saved in the config dir)")
	RootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveProfile returns explicit when set, else the saved profile id, minting and
// saving one on first use.
func resolveProfile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := uuid.Parse(explicit); err != nil {
			return "", fmt.Errorf("profile must be a UUID: %w", err)
		}
		return explicit, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate config dir: %w", err)
	}
	path := filepath.Join(dir, "clubportal", profileFile)

	if raw, err := os.ReadFile(path); err == nil {
		id := strings.TrimSpace(string(raw))
		if _, perr := uuid.Parse(id); perr == nil {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("cannot save profile: %w", err)
	}
	return id, nil
}
