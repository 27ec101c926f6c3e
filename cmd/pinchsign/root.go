package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/pinchsign/internal/config"
	"github.com/ayusman/pinchsign/internal/session"
	"github.com/ayusman/pinchsign/internal/store"
)

// Version is the application version.
const Version = "0.1.0"

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	dataDir    string
	verbose    bool
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "pinchsign",
		Short:         "Sign in the air with a pinch gesture",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath, opts.dataDir)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			session.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: <data-dir>/config.yaml)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "data directory (default: ~/.pinchsign)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log session events")

	root.AddCommand(newRunCmd(opts), newReplayCmd(opts), newSignaturesCmd(opts))
	return root
}

// openStore opens the signature archive, creating the data directory.
func (o *rootOptions) openStore() (*store.Store, error) {
	if err := os.MkdirAll(o.cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(o.cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open signature store: %w", err)
	}
	return st, nil
}
