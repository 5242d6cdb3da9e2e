package main

import (
	"context"

	"github.com/spf13/cobra"

	"authapi/internal/session"
)

func NewPruneSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-sessions",
		Short: "Delete expired sessions",
		RunE:  runPruneSessions,
	}
}

func runPruneSessions(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer st.close()

	n, err := session.NewManager(st.sessions, session.Options{Secret: cfg.SessionSecret, Logger: logger}).Prune(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Deleted %d expired sessions\n", n)
	return nil
}
