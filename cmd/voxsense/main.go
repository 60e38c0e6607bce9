package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voxsense/voxsense/internal/profile"
	"github.com/voxsense/voxsense/server"
	"github.com/voxsense/voxsense/store"
	"github.com/voxsense/voxsense/store/db"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "voxsense",
	Short: "Tiered temporal memory for voice-note transcripts",
	Long:  "Voxsense serves token-bounded, multi-resolution context blocks built from timestamped voice-note transcripts.",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	instanceProfile := &profile.Profile{Version: version}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return fmt.Errorf("failed to create db driver: %w", err)
	}
	if err := dbDriver.Migrate(ctx); err != nil {
		_ = dbDriver.Close()
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	storeInstance := store.New(dbDriver, instanceProfile)

	s, err := server.NewServer(ctx, instanceProfile, storeInstance)
	if err != nil {
		_ = storeInstance.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.Start(ctx); err != nil {
			slog.Error("server start failed", "error", err)
			done <- syscall.SIGTERM
		}
	}()

	<-done
	cancel()
	s.Shutdown(context.Background())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
