package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/agritranslate/internal/cli"
	"codeberg.org/snonux/agritranslate/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Batch translation is the default action
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		proc, err := processor.NewProcessor(flags)
		if err != nil {
			return err
		}
		return proc.ProcessBatch(cmd.Context())
	}

	subcommand(rootCmd, "serve").RunE = func(cmd *cobra.Command, args []string) error {
		proc, err := processor.NewProcessor(flags)
		if err != nil {
			return err
		}
		return proc.Serve(cmd.Context())
	}

	subcommand(rootCmd, "pipe").Run = func(cmd *cobra.Command, args []string) {
		proc, err := processor.NewProcessor(flags)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		os.Exit(proc.Pipe(cmd.Context()))
	}

	subcommand(rootCmd, "models").RunE = func(cmd *cobra.Command, args []string) error {
		proc, err := processor.NewProcessor(flags)
		if err != nil {
			return err
		}
		return proc.ListModels(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func subcommand(root *cobra.Command, name string) *cobra.Command {
	cmd, _, err := root.Find([]string{name})
	if err != nil || cmd == root {
		panic(fmt.Sprintf("missing %s subcommand", name))
	}
	return cmd
}
