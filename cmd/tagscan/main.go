package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/tagscan/internal/config"
	"github.com/ironsheep/tagscan/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath string
	logLevel   string
	rootDir    string

	cfg *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tagscan",
		Short: "Recognize tagged product sheets on scans",
		Long: `tagscan splits scans of up to four product sheets, reads the product
header and the member tags of every sheet and stores each sheet as CSV
together with audit images for review.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: tagscan.yaml in ., ./config or $HOME/.tagscan)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides TAGSCAN_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Accounting root directory (overrides paths.root)")

	rootCmd.AddCommand(
		newProcessCmd(),
		newWatchCmd(),
		newServeCmd(),
		newRenderCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads the configuration and configures logging for every command.
func setup(cmd *cobra.Command, args []string) error {
	// Logs go to stderr; stdout is reserved for command output and the
	// stdio server protocol.
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if rootDir != "" {
		cfg.Paths.Root = rootDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)
	server.Version = Version
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tagscan %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}
