package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/tagscan/internal/pipeline"
	"github.com/ironsheep/tagscan/internal/recognize"
)

func newProcessCmd() *cobra.Command {
	var (
		individual bool
		debugDir   string
		rotation   float64
	)
	cmd := &cobra.Command{
		Use:   "process [scan...]",
		Short: "Recognize the sheets on scans and store them",
		Long: `Recognize the sheets on the given scans, or on every scan in the scan
directory, and store them in the output directory.

By default the output directory is cleared first. With --individual it is
kept, and a sheet that was stored before is replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if individual {
				cfg.Output.Clear = false
			}
			if debugDir != "" {
				cfg.Paths.Debug = debugDir
			}
			if cmd.Flags().Changed("rotation") {
				cfg.Split.Rotation = rotation
			}

			scans := args
			if len(scans) == 0 {
				var err error
				if scans, err = pipeline.ScanFiles(cfg.Paths.ScanDir()); err != nil {
					return err
				}
			}
			if len(scans) == 0 {
				return fmt.Errorf("no scans found in %s", cfg.Paths.ScanDir())
			}

			p, err := pipeline.New(cfg, nil)
			if err != nil {
				return err
			}
			res, err := p.Run(cmd.Context(), scans)
			if res != nil {
				printResult(cmd.OutOrStdout(), res)
			}
			return explain(err)
		},
	}
	cmd.Flags().BoolVar(&individual, "individual", false, "Keep the output directory and replace sheets stored before")
	cmd.Flags().StringVar(&debugDir, "debug-dir", "", "Write intermediate images of every stage to this directory")
	cmd.Flags().Float64Var(&rotation, "rotation", 0, "Rotate scans clockwise by this many degrees before splitting")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var settle time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process scans as they appear in the scan directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pipeline.New(cfg, nil)
			if err != nil {
				return err
			}
			err = p.Watch(cmd.Context(), cfg.Paths.ScanDir(), settle, func(res *pipeline.Result) {
				printResult(cmd.OutOrStdout(), res)
			})
			if errors.Is(err, cmd.Context().Err()) {
				return nil
			}
			return explain(err)
		},
	}
	cmd.Flags().DurationVar(&settle, "settle", pipeline.DefaultSettle, "How long a new scan must be unchanged before it is processed")
	return cmd
}

func printResult(w io.Writer, res *pipeline.Result) {
	for _, name := range res.Stored {
		fmt.Fprintf(w, "stored %s\n", name)
	}
	for _, scan := range res.PartiallyFilled {
		fmt.Fprintf(w, "partially filled: %s\n", scan)
	}
	for _, scan := range res.Unreadable {
		fmt.Fprintf(w, "unreadable: %s\n", scan)
	}
}

// explain adds what the user has to do to errors that need manual repair.
func explain(err error) error {
	if errors.Is(err, recognize.ErrIntegrity) {
		return fmt.Errorf("%w; repair the stored sheet before processing again", err)
	}
	return err
}
