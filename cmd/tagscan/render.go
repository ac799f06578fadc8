package main

import (
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/ironsheep/tagscan/internal/sheet"
)

func newRenderCmd() *cobra.Command {
	var (
		output  string
		width   int
		quality int
	)
	cmd := &cobra.Command{
		Use:   "render <sheet.csv>",
		Short: "Render a stored sheet with unconfident boxes tinted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sheet.Load(args[0], cfg.Layout)
			if err != nil {
				return err
			}
			if output == "" {
				output = strings.TrimSuffix(args[0], ".csv") + ".png"
			}

			opts := sheet.DefaultRenderOptions()
			opts.ConfidenceThreshold = cfg.Recognize.ConfidenceThreshold
			img := s.Render(opts)
			if width > 0 {
				img = imaging.Resize(img, width, 0, imaging.Lanczos)
			}
			if err := imaging.Save(img, output, imaging.JPEGQuality(quality)); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rendered %s (%d unconfident boxes)\n", output, len(s.UnconfidentBoxes()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output image, .png or .jpg (default: next to the sheet)")
	cmd.Flags().IntVar(&width, "width", 0, "Scale the image to this width")
	cmd.Flags().IntVar(&quality, "quality", 90, "JPEG quality")
	return cmd
}
