package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ayusman/pinchsign/internal/app"
	"github.com/ayusman/pinchsign/internal/detector"
)

func newReplayCmd(root *rootOptions) *cobra.Command {
	var out string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Replay a recorded session headlessly and write its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open recording: %w", err)
			}
			results, err := detector.ReadRecording(f)
			f.Close()
			if err != nil {
				return err
			}

			opts := app.ReplayOptions{}
			if !quiet {
				bar := progressbar.NewOptions(len(results),
					progressbar.OptionSetDescription("Replaying"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
				)
				defer bar.Finish()
				opts.Progress = func(int) { bar.Add(1) }
			}

			art, st, err := app.Replay(results, opts)
			if err != nil {
				return err
			}
			if err := art.WriteDir(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d frames, %d segments, calibrated=%t -> %s\n",
				len(results), st.SegmentCount, st.Calibrated, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", ".", "directory for signature.png, signature.svg and coordinates.txt")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}
