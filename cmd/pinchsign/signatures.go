package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/pinchsign/internal/export"
	"github.com/ayusman/pinchsign/internal/server/api"
	"github.com/ayusman/pinchsign/internal/store"
)

func newSignaturesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "signatures",
		Aliases: []string{"sig"},
		Short:   "Inspect the signature archive",
	}
	cmd.AddCommand(newSignaturesListCmd(root), newSignaturesExportCmd(root))
	return cmd
}

func newSignaturesListCmd(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved signatures, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := root.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			sigs, err := st.Signatures().List(limit)
			if err != nil {
				return fmt.Errorf("list signatures: %w", err)
			}
			if len(sigs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No signatures found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tUSER\tPURPOSE\tSEGMENTS\tCREATED")
			fmt.Fprintln(w, "--\t----\t-------\t--------\t-------")
			for _, s := range sigs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Username, s.Purpose, s.Segments,
					s.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum rows (0 for all)")
	return cmd
}

func newSignaturesExportCmd(root *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Write a saved signature's artifacts to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := root.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			sig, err := st.Signatures().GetByID(args[0])
			if err != nil {
				return fmt.Errorf("signature %s: %w", args[0], err)
			}
			if out == "" {
				out = sig.ID
			}
			if err := artifactsOf(sig).WriteDir(out); err != nil {
				return err
			}
			if len(sig.Thumbnail) > 0 {
				if err := os.WriteFile(filepath.Join(out, api.ThumbnailFile), sig.Thumbnail, 0644); err != nil {
					return fmt.Errorf("write thumbnail: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", filepath.Join(out, export.RasterFile))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default: the signature id)")
	return cmd
}

// artifactsOf rebuilds the export bundle of an archived signature.
func artifactsOf(sig *store.Signature) *export.Artifacts {
	return &export.Artifacts{
		PNG:         sig.PNG,
		SVG:         []byte(sig.SVG),
		Coordinates: sig.Coordinates,
		Width:       sig.Width,
		Height:      sig.Height,
	}
}
