package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-bitshuffle/frame"
)

type blockFunc func(dst, src []byte, elemSize int) (int, error)

// shuffleCmd runs the bare transform over a whole file. Elements past the
// last multiple of 8, and bytes past the last whole element, are copied.
func (a *app) shuffleCmd(use, short string, transform blockFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <input> [output]",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			out := make([]byte, len(data))
			if _, err := transform(out, data, a.cfg.ElemSize); err != nil {
				return fmt.Errorf("%s: %w", use, err)
			}
			log.WithFields(log.Fields{"bytes": len(data), "elemSize": a.cfg.ElemSize}).Debug(use)
			return writeOutput(cmd, args, out)
		},
	}
	addElemSizeFlag(cmd.Flags())
	return cmd
}

func (a *app) compressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress <input> [output]",
		Short: "Write a compressed frame.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			packed, err := frame.Compress(data, a.cfg.frameOptions()...)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"in":    len(data),
				"out":   len(packed),
				"ratio": ratio(len(data), len(packed)),
			}).Info("compressed")
			return writeOutput(cmd, args, packed)
		},
	}
	addFrameFlags(cmd.Flags())
	return cmd
}

func (a *app) decompressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decompress <input> [output]",
		Short: "Restore the data stored in a frame.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			packed, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			data, err := frame.Decompress(packed, frame.WithConcurrency(a.cfg.Concurrency))
			if err != nil {
				return err
			}
			return writeOutput(cmd, args, data)
		},
	}
}

func (a *app) inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "Print a frame header without decoding it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packed, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			h, err := frame.Inspect(packed)
			if err != nil {
				return err
			}
			blocks, err := cmd.Flags().GetBool("blocks")
			if err != nil {
				return err
			}
			printHeader(cmd, h, blocks)
			return nil
		},
	}
	cmd.Flags().Bool("blocks", false, "list every block")
	return cmd
}

func printHeader(cmd *cobra.Command, h *frame.Header, blocks bool) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "version:\t%d\n", h.Version)
	fmt.Fprintf(w, "element size:\t%d\n", h.ElemSize)
	fmt.Fprintf(w, "block size:\t%d\n", h.BlockSize)
	fmt.Fprintf(w, "length:\t%d\n", h.Length)
	fmt.Fprintf(w, "compressed:\t%d (ratio %.2f)\n", h.CompressedLength(), ratio(int(h.Length), int(h.CompressedLength())))
	fmt.Fprintf(w, "header:\t%d bytes, %d-byte offsets\n", h.Size, h.OffsetSize)
	fmt.Fprintf(w, "filters:\t%s\n", strings.Join(h.Filters(), " "))
	if h.Pipeline.HasCompression() {
		fmt.Fprintf(w, "blocks:\t%d (%d stored raw)\n", len(h.Blocks), h.RawBlocks())
	} else {
		fmt.Fprintf(w, "blocks:\t%d\n", len(h.Blocks))
	}
	w.Flush()

	if !blocks {
		return
	}
	w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "block\toffset\tlength\tmask\t")
	for i, b := range h.Blocks {
		fmt.Fprintf(w, "%d\t%d\t%d\t%#x\t\n", i, b.Offset, b.Length, b.Mask)
	}
	w.Flush()
}

func ratio(raw, packed int) float64 {
	if packed == 0 {
		return 0
	}
	return float64(raw) / float64(packed)
}
