package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/robert-malhotra/go-bitshuffle/bitshuffle"
	"github.com/robert-malhotra/go-bitshuffle/frame"
)

// Version is filled when building with -ldflags, but *not* when installing
// via "go install".
var Version string

// app carries the configuration loaded before any subcommand runs.
type app struct {
	cfg *Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "bshuf",
		Short:         "Bitshuffle and compress binary data.",
		Long:          "Bitshuffle transposes the bits of fixed-size elements so that a byte compressor sees long runs, then stores the result in a block frame.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			log.SetOutput(cmd.ErrOrStderr())
			log.SetLevel(cfg.logLevel())
			return nil
		},
	}

	fs := root.PersistentFlags()
	fs.String("config", "", "config file (yaml, toml or json)")
	fs.BoolP("verbose", "v", false, "increase logging verbosity")
	fs.String("log.level", defaultLogLevel, "log level (debug, info, warn, error)")
	fs.IntP("concurrency", "j", 0, "blocks processed in parallel (0 = number of CPUs)")

	root.AddCommand(
		a.shuffleCmd("shuffle", "Bitshuffle a file of fixed-size elements.", bitshuffle.ShuffleBlock),
		a.shuffleCmd("unshuffle", "Reverse shuffle.", bitshuffle.UnshuffleBlock),
		a.compressCmd(),
		a.decompressCmd(),
		a.inspectCmd(),
		versionCmd(),
	)
	return root
}

func addElemSizeFlag(fs *flag.FlagSet) {
	fs.IntP("elem-size", "e", 1, "element size in bytes")
}

func addFrameFlags(fs *flag.FlagSet) {
	addElemSizeFlag(fs)
	fs.StringP("codec", "c", defaultCodec, "compressor: zstd, deflate or none")
	fs.IntP("level", "l", 0, "compression level (0 = codec default)")
	fs.Int("block-size", frame.DefaultBlockSize, "target uncompressed block size in bytes")
	fs.StringP("prefilter", "p", defaultPrefilter, "transform before compression: bitshuffle, shuffle or none")
	fs.Bool("delta", false, "XOR each element with the previous one before the prefilter")
	fs.Bool("checksum", false, "append a Fletcher-32 checksum to every block")
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Report version of this executable.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprint(out, "bshuf ")
			if Version != "" {
				// Built with -ldflags
				fmt.Fprint(out, Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				// Built via "go install"
				fmt.Fprint(out, info.Main.Version)
			} else {
				fmt.Fprint(out, "(unknown version)")
			}
			fmt.Fprintf(out, " (%s)\n", bitshuffle.Implementation())
		},
	}
}

// readInput reads a whole file, or standard input for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// writeOutput writes data to the path in args[1], or standard output when
// it is absent or "-".
func writeOutput(cmd *cobra.Command, args []string, data []byte) error {
	if len(args) < 2 || args[1] == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(args[1], data, 0o644)
}
