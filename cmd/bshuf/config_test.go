package main

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/robert-malhotra/go-bitshuffle/frame"
)

// testFlags builds the flag set a compress invocation sees.
func testFlags(c *qt.C, args ...string) *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("config", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("log.level", defaultLogLevel, "")
	fs.IntP("concurrency", "j", 0, "")
	addFrameFlags(fs)
	c.Assert(fs.Parse(args), qt.IsNil)
	return fs
}

func TestLoadConfigDefaults(t *testing.T) {
	c := qt.New(t)
	cfg, err := loadConfig(testFlags(c))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, &Config{
		ElemSize:  1,
		BlockSize: frame.DefaultBlockSize,
		Codec:     defaultCodec,
		Prefilter: defaultPrefilter,
		Log:       LogConfig{Level: defaultLogLevel},
	})
	c.Assert(cfg.logLevel(), qt.Equals, log.InfoLevel)
}

func TestLoadConfigEnvironment(t *testing.T) {
	c := qt.New(t)
	t.Setenv("BSHUF_ELEM_SIZE", "8")
	t.Setenv("BSHUF_CODEC", "deflate")
	t.Setenv("BSHUF_LOG_LEVEL", "debug")
	t.Setenv("BSHUF_CHECKSUM", "true")

	cfg, err := loadConfig(testFlags(c))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.ElemSize, qt.Equals, 8)
	c.Assert(cfg.Codec, qt.Equals, "deflate")
	c.Assert(cfg.Checksum, qt.IsTrue)
	c.Assert(cfg.logLevel(), qt.Equals, log.DebugLevel)

	// A flag on the command line wins over the environment.
	cfg, err = loadConfig(testFlags(c, "-e", "2"))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.ElemSize, qt.Equals, 2)
}

func TestLoadConfigFile(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "bshuf.yaml")
	err := os.WriteFile(path, []byte("elem-size: 4\ncodec: none\nblock-size: 4096\nlog:\n  level: warn\n"), 0o644)
	c.Assert(err, qt.IsNil)

	cfg, err := loadConfig(testFlags(c, "--config", path))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.ElemSize, qt.Equals, 4)
	c.Assert(cfg.Codec, qt.Equals, "none")
	c.Assert(cfg.BlockSize, qt.Equals, 4096)
	c.Assert(cfg.logLevel(), qt.Equals, log.WarnLevel)

	cfg, err = loadConfig(testFlags(c, "--config", path, "--codec", "zstd", "-v"))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Codec, qt.Equals, "zstd")
	c.Assert(cfg.logLevel(), qt.Equals, log.DebugLevel)
}

func TestLoadConfigInvalid(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown codec", []string{"--codec", "lz4"}},
		{"unknown prefilter", []string{"--prefilter", "nibble"}},
		{"zero element size", []string{"-e", "0"}},
		{"zero block size", []string{"--block-size", "0"}},
		{"negative concurrency", []string{"--concurrency=-1"}},
		{"bad log level", []string{"--log.level", "loud"}},
		{"missing config file", []string{"--config", filepath.Join(t.TempDir(), "none.yaml")}},
	}
	for _, tt := range tests {
		_, err := loadConfig(testFlags(c, tt.args...))
		c.Assert(err, qt.Not(qt.IsNil), qt.Commentf("%s", tt.name))
	}
}

func TestFrameOptions(t *testing.T) {
	c := qt.New(t)
	cfg := &Config{
		ElemSize:  4,
		BlockSize: 1024,
		Codec:     "deflate",
		Level:     9,
		Prefilter: "shuffle",
		Checksum:  true,
	}
	packed, err := frame.Compress(make([]byte, 8192), cfg.frameOptions()...)
	c.Assert(err, qt.IsNil)

	h, err := frame.Inspect(packed)
	c.Assert(err, qt.IsNil)
	c.Assert(h.ElemSize, qt.Equals, 4)
	c.Assert(h.BlockSize, qt.Equals, 1024)
	c.Assert(h.Filters(), qt.DeepEquals, []string{"shuffle", "deflate", "fletcher32"})
}
