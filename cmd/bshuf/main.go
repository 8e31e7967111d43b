// Command bshuf bitshuffles and compresses files.
//
// Usage:
//
//	bshuf compress -e 4 samples.f32 samples.bshf
//	bshuf decompress samples.bshf samples.f32
//	bshuf inspect samples.bshf
//	bshuf shuffle -e 8 doubles.bin shuffled.bin
//
// A path of "-" (or an omitted output) means standard input or output.
// Every flag can also be set in a config file (--config) or through a
// BSHUF_ environment variable, e.g. BSHUF_ELEM_SIZE=4.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
