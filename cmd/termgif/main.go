package main

import (
	"os"

	"github.com/aayushadhikari7/termgif/internal/cli/entry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(entry.Run(os.Args, version))
}
