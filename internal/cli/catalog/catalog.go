package catalog

import (
	"github.com/aayushadhikari7/termgif/internal/cli/configcmd"
	"github.com/aayushadhikari7/termgif/internal/cli/convert"
	"github.com/aayushadhikari7/termgif/internal/cli/create"
	"github.com/aayushadhikari7/termgif/internal/cli/edit"
	"github.com/aayushadhikari7/termgif/internal/cli/preview"
	"github.com/aayushadhikari7/termgif/internal/cli/record"
	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/cli/upload"
	"github.com/aayushadhikari7/termgif/internal/cli/version"
)

// RegisterAll registers all CLI commands.
func RegisterAll(reg *root.Registry) {
	if reg == nil {
		return
	}
	record.Register(reg)
	create.Register(reg)
	preview.Register(reg)
	edit.Register(reg)
	convert.Register(reg)
	upload.Register(reg)
	configcmd.Register(reg)
	version.Register(reg)
}
