package app

import (
	"github.com/aayushadhikari7/termgif/internal/cli/catalog"
	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/cli/spec"
)

// NewRunner builds the CLI runner from the embedded spec.
func NewRunner(deps root.Dependencies) (*root.Runner, error) {
	specDoc, err := spec.LoadDefault()
	if err != nil {
		return nil, err
	}
	reg := root.NewRegistry()
	catalog.RegisterAll(reg)
	return root.NewRunner(specDoc, deps, reg)
}
