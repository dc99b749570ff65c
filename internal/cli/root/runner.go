package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/aayushadhikari7/termgif/internal/cli/spec"
	"github.com/aayushadhikari7/termgif/internal/identity"
)

// Runner executes the CLI using the spec and registry.
type Runner struct {
	specDoc *spec.Spec
	deps    Dependencies
	app     *cli.Command
}

// NewRunner builds the CLI runner.
func NewRunner(specDoc *spec.Spec, deps Dependencies, reg *Registry) (*Runner, error) {
	app, err := BuildApp(specDoc, deps, reg)
	if err != nil {
		return nil, err
	}
	return &Runner{specDoc: specDoc, deps: deps, app: app}, nil
}

// Run executes the CLI with the given arguments.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if r == nil || r.app == nil {
		return fmt.Errorf("runner is not initialized")
	}
	if r.specDoc != nil && r.app != nil {
		appName := identity.ResolveBinaryName(args)
		r.specDoc.App.Name = appName
		r.app.Name = appName
	}
	args = applyShorthand(r.specDoc, args)
	return r.app.Run(ctx, args)
}

// applyShorthand lets `termgif demo.tg` stand for `termgif record
// demo.tg`: any first token that is not a flag and not a known command
// is treated as a script path.
func applyShorthand(specDoc *spec.Spec, args []string) []string {
	if specDoc == nil || len(args) < 2 {
		return args
	}
	if !specDoc.App.AllowScriptShorthand {
		return args
	}
	first := args[1]
	if strings.HasPrefix(first, "-") || isTopLevelCommand(specDoc, first) {
		return args
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[0], "record")
	out = append(out, args[1:]...)
	return out
}

func isTopLevelCommand(specDoc *spec.Spec, value string) bool {
	if specDoc == nil {
		return false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	// The help command comes from the CLI library, not the spec.
	if strings.EqualFold(value, "help") || strings.EqualFold(value, "h") {
		return true
	}
	for _, cmd := range specDoc.Commands {
		if strings.EqualFold(cmd.Name, value) {
			return true
		}
		for _, alias := range cmd.Aliases {
			if strings.EqualFold(alias, value) {
				return true
			}
		}
	}
	return false
}
