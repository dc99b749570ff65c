package root

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/aayushadhikari7/termgif/internal/cli/spec"
)

// testSpec is a small spec that exercises every builder feature the
// real one uses: args, typed flags, enums and constraints.
func testSpec() *spec.Spec {
	return &spec.Spec{
		Version: 1,
		App:     spec.AppSpec{Name: "termgif", Summary: "test"},
		GlobalFlags: []spec.Flag{
			{Name: "version", Aliases: []string{"v"}, Type: "bool"},
		},
		Commands: []spec.Command{
			{
				Name: "trim", ID: "trim", Summary: "trim",
				Args: []spec.Arg{{Name: "file", Type: "path", Required: true}},
				Flags: []spec.Flag{
					{Name: "start", Type: "duration", Default: "0s"},
					{Name: "end", Type: "duration"},
					{Name: "output", Aliases: []string{"o"}, Type: "path"},
				},
			},
			{
				Name: "overlay", ID: "overlay", Summary: "overlay",
				Args: []spec.Arg{{Name: "file", Type: "path", Required: true}},
				Flags: []spec.Flag{
					{Name: "text", Type: "string"},
					{Name: "watermark", Type: "path"},
					{Name: "position", Type: "enum", Enum: []string{"top-left", "bottom-right"}, Default: "bottom-right"},
					{Name: "opacity", Type: "float", Default: 0.5},
				},
				Constraints: []spec.Constraint{{Type: "exactly_one", Fields: []string{"text", "watermark"}}},
			},
			{
				Name: "concat", ID: "concat", Summary: "concat",
				Args:  []spec.Arg{{Name: "inputs", Type: "path", Required: true, Variadic: true}},
				Flags: []spec.Flag{{Name: "output", Aliases: []string{"o"}, Type: "path", Required: true}},
			},
		},
	}
}

func captureRegistry(specDoc *spec.Spec, got *CommandContext) *Registry {
	reg := NewRegistry()
	for _, cmd := range specDoc.AllCommands() {
		reg.Register(cmd.ID, func(ctx CommandContext) error {
			*got = ctx
			return nil
		})
	}
	return reg
}

func TestBuildAppRequiresHandlers(t *testing.T) {
	specDoc := testSpec()
	if _, err := BuildApp(specDoc, Dependencies{}, NewRegistry()); err == nil {
		t.Fatalf("expected missing handler error")
	}
}

func TestRunTrimWiresArgsAndFlags(t *testing.T) {
	specDoc := testSpec()
	var got CommandContext
	reg := captureRegistry(specDoc, &got)
	app, err := BuildApp(specDoc, Dependencies{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}, reg)
	if err != nil {
		t.Fatalf("BuildApp: %v", err)
	}
	err = app.Run(context.Background(), []string{"termgif", "trim", "demo.gif", "--start", "1s", "-o", "out.gif"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Cmd == nil {
		t.Fatalf("handler never ran")
	}
	if file := got.Cmd.StringArg("file"); file != "demo.gif" {
		t.Errorf("file arg = %q", file)
	}
	if start := got.Cmd.Duration("start"); start != time.Second {
		t.Errorf("start = %v", start)
	}
	if !got.Cmd.IsSet("start") {
		t.Errorf("start should count as set")
	}
	if got.Cmd.IsSet("end") {
		t.Errorf("end should not count as set")
	}
	if out := got.Cmd.String("output"); out != "out.gif" {
		t.Errorf("output = %q", out)
	}
}

func TestRunMissingArgFails(t *testing.T) {
	specDoc := testSpec()
	var got CommandContext
	reg := captureRegistry(specDoc, &got)
	app, err := BuildApp(specDoc, Dependencies{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}, reg)
	if err != nil {
		t.Fatalf("BuildApp: %v", err)
	}
	err = app.Run(context.Background(), []string{"termgif", "trim"})
	if err == nil || !strings.Contains(err.Error(), "missing argument") {
		t.Fatalf("expected missing argument error, got %v", err)
	}
}

func TestRunConstraintExactlyOne(t *testing.T) {
	specDoc := testSpec()
	var got CommandContext
	reg := captureRegistry(specDoc, &got)
	app, err := BuildApp(specDoc, Dependencies{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}, reg)
	if err != nil {
		t.Fatalf("BuildApp: %v", err)
	}
	err = app.Run(context.Background(), []string{"termgif", "overlay", "demo.gif"})
	if err == nil || !strings.Contains(err.Error(), "exactly one") {
		t.Fatalf("expected exactly_one error, got %v", err)
	}
	got = CommandContext{}
	err = app.Run(context.Background(), []string{"termgif", "overlay", "demo.gif", "--text", "hi"})
	if err != nil {
		t.Fatalf("Run with --text: %v", err)
	}
	if got.Cmd == nil || got.Cmd.String("text") != "hi" {
		t.Fatalf("overlay handler did not see --text")
	}
	if pos := got.Cmd.String("position"); pos != "bottom-right" {
		t.Errorf("position default = %q", pos)
	}
	if op := got.Cmd.Float("opacity"); op != 0.5 {
		t.Errorf("opacity default = %v", op)
	}
}

func TestRunVariadicArgs(t *testing.T) {
	specDoc := testSpec()
	var got CommandContext
	reg := captureRegistry(specDoc, &got)
	app, err := BuildApp(specDoc, Dependencies{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}, reg)
	if err != nil {
		t.Fatalf("BuildApp: %v", err)
	}
	err = app.Run(context.Background(), []string{"termgif", "concat", "a.gif", "b.gif", "-o", "out.gif"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	inputs := got.Cmd.StringArgs("inputs")
	if len(inputs) != 2 || inputs[0] != "a.gif" || inputs[1] != "b.gif" {
		t.Fatalf("inputs = %v", inputs)
	}
}

func TestVersionFlagShortCircuits(t *testing.T) {
	prevExiter := cli.OsExiter
	cli.OsExiter = func(int) {}
	t.Cleanup(func() { cli.OsExiter = prevExiter })

	specDoc := testSpec()
	var got CommandContext
	reg := captureRegistry(specDoc, &got)
	out := &bytes.Buffer{}
	app, err := BuildApp(specDoc, Dependencies{Version: "1.2.3", Stdout: out, Stderr: &bytes.Buffer{}}, reg)
	if err != nil {
		t.Fatalf("BuildApp: %v", err)
	}
	err = app.Run(context.Background(), []string{"termgif", "--version"})
	if exitErr, ok := err.(cli.ExitCoder); !ok || exitErr.ExitCode() != 0 {
		t.Fatalf("expected exit 0, got %v", err)
	}
	if !strings.Contains(out.String(), "termgif 1.2.3") {
		t.Fatalf("version output = %q", out.String())
	}
	if got.Cmd != nil {
		t.Fatalf("no handler should run for --version")
	}
}

func TestBuildFlagTypes(t *testing.T) {
	cases := []struct {
		flag spec.Flag
		want string
	}{
		{spec.Flag{Name: "a", Type: "bool"}, "*cli.BoolFlag"},
		{spec.Flag{Name: "b", Type: "string"}, "*cli.StringFlag"},
		{spec.Flag{Name: "c", Type: "path"}, "*cli.StringFlag"},
		{spec.Flag{Name: "d", Type: "enum", Enum: []string{"x"}}, "*cli.StringFlag"},
		{spec.Flag{Name: "e", Type: "int", Default: 10}, "*cli.IntFlag"},
		{spec.Flag{Name: "f", Type: "float", Default: 0.5}, "*cli.FloatFlag"},
		{spec.Flag{Name: "g", Type: "duration", Default: "250ms"}, "*cli.DurationFlag"},
		{spec.Flag{Name: "h", Type: "string_list"}, "*cli.StringSliceFlag"},
	}
	for _, tc := range cases {
		built, err := buildFlag(tc.flag)
		if err != nil {
			t.Fatalf("buildFlag(%s): %v", tc.flag.Name, err)
		}
		var gotType string
		switch built.(type) {
		case *cli.BoolFlag:
			gotType = "*cli.BoolFlag"
		case *cli.StringFlag:
			gotType = "*cli.StringFlag"
		case *cli.IntFlag:
			gotType = "*cli.IntFlag"
		case *cli.FloatFlag:
			gotType = "*cli.FloatFlag"
		case *cli.DurationFlag:
			gotType = "*cli.DurationFlag"
		case *cli.StringSliceFlag:
			gotType = "*cli.StringSliceFlag"
		}
		if gotType != tc.want {
			t.Errorf("flag %s built as %s, want %s", tc.flag.Name, gotType, tc.want)
		}
	}
	if _, err := buildFlag(spec.Flag{Name: "bad", Type: "wibble"}); err == nil {
		t.Errorf("expected error for unknown flag type")
	}
	if d := durationDefault("250ms"); d != 250*time.Millisecond {
		t.Errorf("durationDefault = %v", d)
	}
}

func TestEnumValidator(t *testing.T) {
	validate := enumValidator([]string{"gif", "mp4"})
	if err := validate("gif"); err != nil {
		t.Fatalf("gif should validate: %v", err)
	}
	if err := validate("avi"); err == nil {
		t.Fatalf("avi should fail")
	}
}
