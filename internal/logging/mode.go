package logging

import "strings"

type Mode uint8

const (
	ModeCLI Mode = iota + 1
	ModeWatch
)

// ModeFromArgs inspects argv to decide the logging profile before
// the CLI parser runs. Watch loops run unattended, so they log to file.
func ModeFromArgs(args []string) Mode {
	if len(args) < 2 {
		return ModeCLI
	}
	for _, arg := range args[1:] {
		switch strings.ToLower(strings.TrimSpace(arg)) {
		case "watch", "--watch":
			return ModeWatch
		}
	}
	return ModeCLI
}

func (m Mode) String() string {
	switch m {
	case ModeWatch:
		return "watch"
	default:
		return "cli"
	}
}
