package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of --ui.
type uiMode uint8

const (
	uiAuto uiMode = iota
	uiOn
	uiOff
)

var uiModeNames = map[string]uiMode{"": uiAuto, "auto": uiAuto, "on": uiOn, "off": uiOff}

func (m uiMode) String() string {
	switch m {
	case uiOn:
		return "on"
	case uiOff:
		return "off"
	default:
		return "auto"
	}
}

func readUIMode(value string) (uiMode, error) {
	m, ok := uiModeNames[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return uiAuto, fmt.Errorf("--ui: unknown mode %q, want auto, on or off", value)
	}
	return m, nil
}

// progressView reports whether a directory run draws its progress view.
// The view goes to stderr, so auto looks at stderr only.
func (m uiMode) progressView(quiet bool) bool {
	if m == uiAuto {
		return !quiet && isTerminal(os.Stderr)
	}
	return m == uiOn
}
