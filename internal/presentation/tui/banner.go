package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"                        _ _",
	"  ___  ___ _ __   __ _| (_) ___ _ __",
	" / _ \\/ __| '_ \\ / _` | | |/ _ \\ '__|",
	"|  __/\\__ \\ |_) | (_| | | |  __/ |",
	" \\___||___/ .__/ \\__,_|_|_|\\___|_|",
	"          |_|",
}

// Using a subtle gradient-like color scheme (Green/Teal)
var bannerColors = []string{"#86efac", "#4ade80", "#34d399", "#2dd4bf", "#22d3ee", "#38bdf8"}

// PrintBanner writes the espalier banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
