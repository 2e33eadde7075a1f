package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"     /\\              _         ",
	"    /  \\   _ __ ___| |_ _   _ ",
	"   / /\\ \\ | '__/ __| __| | | |",
	"  / ____ \\| | | (__| |_| |_| |",
	" /_/    \\_\\_|  \\___|\\__|\\__, |",
	"                         __/ |",
	"                        |___/ ",
}

// Teal to indigo, one stop per line.
var bannerColors = []string{
	"#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa", "#818cf8", "#a78bfa", "#c084fc",
}

// PrintBanner writes the arcty banner and the assistant name to w.
// Colors are dropped when w is not a terminal.
func PrintBanner(w io.Writer, name, version string) {
	p := termenv.NewOutput(w).ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, p.String(line).Foreground(p.Color(bannerColors[i])))
	}

	subtitle := strings.TrimSpace(version)
	if name != "" {
		subtitle = name + " · " + subtitle
	}
	fmt.Fprintln(w, p.String("  "+subtitle).Faint())
	fmt.Fprintln(w)
}
