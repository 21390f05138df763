package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the mathsolver ASCII banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                 _   _               _", "#34d399"},
		{"  _ __ ___  __ _| |_| |__  ___  ___ | |_   _____ _ __", "#2dd4bf"},
		{" | '_ ` _ \\/ _` | __| '_ \\/ __|/ _ \\| \\ \\ / / _ \\ '__|", "#22d3ee"},
		{" | | | | | | (_| | |_| | | \\__ \\ (_) | |\\ V /  __/ |", "#38bdf8"},
		{" |_| |_| |_|\\__,_|\\__|_| |_|___/\\___/|_| \\_/ \\___|_|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
