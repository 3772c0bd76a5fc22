package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the cback banner to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"        _                _    ", "#0ea5e9"},
		{"   ___ | |__   __ _  ___| | __", "#0284c7"},
		{"  / __|| '_ \\ / _` |/ __| |/ /", "#0369a1"},
		{" | (__ | |_) | (_| | (__|   < ", "#075985"},
		{"  \\___||_.__/ \\__,_|\\___|_|\\_\\", "#0c4a6e"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintf(w, "  %s\n\n", version)
}
