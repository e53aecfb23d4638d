package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the questionnaire banner to w using the terminal's color profile.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	lines := []struct {
		text  string
		color string
	}{
		{"   ___  _   _  ___  ___ _____ ", "#34d399"},
		{"  / _ \\| | | || __|/ __|_   _|", "#2dd4bf"},
		{" | (_) | |_| || _| \\__ \\ | |  ", "#22d3ee"},
		{"  \\__\\_\\\\___/ |___||___/ |_|  ", "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  questionnaire").Faint())
	fmt.Fprintln(w)
}
