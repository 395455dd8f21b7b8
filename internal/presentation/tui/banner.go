package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the unitgrid banner and version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	s1 := termenv.String("              _ _                 _     _ ").Foreground(p.Color("#38bdf8"))
	s2 := termenv.String("  _   _ _ __ (_) |_ __ _ _ __ (_) __| |").Foreground(p.Color("#22d3ee"))
	s3 := termenv.String(" | | | | '_ \\| | __/ _` | '__|| |/ _` |").Foreground(p.Color("#2dd4bf"))
	s4 := termenv.String(" | |_| | | | | | || (_| | |   | | (_| |").Foreground(p.Color("#34d399"))
	s5 := termenv.String("  \\__,_|_| |_|_|\\__\\__, |_|   |_|\\__,_|").Foreground(p.Color("#4ade80"))
	s6 := termenv.String("                   |___/  " + version).Foreground(p.Color("#a3e635"))

	fmt.Fprintln(w)
	for _, s := range []termenv.Style{s1, s2, s3, s4, s5, s6} {
		fmt.Fprintln(w, s)
	}
	fmt.Fprintln(w)
}
