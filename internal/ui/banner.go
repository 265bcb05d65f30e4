// Package ui provides styled console output for the hpn-g-bot CLI.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintBanner displays the startup banner.
func PrintBanner(w io.Writer, version string) {
	cyan := color.New(color.FgCyan, color.Bold)
	magenta := color.New(color.FgMagenta, color.Bold)
	yellow := color.New(color.FgYellow)
	dim := color.New(color.FgHiBlack)

	fmt.Fprintln(w)
	cyan.Fprintln(w, "╔══════════════════════════════════════╗")
	cyan.Fprint(w, "║  ")
	magenta.Fprint(w, "HPN-G-BOT")
	yellow.Fprint(w, "  chat gateway  ")
	dim.Fprintf(w, "%-9s", version)
	cyan.Fprintln(w, "║")
	cyan.Fprintln(w, "╚══════════════════════════════════════╝")
	fmt.Fprintln(w)
}
