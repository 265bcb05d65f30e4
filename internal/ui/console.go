// Package ui provides styled console output for the hpn-g-bot CLI.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/hpn/hpn-g-bot/internal/domain"
	"github.com/hpn/hpn-g-bot/internal/security"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR DEFINITIONS
// ══════════════════════════════════════════════════════════════════════════════

var (
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)

	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)
	neonBlue    = color.New(color.FgHiCyan, color.Bold)

	methodPOST = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET  = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
)

// ══════════════════════════════════════════════════════════════════════════════
// CHAT OUTPUT
// ══════════════════════════════════════════════════════════════════════════════

// PrintReply writes the model's reply followed by the continuation ids.
// An empty reply is reported as such rather than printed as a blank block.
func PrintReply(w io.Writer, text string, ids domain.Ids) {
	if text == "" {
		warningBadge.Fprint(w, "[NO REPLY]")
		warningText.Fprintln(w, " the model returned no text")
		return
	}

	fmt.Fprintln(w, strings.TrimRight(text, "\n"))
	fmt.Fprintln(w)
	PrintIds(w, ids)
}

// PrintIds writes the conversation identifiers in a form that can be pasted
// back into the next `ask` invocation.
// Format: --parent-message-id X --conversation-id Y
func PrintIds(w io.Writer, ids domain.Ids) {
	if ids.IsZero() {
		return
	}
	mutedText.Fprint(w, "--parent-message-id ")
	accentText.Fprint(w, ids.ParentMessageID)
	mutedText.Fprint(w, " --conversation-id ")
	accentText.Fprintln(w, ids.ConversationID)
}

// PrintWarning writes a warning line.
// Format: [WARN] message
func PrintWarning(w io.Writer, msg string) {
	warningBadge.Fprint(w, "[WARN]")
	fmt.Fprint(w, " ")
	warningText.Fprintln(w, msg)
}

// ══════════════════════════════════════════════════════════════════════════════
// STARTUP MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// PrintStartupInfo prints styled server startup information. The API key is
// shown masked.
func PrintStartupInfo(w io.Writer, addr, model, apiKey string, retries int) {
	fmt.Fprintln(w)
	infoBadge.Fprint(w, "[BOT]")
	fmt.Fprint(w, " Server starting on ")
	neonBlue.Fprintf(w, "http://%s\n", addr)

	infoBadge.Fprint(w, "[BOT]")
	fmt.Fprint(w, " Model: ")
	accentText.Fprint(w, model)
	fmt.Fprint(w, " | Retries: ")
	successText.Fprint(w, retries)
	fmt.Fprint(w, " | Key: ")
	mutedText.Fprintln(w, security.MaskKey(apiKey))

	fmt.Fprintln(w)
	printEndpoints(w)
}

// printEndpoints prints the available API endpoints.
func printEndpoints(w io.Writer) {
	mutedText.Fprintln(w, "  ┌──────────────────────────────────────────────────┐")
	mutedText.Fprint(w, "  │ ")
	methodPOST.Fprint(w, " POST ")
	fmt.Fprint(w, " /v1/chat  ")
	mutedText.Fprint(w, "  Chat with the configured model  ")
	mutedText.Fprintln(w, "  │")

	mutedText.Fprint(w, "  │ ")
	methodGET.Fprint(w, " GET  ")
	fmt.Fprint(w, " /health   ")
	mutedText.Fprint(w, "  Health check                    ")
	mutedText.Fprintln(w, "  │")

	mutedText.Fprintln(w, "  └──────────────────────────────────────────────────┘")
	fmt.Fprintln(w)
}

// PrintShutdown prints a styled shutdown message.
func PrintShutdown(w io.Writer) {
	fmt.Fprintln(w)
	warningBadge.Fprint(w, "[SHUTDOWN]")
	warningText.Fprintln(w, " Graceful shutdown initiated...")
}

// PrintGoodbye prints a styled goodbye message.
func PrintGoodbye(w io.Writer) {
	successBadge.Fprint(w, " OK ")
	fmt.Fprint(w, " ")
	successText.Fprintln(w, "Server stopped. Goodbye!")
}
