package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/bz888/accbuddy/internal/conversation"
)

const (
	userLabel = "[red::]You:[-]"
	botLabel  = "[green::]Bot:[-]"
)

// renderTranscript draws the conversation pane for s. The welcome screen is shown
// until the first turn is appended.
func renderTranscript(s conversation.State, prompts []string, notice string) string {
	var b strings.Builder
	if len(s.History) == 0 {
		writeWelcome(&b, prompts)
	}
	for _, m := range s.History {
		label := botLabel
		if m.Role == conversation.RoleUser {
			label = userLabel
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", label, tview.Escape(m.Content))
	}
	if s.Request == conversation.Pending {
		fmt.Fprintf(&b, "%s\n[::d]Thinking...[::-]\n\n", botLabel)
	}
	if notice != "" {
		fmt.Fprintf(&b, "[yellow::]%s[-::-]\n", tview.Escape(notice))
	}
	return b.String()
}

func writeWelcome(b *strings.Builder, prompts []string) {
	b.WriteString("[::b]Start a conversation[::-]\n")
	b.WriteString("Get started with an accounting task or topic.\n\n")
	if len(prompts) == 0 {
		return
	}
	b.WriteString("Accounting prompts (/prompt <n> to use one):\n")
	for i, p := range prompts {
		fmt.Fprintf(b, "  %d. %s\n", i+1, tview.Escape(p))
	}
	b.WriteString("\n")
}

// bannerText is the connection line above the conversation. It is empty once the
// backend answered.
func bannerText(status conversation.ConnectionStatus, backendURL string) string {
	switch status {
	case conversation.Checking:
		return "[yellow]Checking backend connection...[-]"
	case conversation.Error:
		return fmt.Sprintf("[red]Backend connection failed. Make sure the backend server is running at %s.[-]", tview.Escape(backendURL))
	default:
		return ""
	}
}

func departmentsText(departments []string) string {
	if len(departments) == 0 {
		return "No results found"
	}
	return "Departments:\n- " + strings.Join(departments, "\n- ")
}
