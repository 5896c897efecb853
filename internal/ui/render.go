package ui

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/GitGautamHub/smart-doctor-cli/internal/api"
)

var (
	humanLabel = color.New(color.FgCyan, color.Bold)
	aiLabel    = color.New(color.FgGreen, color.Bold)
	titleText  = color.New(color.FgWhite, color.Bold)
)

// Title prints a bold heading line.
func (t *Terminal) Title(text string) {
	titleText.Fprintln(t.out, text)
}

// Transcript prints the whole message log in display order.
func (t *Terminal) Transcript(msgs []api.Message) {
	for _, m := range msgs {
		t.Message(m)
	}
}

// Message prints one transcript entry with a role label.
func (t *Terminal) Message(m api.Message) {
	switch m.Role {
	case api.RoleHuman:
		humanLabel.Fprint(t.out, "You: ")
	case api.RoleAI:
		aiLabel.Fprint(t.out, "Assistant: ")
	default:
		fmt.Fprintf(t.out, "%s: ", m.Role)
	}
	fmt.Fprintln(t.out, m.Content)
}

// Notice prints an informational line in yellow.
func (t *Terminal) Notice(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(t.out, format+"\n", args...)
}

// Errorf prints an error line in red.
func (t *Terminal) Errorf(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(t.out, format+"\n", args...)
}

// Successf prints a confirmation line in green.
func (t *Terminal) Successf(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(t.out, format+"\n", args...)
}

// ChatHelp lists the commands available inside the conversation. The
// report shortcut only exists for doctors.
func (t *Terminal) ChatHelp(doctor bool) {
	t.Notice("Type a message and press enter to chat.")
	if doctor {
		t.Notice("Commands: /report  /logout  /help  /quit")
	} else {
		t.Notice("Commands: /logout  /help  /quit")
	}
}
