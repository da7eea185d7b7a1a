package wizard

import (
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"
)

// EditorDoneMsg is sent when the external editor returns with new content.
type EditorDoneMsg struct {
	Field   string
	Content string
}

// editorAvailable reports whether $EDITOR or $VISUAL is set.
func editorAvailable() bool {
	return os.Getenv("EDITOR") != "" || os.Getenv("VISUAL") != ""
}

// openEditor launches the user's $EDITOR on content for field.
func openEditor(field, content string) tea.Cmd {
	tmpfile, err := os.CreateTemp("", "leadwizard_"+field+"_*.txt")
	if err != nil {
		return nil // Silently fail - editor not available
	}

	if _, err := tmpfile.WriteString(content); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()

	cmd, err := editor.Command("leadwizard", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		return nil
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(tmpfile.Name()) }()
		if err != nil {
			return nil
		}

		data, err := os.ReadFile(tmpfile.Name())
		if err != nil {
			return nil
		}
		return EditorDoneMsg{Field: field, Content: strings.TrimRight(string(data), "\n")}
	})
}
