package controller

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	gutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

const (
	headerLines = 2
	footerLines = 2
)

// TUI implements UI with an interactive Bubble Tea viewer for documents.
// Batch output is shared with SimpleUI.
type TUI struct {
	*SimpleUI
	cmd *cobra.Command
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{SimpleUI: NewSimpleUI(cmd), cmd: cmd}
}

// DisplayDocument opens a scrollable view of the rendered text. The footer
// shows the authoring position of the line under the cursor.
func (t *TUI) DisplayDocument(ctx context.Context, view DocumentView) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newDocumentModel(view)

	out := t.cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok {
		if width, height, err := term.GetSize(int(f.Fd())); err == nil {
			model = model.resize(width, height)
		}
	}

	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}

	return nil
}

type documentModel struct {
	view   DocumentView
	lines  []string
	vp     viewport.Model
	cursor int
	ready  bool
}

func newDocumentModel(view DocumentView) documentModel {
	return documentModel{
		view:  view,
		lines: strings.Split(view.Text, "\n"),
	}
}

func (dm documentModel) Init() tea.Cmd {
	return nil
}

func (dm documentModel) resize(width, height int) documentModel {
	bodyHeight := max(height-headerLines-footerLines, 1)

	if !dm.ready {
		dm.vp = viewport.New(width, bodyHeight)
		dm.ready = true
	} else {
		dm.vp.Width = width
		dm.vp.Height = bodyHeight
	}

	dm.vp.SetContent(dm.content())

	return dm.follow()
}

func (dm documentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return dm.resize(msg.Width, msg.Height), nil
	case tea.KeyMsg:
		return dm.handleKeyPress(msg)
	}

	return dm, nil
}

//nolint:exhaustive // Only navigation keys are handled.
func (dm documentModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return dm, tea.Quit
	}

	switch msg.String() {
	case "q":
		return dm, tea.Quit
	case "down", "j":
		dm.cursor++
	case "up", "k":
		dm.cursor--
	case "pgdown", " ":
		dm.cursor += dm.vp.Height
	case "pgup":
		dm.cursor -= dm.vp.Height
	case "home", "g":
		dm.cursor = 0
	case "end", "G":
		dm.cursor = len(dm.lines) - 1
	default:
		return dm, nil
	}

	dm.cursor = min(max(dm.cursor, 0), len(dm.lines)-1)
	if dm.ready {
		dm.vp.SetContent(dm.content())
	}

	return dm.follow(), nil
}

// follow scrolls the viewport so the cursor line is visible.
func (dm documentModel) follow() documentModel {
	if !dm.ready {
		return dm
	}

	if dm.cursor < dm.vp.YOffset {
		dm.vp.SetYOffset(dm.cursor)
	} else if dm.cursor >= dm.vp.YOffset+dm.vp.Height {
		dm.vp.SetYOffset(dm.cursor - dm.vp.Height + 1)
	}

	return dm
}

func (dm documentModel) content() string {
	var b strings.Builder

	for i, line := range dm.lines {
		if i > 0 {
			b.WriteByte('\n')
		}

		b.WriteString(gutterStyle.Render(fmt.Sprintf("%4d ", i+1)))

		if i == dm.cursor {
			b.WriteString(cursorStyle.Render(line))
		} else {
			b.WriteString(line)
		}
	}

	return b.String()
}

// origin describes where the cursor line came from.
func (dm documentModel) origin() string {
	if dm.view.Lookup == nil || len(dm.lines) == 0 {
		return "no source map"
	}

	line := dm.lines[dm.cursor]
	if mp, ok := dm.view.Lookup(dm.cursor+1, len(line)+1); ok {
		return fmt.Sprintf("%s:%d:%d", mp.Source, mp.OriginalLine, mp.OriginalColumn)
	}

	return "no mapping"
}

func (dm documentModel) View() string {
	if !dm.ready {
		return "loading...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(string(dm.view.Source)))
	b.WriteString("\n\n")
	b.WriteString(dm.vp.View())
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n",
		footerStyle.Render(fmt.Sprintf("line %d/%d -> %s", dm.cursor+1, len(dm.lines), dm.origin())),
		dimStyle.Render("↑/↓ move • pgup/pgdn page • q quit"),
	)

	return b.String()
}
