package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/agentaudit/agentaudit/internal/model"
)

// PickerItem is one selectable row in the interactive session picker:
// `list sessions --pick`'s unit of selection.
type PickerItem struct {
	Session *model.Session
	Label   string // fuzzy-matched against; e.g. "<agent> <cwd> <session id>"
}

// pickerSource adapts []PickerItem to fuzzy.Source, the same shape the
// teacher's fuzzySearchSource wraps its search entries in.
type pickerSource []PickerItem

func (s pickerSource) String(i int) string { return s[i].Label }
func (s pickerSource) Len() int            { return len(s) }

// picker is the bubbletea model backing the interactive picker. It embeds
// a textinput.Model for the query box, the same component the teacher's
// GlobalSearch overlay uses, and narrows a fixed item list via
// sahilm/fuzzy rather than re-querying an index.
type picker struct {
	input    textinput.Model
	items    []PickerItem
	filtered []fuzzy.Match
	cursor   int
	theme    Theme
	width    int
	height   int
	selected *model.Session
	quit     bool
}

func newPicker(items []PickerItem, theme Theme) picker {
	ti := textinput.New()
	ti.Placeholder = "fuzzy filter sessions..."
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	p := picker{input: ti, items: items, theme: theme}
	p.refilter()
	return p
}

func (p *picker) refilter() {
	query := p.input.Value()
	if query == "" {
		p.filtered = make([]fuzzy.Match, len(p.items))
		for i := range p.items {
			p.filtered[i] = fuzzy.Match{Index: i}
		}
	} else {
		p.filtered = fuzzy.FindFrom(query, pickerSource(p.items))
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = 0
	}
}

func (p picker) Init() tea.Cmd { return textinput.Blink }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		return p, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			p.quit = true
			return p, tea.Quit
		case "enter":
			if len(p.filtered) > 0 {
				p.selected = p.items[p.filtered[p.cursor].Index].Session
			}
			return p, tea.Quit
		case "up", "ctrl+p":
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		case "down", "ctrl+n":
			if p.cursor < len(p.filtered)-1 {
				p.cursor++
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.refilter()
	return p, cmd
}

func (p picker) View() string {
	pal := paletteFor(p.theme)
	boxStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(pal.Border).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Padding(0, 1).Background(pal.Accent).Foreground(pal.Text)
	resultStyle := lipgloss.NewStyle().Padding(0, 1)

	var b strings.Builder
	b.WriteString(boxStyle.Render(p.input.View()))
	b.WriteString("\n")

	for i, m := range p.filtered {
		item := p.items[m.Index]
		line := fmt.Sprintf("%d  %s", i+1, item.Label)
		if i == p.cursor {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(resultStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(p.filtered) == 0 {
		b.WriteString(resultStyle.Render("(no matches)"))
		b.WriteString("\n")
	}

	return b.String()
}

// Pick runs an interactive, fuzzy-filterable session picker and returns the
// chosen Session, or nil if the user cancelled (esc/ctrl+c) or nothing
// matched.
func Pick(items []PickerItem, theme Theme) (*model.Session, error) {
	p := newPicker(items, theme)
	finalModel, err := tea.NewProgram(p).Run()
	if err != nil {
		return nil, fmt.Errorf("render: picker: %w", err)
	}
	final := finalModel.(picker)
	return final.selected, nil
}

// ItemLabel builds the fuzzy-match label for a session, per picker's
// convention of matching on agent, cwd, and session id together.
func ItemLabel(s *model.Session) string {
	return fmt.Sprintf("%s %s %s", s.Agent(), s.CWD(), s.ID())
}
