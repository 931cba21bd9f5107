// Package tui renders today's practice plan as an interactive checklist.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"practice-planner/internal/model"
	"practice-planner/internal/service"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))
	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)
	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
	statusBar = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("237")).
			Padding(0, 1)
)

type mode int

const (
	modeList mode = iota
	modeAdd
)

type row struct {
	item model.DueItem
	sub  bool
}

// Model is the bubbletea model of the checklist.
type Model struct {
	ctx        context.Context
	items      *service.ItemService
	recurrence *service.RecurrenceService
	day        string

	rows   []row
	stats  model.Stats
	cursor int
	mode   mode
	input  textinput.Model
	keys   KeyMap
	help   help.Model
	status string
}

func New(ctx context.Context, items *service.ItemService, recurrence *service.RecurrenceService, day string) Model {
	ti := textinput.New()
	ti.Placeholder = "Name, Category"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		ctx:        ctx,
		items:      items,
		recurrence: recurrence,
		day:        day,
		input:      ti,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		status:     "space marks done, a adds an item, ? shows all keys",
	}
	m.reload()
	return m
}

// Run blocks until the user quits.
func Run(ctx context.Context, items *service.ItemService, recurrence *service.RecurrenceService, day string) error {
	_, err := tea.NewProgram(New(ctx, items, recurrence, day), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) reload() {
	groups, stats, err := m.recurrence.TodayView(m.ctx, m.day)
	if err != nil {
		m.status = fmt.Sprintf("load failed: %v", err)
		return
	}
	var rows []row
	for _, g := range groups {
		rows = append(rows, row{item: g.DueItem})
		for _, sub := range g.SubItems {
			rows = append(rows, row{item: sub, sub: true})
		}
	}
	m.rows = rows
	m.stats = stats
	m.cursor = clampCursor(m.cursor, len(m.rows))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == modeAdd {
			return m.updateAddMode(msg)
		}
		return m.updateListMode(msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m Model) updateListMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = clampCursor(m.cursor-1, len(m.rows))
	case key.Matches(msg, m.keys.Down):
		m.cursor = clampCursor(m.cursor+1, len(m.rows))
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Refresh):
		m.reload()
		m.status = "Refreshed"
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.input.SetValue("")
		m.status = "New item: type \"name, category\" and press enter"
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Toggle):
		if len(m.rows) == 0 {
			return m, nil
		}
		current := m.rows[m.cursor].item
		done, err := m.recurrence.Toggle(m.ctx, current.ID, m.day)
		if err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		if done {
			m.status = fmt.Sprintf("Done: %s", current.Name)
		} else {
			m.status = fmt.Sprintf("Unmarked: %s", current.Name)
		}
		m.reload()
	case key.Matches(msg, m.keys.Pause):
		if len(m.rows) == 0 {
			return m, nil
		}
		item, err := m.items.ToggleStatus(m.ctx, m.rows[m.cursor].item.ID)
		if err != nil {
			m.status = fmt.Sprintf("pause failed: %v", err)
			return m, nil
		}
		if item == nil {
			m.status = "item not found"
			m.reload()
			return m, nil
		}
		m.status = fmt.Sprintf("Paused: %s", item.Name)
		m.reload()
	}
	return m, nil
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeList
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		name, category, _ := strings.Cut(m.input.Value(), ",")
		item, err := m.items.AddItem(m.ctx, service.ItemInput{Name: name, Category: category})
		if err != nil {
			m.status = fmt.Sprintf("add failed: %v", err)
			return m, nil
		}
		m.input.Blur()
		m.mode = modeList
		m.status = fmt.Sprintf("Added: %s", item.Name)
		m.reload()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Practice plan · " + m.day))
	sb.WriteString("\n")
	sb.WriteString(metaStyle.Render(service.FormatStats(m.stats)))
	sb.WriteString("\n\n")

	if len(m.rows) == 0 {
		sb.WriteString("Nothing due today.\n")
	}
	for i, r := range m.rows {
		line := renderRow(r)
		if i == m.cursor {
			line = cursorStyle.Render(line)
		} else if r.item.IsCompleted {
			line = doneStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if m.mode == modeAdd {
		sb.WriteString("\n")
		sb.WriteString(m.input.View())
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(statusBar.Render(m.status))
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func renderRow(r row) string {
	check := "[ ]"
	if r.item.IsCompleted {
		check = "[x]"
	}
	indent := ""
	if r.sub {
		indent = "    "
	}
	since := "new"
	if d := r.item.DaysSinceLastCompletion; d != nil {
		since = fmt.Sprintf("%dd ago", *d)
	}
	return fmt.Sprintf("%s%s %s (%s, %s)", indent, check, r.item.Name, r.item.Category, since)
}

func clampCursor(cursor, length int) int {
	if length == 0 || cursor < 0 {
		return 0
	}
	if cursor >= length {
		return length - 1
	}
	return cursor
}
