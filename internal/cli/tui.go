package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stackrules/pkg/rules"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RuleBrowserModel - Interactive rule browsing
// =============================================================================

// sourceFilters is the cycle of source filters; "" shows every rule.
var sourceFilters = append([]rules.Source{""}, rules.Sources...)

// RuleBrowserModel is the bubbletea model for browsing a rule set. The list
// view shows one row per rule; enter opens the rule's markdown.
type RuleBrowserModel struct {
	Rules   []rules.Rule
	Visible []int // Indexes into Rules passing the source filter
	Filter  int   // Index into sourceFilters
	Cursor  int
	Offset  int
	Height  int

	Detail bool
	Scroll int
	lines  []string

	render func(markdown string) string
}

// NewRuleBrowserModel creates a browser over rs. render formats a rule's
// markdown for the detail view; nil shows it unformatted.
func NewRuleBrowserModel(rs []rules.Rule, render func(string) string) RuleBrowserModel {
	if render == nil {
		render = func(s string) string { return s }
	}
	m := RuleBrowserModel{Rules: rs, Height: 15, render: render}
	m.applyFilter()
	return m
}

func (m RuleBrowserModel) Init() tea.Cmd {
	return nil
}

func (m RuleBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Detail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m RuleBrowserModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
		}
	case "down", "j":
		if m.Cursor < len(m.Visible)-1 {
			m.Cursor++
			if m.Cursor >= m.Offset+m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
	case "s":
		m.Filter = (m.Filter + 1) % len(sourceFilters)
		m.applyFilter()
	case "enter":
		r, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.Detail = true
		m.Scroll = 0
		m.lines = strings.Split(strings.TrimRight(m.render(r.Content.Markdown), "\n"), "\n")
	}
	return m, nil
}

func (m RuleBrowserModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace", "left", "h":
		m.Detail = false
		m.lines = nil
	case "up", "k":
		if m.Scroll > 0 {
			m.Scroll--
		}
	case "down", "j":
		if m.Scroll < len(m.lines)-m.Height {
			m.Scroll++
		}
	}
	return m, nil
}

// applyFilter recomputes Visible for the current source filter and resets
// the cursor.
func (m *RuleBrowserModel) applyFilter() {
	src := sourceFilters[m.Filter]
	m.Visible = make([]int, 0, len(m.Rules))
	for i, r := range m.Rules {
		if src == "" || r.Source == src {
			m.Visible = append(m.Visible, i)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

// Selected returns the rule under the cursor.
func (m RuleBrowserModel) Selected() (rules.Rule, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Visible) {
		return rules.Rule{}, false
	}
	return m.Rules[m.Visible[m.Cursor]], true
}

func (m RuleBrowserModel) View() string {
	if m.Detail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m RuleBrowserModel) viewList() string {
	var b strings.Builder

	filter := "all sources"
	if src := sourceFilters[m.Filter]; src != "" {
		filter = string(src)
	}
	b.WriteString(StyleTitle.Render("Rules"))
	b.WriteString(" " + listDimStyle.Render("("+filter+")"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  s source  q quit"))
	b.WriteString("\n\n")

	if len(m.Visible) == 0 {
		b.WriteString(listDimStyle.Render("  no rules"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Visible) {
		end = len(m.Visible)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rules[m.Visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			r.Name,
			packageLabel(r),
			string(r.Source),
			string(r.Category),
			fmt.Sprintf("%.2f", r.Confidence),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Rule", "Package", "Source", "Category", "Conf").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if col >= 3 {
				base = base.Foreground(colorGray)
			}
			if m.Offset+row == m.Cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))

	return b.String()
}

func (m RuleBrowserModel) viewDetail() string {
	var b strings.Builder

	r, _ := m.Selected()
	b.WriteString(listSelectedStyle.Render(r.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s · %s · %s · confidence %.2f", packageLabel(r), r.Source, r.Category, r.Confidence)))
	b.WriteString("\n")
	if r.Description != "" {
		b.WriteString(StyleValue.Render(r.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	end := m.Scroll + m.Height
	if end > len(m.lines) {
		end = len(m.lines)
	}
	for _, line := range m.lines[m.Scroll:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ scroll  esc back  q quit"))
	return b.String()
}

// packageLabel returns "name@version" for the package a rule belongs to.
func packageLabel(r rules.Rule) string {
	if r.PackageVersion == "" {
		return r.PackageName
	}
	return r.PackageName + "@" + r.PackageVersion
}
