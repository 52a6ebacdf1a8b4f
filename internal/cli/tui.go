package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/fsdcheck/pkg/report"
	"github.com/matzehuels/fsdcheck/pkg/rules"
)

// List styles
var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	listLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(10)
	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

// =============================================================================
// ViolationListModel - Interactive violation browser
// =============================================================================

// ViolationListModel is the bubbletea model for browsing the violations of
// a report.
type ViolationListModel struct {
	Report     *report.Report
	Visible    []rules.Violation
	Cursor     int
	Height     int
	Offset     int
	ErrorsOnly bool
	ShowDetail bool
}

// NewViolationListModel creates a model listing all violations of r.
func NewViolationListModel(r *report.Report) ViolationListModel {
	m := ViolationListModel{Report: r, Height: 15, ShowDetail: true}
	m.filter()
	return m
}

// filter recomputes the visible violations and keeps the cursor in range.
func (m *ViolationListModel) filter() {
	m.Visible = m.Visible[:0]
	for _, v := range m.Report.Violations {
		if m.ErrorsOnly && v.Severity != rules.SeverityError {
			continue
		}
		m.Visible = append(m.Visible, v)
	}
	m.Cursor = min(m.Cursor, max(len(m.Visible)-1, 0))
	m.Offset = min(m.Offset, m.Cursor)
}

// Selected returns the violation under the cursor.
func (m ViolationListModel) Selected() (rules.Violation, bool) {
	if m.Cursor >= len(m.Visible) {
		return rules.Violation{}, false
	}
	return m.Visible[m.Cursor], true
}

func (m ViolationListModel) Init() tea.Cmd {
	return nil
}

func (m ViolationListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
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
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "e":
			m.ErrorsOnly = !m.ErrorsOnly
			m.Visible = nil
			m.filter()
		case "enter", " ":
			m.ShowDetail = !m.ShowDetail
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-16, 5)
	}
	return m, nil
}

func (m ViolationListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Violations"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(m.Report.SummaryLine()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  e errors only  q quit"))
	b.WriteString("\n\n")

	if len(m.Visible) == 0 {
		b.WriteString(StyleSuccess.Render("  No violations"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Visible))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		v := m.Visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, string(v.Severity), v.Rule, violationTarget(v)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Severity", "Rule", "Dependency").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Visible) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 1 {
				base = severityStyle(m.Visible[idx].Severity)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			if col != 1 {
				return base.Foreground(colorGray)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))
	b.WriteString("\n")

	if v, ok := m.Selected(); ok && m.ShowDetail {
		b.WriteString(detailBoxStyle.Render(violationDetail(v)))
		b.WriteString("\n")
	}
	return b.String()
}

// violationDetail formats every field of v for the detail pane.
func violationDetail(v rules.Violation) string {
	lines := []string{
		listLabelStyle.Render("Rule") + severityStyle(v.Severity).Render(v.Rule),
		listLabelStyle.Render("From") + StyleValue.Render(v.From),
		listLabelStyle.Render("To") + StyleValue.Render(v.To),
	}
	if len(v.CyclePath) > 0 {
		lines = append(lines, listLabelStyle.Render("Cycle")+StyleValue.Render(strings.Join(v.CyclePath, " "+iconArrow+" ")))
	}
	if v.Comment != "" {
		lines = append(lines, listLabelStyle.Render("Why")+v.Comment)
	}
	return strings.Join(lines, "\n")
}
