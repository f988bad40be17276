package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

const (
	listHeight       = 12
	detailLabelWidth = 12
	minWidth         = 60
	maxWidth         = 160
	// Fixed column widths
	colWidthTime  = 23
	colWidthLevel = 5
	colWidthComp  = 18
)

// Model is the bubbletea model for the interactive entry browser.
type Model struct {
	entries      []*types.LogEntry
	filtered     []*types.LogEntry
	cursor       int
	offset       int // for scrolling
	search       string
	quitting     bool
	termWidth    int
	contentWidth int   // width inside the box (excluding borders)
	colWidths    []int // [Time, Level, Component, Message]
}

// NewModel creates a browser model over the given entries.
func NewModel(entries []*types.LogEntry) Model {
	m := Model{
		entries:   entries,
		filtered:  entries,
		termWidth: 80, // default
	}
	m.calculateWidths()
	return m
}

// calculateWidths computes responsive column widths based on terminal size
func (m *Model) calculateWidths() {
	m.contentWidth = m.termWidth - 2
	if m.contentWidth < minWidth {
		m.contentWidth = minWidth
	}
	if m.contentWidth > maxWidth {
		m.contentWidth = maxWidth
	}

	// cursor(3) + Time + spacing(2) + Level + spacing(2) + Component + spacing(2) + Message
	fixedWidth := 3 + colWidthTime + 2 + colWidthLevel + 2 + colWidthComp + 2
	messageWidth := m.contentWidth - fixedWidth
	if messageWidth < 10 {
		messageWidth = 10
	}

	m.colWidths = []int{colWidthTime, colWidthLevel, colWidthComp, messageWidth}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.calculateWidths()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}

		case tea.KeyDown:
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				if m.cursor >= m.offset+listHeight {
					m.offset = m.cursor - listHeight + 1
				}
			}

		case tea.KeyPgUp:
			m.cursor -= listHeight
			if m.cursor < 0 {
				m.cursor = 0
			}
			if m.cursor < m.offset {
				m.offset = m.cursor
			}

		case tea.KeyPgDown:
			m.cursor += listHeight
			if m.cursor > len(m.filtered)-1 {
				m.cursor = len(m.filtered) - 1
			}
			if m.cursor < 0 {
				m.cursor = 0
			}
			if m.cursor >= m.offset+listHeight {
				m.offset = m.cursor - listHeight + 1
			}

		case tea.KeyBackspace:
			if len(m.search) > 0 {
				m.search = m.search[:len(m.search)-1]
				m.filterEntries()
			}

		case tea.KeyRunes:
			m.search += string(msg.Runes)
			m.filterEntries()
		}
	}

	return m, nil
}

// filterEntries filters the entries based on the search query
func (m *Model) filterEntries() {
	if m.search == "" {
		m.filtered = m.entries
	} else {
		query := strings.ToLower(m.search)
		m.filtered = nil
		for _, entry := range m.entries {
			if strings.Contains(strings.ToLower(entry.Component), query) ||
				strings.Contains(strings.ToLower(entry.ComponentID), query) ||
				strings.Contains(strings.ToLower(entry.Name), query) ||
				strings.Contains(strings.ToLower(entry.Message), query) {
				m.filtered = append(m.filtered, entry)
			}
		}
	}
	// Reset cursor if out of bounds
	if m.cursor >= len(m.filtered) {
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		} else {
			m.cursor = 0
		}
	}
	m.offset = 0
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	w := m.contentWidth

	// Top border
	sb.WriteString(BorderStyle.Render(TopLeft))
	sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w)))
	sb.WriteString(BorderStyle.Render(TopRight))
	sb.WriteString("\n")

	// Search input
	searchLine := " > " + m.search
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString(ComponentStyle.Render(padToWidth(searchLine, w)))
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	// Empty line after search
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString(strings.Repeat(" ", w))
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	// Entry list
	visibleEnd := m.offset + listHeight
	if visibleEnd > len(m.filtered) {
		visibleEnd = len(m.filtered)
	}

	for i := m.offset; i < visibleEnd; i++ {
		sb.WriteString(m.renderEntryRow(i))
	}

	// Fill remaining lines if list is short
	for i := len(m.filtered); i < m.offset+listHeight; i++ {
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString(strings.Repeat(" ", w))
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString("\n")
	}

	// Separator
	sb.WriteString(BorderStyle.Render(LeftT))
	sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w)))
	sb.WriteString(BorderStyle.Render(RightT))
	sb.WriteString("\n")

	// Details panel
	sb.WriteString(m.renderDetailsPanel())

	// Bottom border
	sb.WriteString(BorderStyle.Render(BottomLeft))
	sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w)))
	sb.WriteString(BorderStyle.Render(BottomRight))
	sb.WriteString("\n")

	// Status bar
	sb.WriteString(m.renderStatusBar())

	return sb.String()
}

func (m Model) renderEntryRow(idx int) string {
	var sb strings.Builder
	entry := m.filtered[idx]
	w := m.contentWidth

	sb.WriteString(BorderStyle.Render(Vertical))

	// Track plain text width as we build the line
	var line strings.Builder
	plainWidth := 0

	// Cursor indicator (3 chars)
	if idx == m.cursor {
		line.WriteString(" > ")
	} else {
		line.WriteString("   ")
	}
	plainWidth += 3

	// Time column
	timeText := padRight(entry.Timestamp.Format(timestampLayout), m.colWidths[0])
	line.WriteString(TimestampStyle.Render(timeText))
	line.WriteString("  ")
	plainWidth += m.colWidths[0] + 2

	// Level column
	levelText := padRight(string(entry.Level), m.colWidths[1])
	line.WriteString(LevelStyle(entry.Level).Render(levelText))
	line.WriteString("  ")
	plainWidth += m.colWidths[1] + 2

	// Component column
	compText := padRight(entry.Component, m.colWidths[2])
	line.WriteString(ComponentStyle.Render(compText))
	line.WriteString("  ")
	plainWidth += m.colWidths[2] + 2

	// Message column
	messageText := padRight(entry.Message, m.colWidths[3])
	line.WriteString(messageText)
	plainWidth += m.colWidths[3]

	// Pad to fill width
	if plainWidth < w {
		line.WriteString(strings.Repeat(" ", w-plainWidth))
	}

	sb.WriteString(line.String())
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderDetailsPanel() string {
	var sb strings.Builder
	w := m.contentWidth

	// Header
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString(HeaderStyle.Render(padToWidth(" Entry Details", w)))
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	// Underline
	sb.WriteString(BorderStyle.Render(Vertical))
	underline := " " + strings.Repeat("─", 20)
	sb.WriteString(MutedStyle.Render(padToWidth(underline, w)))
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	if len(m.filtered) == 0 {
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString(MutedStyle.Render(padToWidth(" No entries found", w)))
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString("\n")

		for i := 0; i < 8; i++ {
			sb.WriteString(BorderStyle.Render(Vertical))
			sb.WriteString(strings.Repeat(" ", w))
			sb.WriteString(BorderStyle.Render(Vertical))
			sb.WriteString("\n")
		}
	} else {
		entry := m.filtered[m.cursor]

		details := []struct {
			label string
			value string
			style lipgloss.Style
		}{
			{"Time:", entry.Timestamp.Format(timestampLayout), TimestampStyle},
			{"Level:", string(entry.Level), LevelStyle(entry.Level)},
			{"Component:", entry.Component, ComponentStyle},
			{"Path:", formatOptional(entry.ComponentID), PathStyle},
			{"Type:", entry.KindLabel(), KindStyle},
			{"Direction:", formatOptional(entry.Direction.String()), KindStyle},
			{"Request ID:", formatOptional(entry.RequestID), MutedStyle},
			{"Endpoint:", formatOptional(entry.Endpoint), MutedStyle},
			{"Payload:", formatOptional(entry.PayloadJSON()), PathStyle},
		}

		for _, d := range details {
			sb.WriteString(BorderStyle.Render(Vertical))

			labelText := padRight(d.label, detailLabelWidth)
			valueText := d.value

			maxValueWidth := w - 1 - detailLabelWidth
			if runewidth.StringWidth(valueText) > maxValueWidth {
				valueText = runewidth.Truncate(valueText, maxValueWidth, "...")
			}

			plainWidth := 1 + detailLabelWidth + runewidth.StringWidth(valueText)

			line := MutedStyle.Render(" "+labelText) + d.style.Render(valueText)

			if plainWidth < w {
				line += strings.Repeat(" ", w-plainWidth)
			}

			sb.WriteString(line)
			sb.WriteString(BorderStyle.Render(Vertical))
			sb.WriteString("\n")
		}
	}

	// Empty line at end
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString(strings.Repeat(" ", w))
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var sb strings.Builder
	w := m.contentWidth + 2 // include border width for status bar

	countInfo := fmt.Sprintf("  %d/%d entries", len(m.filtered), len(m.entries))
	hintsPlain := "[↑/↓:move] [type:filter] [Esc:quit]"

	countWidth := runewidth.StringWidth(countInfo)
	hintsWidth := runewidth.StringWidth(hintsPlain)
	padding := w - countWidth - hintsWidth

	sb.WriteString(countInfo)
	if padding > 0 {
		sb.WriteString(strings.Repeat(" ", padding))
	}
	sb.WriteString(HintStyle.Render(hintsPlain))
	sb.WriteString("\n")

	return sb.String()
}

func formatOptional(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Browse runs the interactive entry browser until the user quits.
func Browse(entries []*types.LogEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no entries to browse")
	}

	m := NewModel(entries)
	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running browser: %w", err)
	}
	return nil
}
