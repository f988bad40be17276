package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/eirenik0/log-analyzer/pkg/types"
)

// Box drawing characters
const (
	TopLeft     = "╭"
	TopRight    = "╮"
	BottomLeft  = "╰"
	BottomRight = "╯"
	Horizontal  = "─"
	Vertical    = "│"
	LeftT       = "├"
	RightT      = "┤"
	TopT        = "┬"
	BottomT     = "┴"
	Cross       = "┼"
)

// Color palette
const (
	ColorBorder    = "240"
	ColorHeader    = "252"
	ColorTimestamp = "245"
	ColorComponent = "81"
	ColorPath      = "245"
	ColorKind      = "214"
	ColorError     = "196"
	ColorWarn      = "214"
	ColorInfo      = "81"
	ColorDebug     = "245"
	ColorAdded     = "82"
	ColorRemoved   = "196"
	ColorModified  = "214"
	ColorMuted     = "240"
	ColorHint      = "245"
)

// Shared styles
var (
	BorderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder))
	HeaderStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorHeader))
	TimestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorTimestamp))
	ComponentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorComponent))
	PathStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPath))
	KindStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorKind))
	ErrorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorError))
	WarnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarn))
	InfoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorInfo))
	DebugStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDebug))
	AddedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAdded))
	RemovedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRemoved))
	ModifiedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorModified))
	MutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMuted))
	HintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHint))
)

// SetColor enables or disables colored output globally.
func SetColor(enabled bool) {
	color.NoColor = !enabled
	if enabled {
		lipgloss.SetColorProfile(termenv.ColorProfile())
	} else {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// LevelStyle returns the style for a severity level.
func LevelStyle(level types.Level) lipgloss.Style {
	switch level {
	case types.LevelError:
		return ErrorStyle
	case types.LevelWarn:
		return WarnStyle
	case types.LevelInfo:
		return InfoStyle
	default:
		return DebugStyle
	}
}

// padRight pads a string to the specified display width using runewidth
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return runewidth.Truncate(s, width, "...")
	}
	return s + strings.Repeat(" ", width-sw)
}

func padToWidth(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return runewidth.Truncate(s, width, "...")
	}
	return s + strings.Repeat(" ", width-sw)
}

// Truncate shortens a string with ellipsis
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
