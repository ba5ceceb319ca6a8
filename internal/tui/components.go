package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader returns a consistently styled header with an optional muted subtitle.
// Width is used to guide truncation via helpers.
func renderHeader(title, subtitle string, width int) string {
	title = truncateEnd(title, width-2)
	subtitle = truncateEnd(subtitle, width-2)
	rows := []string{HeaderStyle.Render(title)}
	if subtitle != "" {
		rows = append(rows, renderMuted(subtitle))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderInputFrame draws a rounded bordered container around a rendered input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

// renderCentered centers the provided content within the given width/height box.
func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

// renderErrorPanel draws the failure box shown above any retained results.
func renderErrorPanel(message string, width int) string {
	inner := width - 8
	if inner < 20 {
		inner = 20
	}
	return ErrorPanelStyle.Width(inner).Render(lipgloss.JoinVertical(
		lipgloss.Left,
		ErrorMessageStyle.Render("Error"),
		lipgloss.NewStyle().Foreground(TextColor).Render(message),
		"",
		renderHelp(MsgRetry),
	))
}

// renderPagination shows the page cursor with the keys that move it. Keys
// are only offered for pages that exist.
func renderPagination(page, total int) string {
	if total <= 1 {
		return ""
	}
	parts := []string{}
	if page > 1 {
		parts = append(parts, "[ p: prev")
	}
	parts = append(parts, MsgPageOf(page, total))
	if page < total {
		parts = append(parts, "n: next ]")
	}
	return renderMuted(strings.Join(parts, "  "))
}

// renderCategoryBar lists "All" followed by categories, highlighting active.
func renderCategoryBar(categories []string, active string, width int) string {
	items := make([]string, 0, len(categories)+1)
	all := append([]string{""}, categories...)
	for _, c := range all {
		label := "All"
		if c != "" {
			label = strings.ToUpper(c[:1]) + c[1:]
		}
		if c == active {
			items = append(items, ActiveCategory.Render(label))
		} else {
			items = append(items, CategoryStyle.Render(label))
		}
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, items...))
}
