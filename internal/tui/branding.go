package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/pders01/newsdesk/internal/config"
)

const AppName = "newsdesk"

var LogoLines = []string{
	"█▄ █ █▀▀ █ █ █ █▀▀ █▀▄ █▀▀ █▀▀ █▄▀",
	"█ ▀█ █▀▀ █▄█▄█ ▀▀█ █ █ █▀▀ ▀▀█ █▀▄",
	"▀  ▀ ▀▀▀  ▀ ▀  ▀▀▀ ▀▀  ▀▀▀ ▀▀▀ ▀ ▀",
}

const CompactLogo = `newsdesk ›`

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#3B82F6"),
	lipgloss.Color("#60A5FA"),
	lipgloss.Color("#F59E0B"),
}

// Brand colors
var (
	PrimaryColor   = lipgloss.Color("#3B82F6")
	SecondaryColor = lipgloss.Color("#60A5FA")
	AccentColor    = lipgloss.Color("#F59E0B")

	BackgroundColor = lipgloss.Color("#111827")
	SurfaceColor    = lipgloss.Color("#1F2937")
	TextColor       = lipgloss.Color("#F3F4F6")
	MutedColor      = lipgloss.Color("#9CA3AF")

	HighlightColor = lipgloss.Color("#FDE68A")
	ErrorColor     = lipgloss.Color("#EF4444")
	SuccessColor   = lipgloss.Color("#10B981")
)

var (
	LogoStyle          lipgloss.Style
	TitleStyle         lipgloss.Style
	HeaderStyle        lipgloss.Style
	StatusBarStyle     lipgloss.Style
	HeadlineStyle      lipgloss.Style
	SourceStyle        lipgloss.Style
	HelpStyle          lipgloss.Style
	TimeStyle          lipgloss.Style
	ErrorMessageStyle  lipgloss.Style
	ErrorPanelStyle    lipgloss.Style
	SeparatorStyle     lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
	CategoryStyle      lipgloss.Style
	ActiveCategory     lipgloss.Style
	FieldLabelStyle    lipgloss.Style
	FocusedFieldStyle  lipgloss.Style
	EmptyStyle         = lipgloss.NewStyle()
)

func init() {
	buildStyles()
}

// ApplyColors overrides the palette with any colors set in cfg.
func ApplyColors(cfg config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, cfg.Primary)
	set(&SecondaryColor, cfg.Secondary)
	set(&AccentColor, cfg.Accent)
	set(&TextColor, cfg.Text)
	set(&MutedColor, cfg.Muted)
	set(&ErrorColor, cfg.Error)
	set(&SuccessColor, cfg.Success)
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	HeadlineStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true)

	SourceStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	TimeStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Faint(true)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	ErrorPanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ErrorColor).
		Padding(0, 2)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(HighlightColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	CategoryStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	ActiveCategory = lipgloss.NewStyle().
		Foreground(BackgroundColor).
		Background(AccentColor).
		Bold(true).
		Padding(0, 1)

	FieldLabelStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Width(12)

	FocusedFieldStyle = lipgloss.NewStyle().
		Foreground(AccentColor).
		Bold(true).
		Width(12)
}

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return EmptyStyle.Width(width).Height(height).MaxHeight(height)
}

func GetWelcomeMessage() string {
	return GetCompactBanner(MsgStartSearch, MsgStartSearchSub)
}

func GetCompactBanner(title, message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HeaderStyle.Render(title),
		HelpStyle.Render(message),
	)
}

// Banner renders the startup banner with an optional version tag.
func Banner(version string) string {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("Headlines & Search %s", versionTag))
	} else {
		lines = append(lines, "Headlines & Search")
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	banner := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))

	rule := lipgloss.NewStyle().
		Foreground(AccentColor).
		Render("━━ ◆ ━━")

	return lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Width(70).Align(lipgloss.Center).Render(banner),
		lipgloss.NewStyle().Width(70).Align(lipgloss.Center).MarginBottom(1).Render(rule),
	)
}

func ShowBanner(version string) {
	fmt.Println(Banner(version))
}
