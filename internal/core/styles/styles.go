// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"sort"

	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#3b4261"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
	"gruvbox": {
		Primary:    lipgloss.Color("#83a598"),
		Secondary:  lipgloss.Color("#8ec07c"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#665c54"),
		Background: lipgloss.Color("#282828"),
		Surface:    lipgloss.Color("#3c3836"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	TextPrimaryStyle     lipgloss.Style
	TextPrimaryBoldStyle lipgloss.Style
	TextMutedStyle       lipgloss.Style
	TextForegroundStyle  lipgloss.Style
	TextErrorStyle       lipgloss.Style
	TextSuccessStyle     lipgloss.Style
	TextWarningStyle     lipgloss.Style

	PanelBorderStyle        lipgloss.Style
	PanelBorderFocusedStyle lipgloss.Style
	PanelTitleStyle         lipgloss.Style

	TranscriptRowStyle         lipgloss.Style
	TranscriptRowSelectedStyle lipgloss.Style
	TranscriptPageStyle        lipgloss.Style

	PagerPageHeaderStyle lipgloss.Style
	PagerHighlightStyle  lipgloss.Style

	SearchTierExactStyle   lipgloss.Style
	SearchTierFuzzyStyle   lipgloss.Style
	SearchRowSelectedStyle lipgloss.Style
	SearchEmptyStyle       lipgloss.Style

	StatusBarStyle  lipgloss.Style
	StatusKeyStyle  lipgloss.Style
	HelpLineStyle   lipgloss.Style
	SpinnerStyle    lipgloss.Style
	ToastInfoStyle  lipgloss.Style
	ToastErrorStyle lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	TextPrimaryStyle = lipgloss.NewStyle().Foreground(p.Primary)
	TextPrimaryBoldStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	TextForegroundStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	TextErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	TextWarningStyle = lipgloss.NewStyle().Foreground(p.Warning)

	PanelBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Muted)
	PanelBorderFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary)
	PanelTitleStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		Padding(0, 1)

	TranscriptRowStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	TranscriptRowSelectedStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Background(p.Surface).
		Bold(true)
	TranscriptPageStyle = lipgloss.NewStyle().Foreground(p.Secondary)

	PagerPageHeaderStyle = lipgloss.NewStyle().Foreground(p.Muted)
	PagerHighlightStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Warning)

	SearchTierExactStyle = lipgloss.NewStyle().Foreground(p.Success)
	SearchTierFuzzyStyle = lipgloss.NewStyle().Foreground(p.Warning)
	SearchRowSelectedStyle = lipgloss.NewStyle().
		Background(p.Surface).
		Bold(true)
	SearchEmptyStyle = lipgloss.NewStyle().Foreground(p.Muted).Italic(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	StatusKeyStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	HelpLineStyle = lipgloss.NewStyle().Foreground(p.Muted)
	SpinnerStyle = lipgloss.NewStyle().Foreground(p.Primary)
	ToastInfoStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1)
	ToastErrorStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Error).
		Padding(0, 1)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := colorHexPtr(CurrentPalette.Foreground)
	primary := colorHexPtr(CurrentPalette.Primary)
	secondary := colorHexPtr(CurrentPalette.Secondary)
	muted := colorHexPtr(CurrentPalette.Muted)
	surface := colorHexPtr(CurrentPalette.Surface)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	cfg.Table.Color = fg

	return cfg
}

func colorHexPtr(c lipgloss.Color) *string {
	s := string(c)
	if s == "" {
		return nil
	}
	return &s
}
