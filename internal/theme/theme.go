package theme

import (
	"github.com/charmbracelet/lipgloss"
)

const StorageKey = "theme"

type Name string

const (
	Light Name = "light"
	Dark  Name = "dark"
)

// Parse maps anything that is not "dark" to Light.
func Parse(v string) Name {
	if Name(v) == Dark {
		return Dark
	}
	return Light
}

func (n Name) Toggle() Name {
	if n == Dark {
		return Light
	}
	return Dark
}

type KV interface {
	Load(key string) (string, bool, error)
	Save(key, value string) error
}

// Load reads the stored preference; an absent key is Light.
func Load(kv KV) (Name, error) {
	v, _, err := kv.Load(StorageKey)
	if err != nil {
		return Light, err
	}
	return Parse(v), nil
}

func Save(kv KV, n Name) error {
	return kv.Save(StorageKey, string(n))
}

// Theme bundles every style the renderer and dialog pull from.
type Theme struct {
	Name Name

	Title    lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Success  lipgloss.Style
	Pending  lipgloss.Style
	Error    lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Help     lipgloss.Style
	Dialog   lipgloss.Style
	Panel    lipgloss.Style
	Tags     map[string]lipgloss.Style

	BoxChecked, BoxUnchecked string
}

func For(n Name) Theme {
	if n == Dark {
		return dark()
	}
	return light()
}

func (t Theme) Tag(category string) lipgloss.Style {
	if s, ok := t.Tags[category]; ok {
		return s
	}
	return t.Muted
}

func light() Theme {
	border := lipgloss.Color("8")
	return Theme{
		Name:     Light,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("166")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Dialog:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("25")).Padding(0, 1),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		Tags: map[string]lipgloss.Style{
			"personal": tag("231", "31"),
			"work":     tag("231", "25"),
			"shopping": tag("231", "130"),
			"errand":   tag("231", "90"),
			"other":    tag("231", "242"),
		},
		BoxChecked:   "☑",
		BoxUnchecked: "☐",
	}
}

func dark() Theme {
	t := light()
	t.Name = Dark
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
	t.Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	t.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	t.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	t.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	t.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	t.Dialog = t.Dialog.BorderForeground(lipgloss.Color("111")).Background(lipgloss.Color("235"))
	t.Panel = t.Panel.BorderForeground(lipgloss.Color("240")).Background(lipgloss.Color("234"))
	t.Tags = map[string]lipgloss.Style{
		"personal": tag("16", "80"),
		"work":     tag("16", "111"),
		"shopping": tag("16", "221"),
		"errand":   tag("16", "176"),
		"other":    tag("16", "250"),
	}
	return t
}

func tag(fg, bg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg)).Padding(0, 1)
}
