package ui

import (
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Theme defines UI color tokens used across widgets and text tags.
type Theme struct {
	Bg          tcell.Color
	Surface     tcell.Color
	Border      tcell.Color
	FocusBorder tcell.Color
	SelectionBg tcell.Color
	SelectionFg tcell.Color
	TextPrimary tcell.Color
	TextMuted   tcell.Color
	Accent      tcell.Color
	Success     tcell.Color
	Warning     tcell.Color
	Error       tcell.Color
	Header      tcell.Color

	// Risk levels (GIS results)
	RiskHigh   tcell.Color
	RiskMedium tcell.Color
	RiskLow    tcell.Color

	// Text tag colors (for tview dynamic color markup)
	TagTextPrimary string
	TagMuted       string
	TagAccent      string
	TagSuccess     string
	TagWarning     string
	TagError       string
	TagRiskHigh    string
	TagRiskMedium  string
	TagRiskLow     string
}

func hex(s string) tcell.Color { return tcell.GetColor(s) }

func themeDark() Theme {
	return Theme{
		Bg:          hex("#0e1116"),
		Surface:     hex("#12161e"),
		Border:      hex("#2b3240"),
		FocusBorder: hex("#4aa8ff"),
		SelectionBg: hex("#2b3240"),
		SelectionFg: hex("#cfd8e3"),
		TextPrimary: hex("#e6edf3"),
		TextMuted:   hex("#8a939f"),
		Accent:      hex("#2dd4bf"),
		Success:     hex("#22c55e"),
		Warning:     hex("#f59e0b"),
		Error:       hex("#ef4444"),
		Header:      hex("#eab308"),

		RiskHigh:   hex("#ff5f5f"),
		RiskMedium: hex("#ffd75f"),
		RiskLow:    hex("#87ffaf"),

		TagTextPrimary: "#e6edf3",
		TagMuted:       "#8a939f",
		TagAccent:      "#2dd4bf",
		TagSuccess:     "#22c55e",
		TagWarning:     "#f59e0b",
		TagError:       "#ef4444",
		TagRiskHigh:    "#ff5f5f",
		TagRiskMedium:  "#ffd75f",
		TagRiskLow:     "#87ffaf",
	}
}

func themeLight() Theme {
	return Theme{
		Bg:          hex("#f6f8fa"),
		Surface:     hex("#ffffff"),
		Border:      hex("#d0d7de"),
		FocusBorder: hex("#1f6feb"),
		SelectionBg: hex("#e2e8f0"),
		SelectionFg: hex("#111827"),
		TextPrimary: hex("#111827"),
		TextMuted:   hex("#6b7280"),
		Accent:      hex("#2563eb"),
		Success:     hex("#15803d"),
		Warning:     hex("#b45309"),
		Error:       hex("#b91c1c"),
		Header:      hex("#1f2937"),

		RiskHigh:   hex("#dc2626"),
		RiskMedium: hex("#ca8a04"),
		RiskLow:    hex("#16a34a"),

		TagTextPrimary: "#111827",
		TagMuted:       "#6b7280",
		TagAccent:      "#2563eb",
		TagSuccess:     "#15803d",
		TagWarning:     "#b45309",
		TagError:       "#b91c1c",
		TagRiskHigh:    "#dc2626",
		TagRiskMedium:  "#ca8a04",
		TagRiskLow:     "#16a34a",
	}
}

// themeFallback maps the palette onto the 16 named colors for terminals
// that cannot render hex colors.
func themeFallback() Theme {
	return Theme{
		Bg:          tcell.ColorBlack,
		Surface:     tcell.ColorBlack,
		Border:      tcell.ColorGray,
		FocusBorder: tcell.ColorBlue,
		SelectionBg: tcell.ColorGray,
		SelectionFg: tcell.ColorWhite,
		TextPrimary: tcell.ColorWhite,
		TextMuted:   tcell.ColorGray,
		Accent:      tcell.ColorTeal,
		Success:     tcell.ColorGreen,
		Warning:     tcell.ColorYellow,
		Error:       tcell.ColorRed,
		Header:      tcell.ColorYellow,

		RiskHigh:   tcell.ColorRed,
		RiskMedium: tcell.ColorYellow,
		RiskLow:    tcell.ColorGreen,

		TagTextPrimary: "white",
		TagMuted:       "gray",
		TagAccent:      "teal",
		TagSuccess:     "green",
		TagWarning:     "yellow",
		TagError:       "red",
		TagRiskHigh:    "red",
		TagRiskMedium:  "yellow",
		TagRiskLow:     "green",
	}
}

func themeByName(name string) Theme {
	switch strings.ToLower(name) {
	case "light":
		return themeLight()
	default:
		return themeDark()
	}
}

// themeFor picks the hex palette when the terminal supports it, the named
// fallback otherwise.
func themeFor(name string, trueColor bool) Theme {
	if !trueColor {
		return themeFallback()
	}
	return themeByName(name)
}

func detectTrueColor() bool {
	// Best-effort detection without initializing a screen
	ct := strings.ToLower(os.Getenv("COLORTERM"))
	if strings.Contains(ct, "truecolor") || strings.Contains(ct, "24bit") {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "truecolor") || strings.Contains(term, "24bit") || strings.Contains(term, "256color")
}

func riskTag(theme Theme, level string) string {
	switch strings.ToLower(level) {
	case "high", "severe":
		return theme.TagRiskHigh
	case "medium", "moderate":
		return theme.TagRiskMedium
	default:
		return theme.TagRiskLow
	}
}
