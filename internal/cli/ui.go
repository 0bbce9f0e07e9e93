package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stackrules/pkg/discovery"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFailed      = lipgloss.NewStyle().Foreground(colorRed)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconCached = "cached"
	iconFresh  = "fresh"
)

// Status line prefixes.
var (
	prefixSuccess = lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	prefixError   = styleFailed.Render("✗")
	prefixWarning = StyleWarning.Render("!")
	prefixInfo    = styleKey.Render("›")
)

func printSuccess(format string, args ...any) {
	fmt.Println(prefixSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(prefixError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(prefixWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(prefixInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	k := styleKey.Width(max(12, lipgloss.Width(key)+1)).Render(key)
	fmt.Println(k + " " + StyleValue.Render(value))
}

// printStats prints the batch counters on one line, e.g.
// "12 processed · 9 with rules · 1 failed · 4 cached".
func printStats(stats discovery.Stats, dropped, cached int) {
	sep := StyleDim.Render(" · ")
	parts := []string{StyleDim.Render(fmt.Sprintf("%d processed", stats.Processed))}
	if stats.Successful > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d with rules", stats.Successful)))
	}
	if stats.Failed > 0 {
		parts = append(parts, styleFailed.Render(fmt.Sprintf("%d failed", stats.Failed)))
	}
	if dropped > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d below confidence", dropped)))
	}
	if cached > 0 {
		parts = append(parts, styleCached.Render(fmt.Sprintf("%d %s", cached, iconCached)))
	} else {
		parts = append(parts, StyleDim.Render(iconFresh))
	}
	fmt.Println("  " + strings.Join(parts, sep))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
