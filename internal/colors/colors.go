// Package colors provides terminal color support for SimpleGit output.
//
// Colors are on when stdout is a terminal, unless NO_COLOR is set or the
// color.ui setting turns them off. FORCE_COLOR overrides detection.
package colors

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"
)

// ANSI color codes
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorGray = "\033[90m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightBlue   = "\033[94m"
	BrightCyan   = "\033[96m"
)

// colorEnabled determines if color output should be used
var colorEnabled = shouldUseColor()

// shouldUseColor determines if the terminal supports colors
func shouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	t := strings.ToLower(os.Getenv("TERM"))
	if runtime.GOOS == "windows" {
		if os.Getenv("WT_SESSION") == "" && os.Getenv("VSCODE_PID") == "" &&
			!strings.Contains(t, "color") && !strings.Contains(t, "xterm") {
			return false
		}
	} else if t == "dumb" || t == "" {
		return false
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}

// SetColorEnabled allows manual control of color output
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// IsColorEnabled returns whether colors are currently enabled
func IsColorEnabled() bool {
	return colorEnabled
}

func colorize(text, color string) string {
	if !colorEnabled {
		return text
	}
	return color + text + ColorReset
}

func Red(text string) string    { return colorize(text, BrightRed) }
func Green(text string) string  { return colorize(text, BrightGreen) }
func Blue(text string) string   { return colorize(text, BrightBlue) }
func Yellow(text string) string { return colorize(text, BrightYellow) }
func Cyan(text string) string   { return colorize(text, BrightCyan) }
func Gray(text string) string   { return colorize(text, ColorGray) }
func Bold(text string) string   { return colorize(text, ColorBold) }
func Dim(text string) string    { return colorize(text, ColorDim) }

// ColorizeChange formats one status line with a one-letter prefix.
func ColorizeChange(kind, path string) string {
	switch strings.ToLower(kind) {
	case "added":
		return fmt.Sprintf("  %s  %s", Green("A"), Green(path))
	case "modified":
		return fmt.Sprintf("  %s  %s", Blue("M"), Blue(path))
	case "deleted":
		return fmt.Sprintf("  %s  %s", Red("D"), Red(path))
	default:
		return fmt.Sprintf("     %s", path)
	}
}

// DiffLine colors one unified-diff line by its leading marker.
func DiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return Bold(line)
	case strings.HasPrefix(line, "@@"):
		return Cyan(line)
	case strings.HasPrefix(line, "+"):
		return Green(line)
	case strings.HasPrefix(line, "-"):
		return Red(line)
	case strings.HasPrefix(line, "File "):
		return Yellow(line)
	default:
		return line
	}
}

// CommitID highlights a commit id.
func CommitID(id string) string { return Yellow(id) }

// Section headers with colors
func SectionHeader(text string) string { return Bold(text) }

func ErrorText(text string) string   { return Red(text) }
func SuccessText(text string) string { return Green(text) }
func InfoText(text string) string    { return Cyan(text) }
func WarningText(text string) string { return Yellow(text) }
