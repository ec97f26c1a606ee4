// Package logger provides the colorized console output used throughout the
// planner: tagged info/success/warn/error lines, section headers, and a
// startup banner.
package logger

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	blue    = "\033[34m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
	white   = "\033[37m"
)

var useColors = runtime.GOOS != "windows" || os.Getenv("TERM") != ""

func colorize(color, text string) string {
	if !useColors {
		return text
	}
	return color + text + reset
}

func timestamp() string {
	return colorize(dim, time.Now().Format("15:04:05"))
}

// Banner prints the startup banner.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println()
	fmt.Println(colorize(cyan+bold, "  ╔═══════════════════════════════════════╗"))
	fmt.Println(colorize(cyan+bold, "  ║") + colorize(yellow+bold, "        OREJITA PLANNER ") + colorize(dim, version) + colorize(cyan+bold, strings.Repeat(" ", max(0, 15-len(version)))+"║"))
	fmt.Println(colorize(cyan+bold, "  ║") + colorize(dim, "    Industrial production scheduler  ") + colorize(cyan+bold, "║"))
	fmt.Println(colorize(cyan+bold, "  ╚═══════════════════════════════════════╝"))
	fmt.Println()
}

// Info prints an info message.
func Info(tag, msg string) {
	fmt.Printf("%s %s %s %s\n", timestamp(), colorize(blue, "●"), colorize(cyan, fmt.Sprintf("[%s]", tag)), msg)
}

// Success prints a success message.
func Success(tag, msg string) {
	fmt.Printf("%s %s %s %s\n", timestamp(), colorize(green, "✓"), colorize(green, fmt.Sprintf("[%s]", tag)), msg)
}

// Warn prints a warning message.
func Warn(tag, msg string) {
	fmt.Printf("%s %s %s %s\n", timestamp(), colorize(yellow, "⚠"), colorize(yellow, fmt.Sprintf("[%s]", tag)), msg)
}

// Error prints an error message.
func Error(tag, msg string) {
	fmt.Printf("%s %s %s %s\n", timestamp(), colorize(red, "✗"), colorize(red, fmt.Sprintf("[%s]", tag)), msg)
}

// Loading prints a loading message without a trailing newline; pair with Done.
func Loading(tag, msg string) {
	fmt.Printf("%s %s %s %s", timestamp(), colorize(magenta, "◐"), colorize(magenta, fmt.Sprintf("[%s]", tag)), msg)
}

// Done completes a loading message started with Loading.
func Done(details string) {
	if details != "" {
		fmt.Printf(" %s\n", colorize(dim, details))
		return
	}
	fmt.Println()
}

// Section prints a section header marking the start of a plan phase.
func Section(title string) {
	fmt.Printf("\n%s %s\n", colorize(dim, "───"), colorize(white+bold, title))
}

// Stats prints a single labeled statistic under the current section.
func Stats(label string, value interface{}) {
	fmt.Printf("    %s %s %v\n", colorize(dim, "•"), colorize(dim, label+":"), colorize(white, fmt.Sprint(value)))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
