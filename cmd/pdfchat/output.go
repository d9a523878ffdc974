package main

import (
	"fmt"
	"os"

	"pdfchat/internal/chat"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

// printAnswer writes an assistant reply and its citations to stdout.
func printAnswer(reply chat.Message, sources []chat.Source) {
	fmt.Println(colorize(colorBold, "assistant:"), reply.Content)
	for _, s := range sources {
		fmt.Printf("  %s %s\n", colorize(colorCyan, sourceLabel(s)), s.Snippet)
	}
}

// sourceLabel renders a citation marker: "[page 3]", or "[source]" when
// the backend reported no page number.
func sourceLabel(s chat.Source) string {
	if s.PageNumber == nil {
		return "[source]"
	}
	return fmt.Sprintf("[page %d]", *s.PageNumber)
}
