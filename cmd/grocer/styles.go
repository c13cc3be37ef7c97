package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	successMark = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓")
	failMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("✗")
	errorLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Render("Error:")

	boldStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// stdoutIsTerminal gates terminal-only niceties such as rendered markdown.
func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
