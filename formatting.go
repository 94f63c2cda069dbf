package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

const (
	wrapAt       = 78
	indentAmount = 2
)

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#af82e6")).Bold(true).Render
	paragraph = lipgloss.NewStyle().Width(wrapAt).Padding(0, 0, 0, indentAmount).Render
)

func formatBlock(s string) string {
	return indent.String(wordwrap.String(s, wrapAt-indentAmount), indentAmount)
}
