package cliui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/pilotlight/pkg/chat"
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	HeaderStyle = lipgloss.NewStyle().Bold(true)
	NameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	KeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	ValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	WarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	userLabelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	assistantLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	systemLabelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

// RoleLabel returns the plain transcript prefix for a role.
func RoleLabel(r chat.Role) string {
	switch r {
	case chat.RoleSystem:
		return "System: "
	case chat.RoleAssistant:
		return "Assistant: "
	default:
		return "You: "
	}
}

// StyledRoleLabel returns RoleLabel rendered in the role's color.
func StyledRoleLabel(r chat.Role) string {
	switch r {
	case chat.RoleSystem:
		return systemLabelStyle.Render(RoleLabel(r))
	case chat.RoleAssistant:
		return assistantLabelStyle.Render(RoleLabel(r))
	default:
		return userLabelStyle.Render(RoleLabel(r))
	}
}
