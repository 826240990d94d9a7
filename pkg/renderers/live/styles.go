package live

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))

	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	selectedOptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)

	optionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("247"))

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	paneStyle = lipgloss.NewStyle().PaddingRight(2)
)
