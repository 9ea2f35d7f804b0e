package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/gallerist/internal/client/credential"
	"github.com/dmitrijs2005/gallerist/internal/common"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func success(msg string) { printlnFn(successStyle.Render("✓ " + msg)) }
func failure(msg string) { printlnFn(errorStyle.Render("✗ " + msg)) }
func notice(msg string)  { printlnFn(infoStyle.Render(msg)) }

// field prints a "label: value" line.
func field(label, value string) {
	printlnFn(labelStyle.Render(fmt.Sprintf("%-12s", label+":")) + " " + value)
}

// progressBar renders p (0..100) as a fixed-width bar.
func progressBar(p int) string {
	const width = 20
	p = min(max(p, 0), 100)
	filled := p * width / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat("-", width-filled), p)
}

// describe turns an error into a line fit for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrorUnauthorized), credential.IsAuthError(err):
		return "your session has expired, please sign in again"
	case errors.Is(err, common.ErrorForbidden):
		return "you are not allowed to do that"
	case errors.Is(err, common.ErrorUnavailable):
		return "the gallery service is unavailable, try again later"
	case errors.Is(err, io.EOF):
		return "input closed"
	}
	return err.Error()
}
