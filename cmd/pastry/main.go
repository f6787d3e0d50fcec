package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/arthur-debert/pastry/pkg/errors"
	"github.com/arthur-debert/pastry/pkg/render"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(formatError(err)))
		os.Exit(1)
	}
}

// formatError gives undefined template variables their own message
// shape so users can spot the offending name at a glance.
func formatError(err error) string {
	if errors.IsErrorCode(err, errors.ErrUndefinedVariable) {
		if name := render.UndefinedName(err); name != "" {
			return fmt.Sprintf("Error: %s is undefined", name)
		}
	}
	return fmt.Sprintf("Error: %v", err)
}
