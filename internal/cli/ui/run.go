package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/accuchek/phd-reader/internal/appconfig"
	"github.com/accuchek/phd-reader/internal/applog"
	"github.com/accuchek/phd-reader/internal/catalog"
)

// Run starts the bubbletea program and blocks until the user quits.
func Run(cfg appconfig.Config, cat *catalog.Catalog, logger *applog.Logger) error {
	model := NewModel(cfg, cat, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
