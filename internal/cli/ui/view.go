package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	var body string
	switch m.state {
	case viewDiscovering:
		body = infoStyle.Render("Scanning for Accu-Chek meters...")
	case viewDeviceList:
		if len(m.devices) == 0 {
			body = errorStyle.Render("No Accu-Chek meters found. Connect a device and press esc to rescan.")
		} else {
			body = listStyle.Render(m.deviceList.View())
		}
	case viewDownloading:
		body = progressStyle.Render("Downloading glucose history... this can take a minute.")
	case viewResult:
		body = m.renderResult()
	case viewError:
		body = errorStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n" + helpStyle.Render("press esc to rescan")
	}

	header := headerStyle.Render("Accu-Chek PHD Reader")
	footer := footerStyle.Render(m.resourceLine)

	sections := []string{header, body, footer, m.helpLine()}
	if m.showCopyNotice {
		sections = append(sections, copyNoticeStyle.Render("export path copied to clipboard"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderResult() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Downloaded %d readings -> %s\n\n", len(m.samples), m.exportPath)
	fmt.Fprintln(&b, tableHeaderStyle.Render(fmt.Sprintf("%-4s %-20s %6s %8s", "ID", "Timestamp", "mg/dL", "mmol/L")))
	limit := len(m.samples)
	if limit > 15 {
		limit = 15
	}
	for _, s := range m.samples[:limit] {
		fmt.Fprintf(&b, "%-4d %-20s %6d %8.1f\n", s.ID, s.Timestamp, s.MgDL, s.MmolL)
	}
	if len(m.samples) > limit {
		fmt.Fprintf(&b, "... and %d more\n", len(m.samples)-limit)
	}
	return b.String()
}

func (m Model) helpLine() string {
	switch m.state {
	case viewDeviceList:
		return helpStyle.Render("enter: download  q: quit")
	case viewResult:
		return helpStyle.Render("c: copy export path  esc: rescan  q: quit")
	default:
		return helpStyle.Render("q: quit")
	}
}
