package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	psutil "github.com/shirou/gopsutil/v3/cpu"
	psmem "github.com/shirou/gopsutil/v3/mem"

	"github.com/accuchek/phd-reader/internal/appconfig"
	"github.com/accuchek/phd-reader/internal/applog"
	"github.com/accuchek/phd-reader/internal/catalog"
	"github.com/accuchek/phd-reader/internal/usbtransport"
	"github.com/accuchek/phd-reader/pkg/phd/sample"
	"github.com/accuchek/phd-reader/pkg/phd/session"
)

type devicesFoundMsg struct{ devices []usbtransport.DeviceDescriptor }
type discoverErrMsg struct{ err error }
type downloadDoneMsg struct {
	samples []sample.Sample
	path    string
}
type downloadErrMsg struct{ err error }
type resourceTickMsg struct{ text string }
type clipboardCopiedMsg struct{ err error }
type copyNoticeExpiredMsg struct{}

func discoverCmd(cat *catalog.Catalog, logger *applog.Logger) tea.Cmd {
	return func() tea.Msg {
		devices, err := usbtransport.Discover(cat, logger)
		if err != nil {
			return discoverErrMsg{err: err}
		}
		return devicesFoundMsg{devices: devices}
	}
}

func downloadCmd(desc usbtransport.DeviceDescriptor, cfg appconfig.Config, logger *applog.Logger) tea.Cmd {
	return func() tea.Msg {
		adapter, err := usbtransport.Open(desc, cfg.Timeout)
		if err != nil {
			return downloadErrMsg{err: err}
		}

		samples, err := session.Download(adapter, logger)
		if err != nil {
			return downloadErrMsg{err: err}
		}

		path, err := writeExport(samples, cfg)
		if err != nil {
			return downloadErrMsg{err: err}
		}
		return downloadDoneMsg{samples: samples, path: path}
	}
}

func writeExport(samples []sample.Sample, cfg appconfig.Config) (string, error) {
	path := cfg.OutPath
	if path == "" {
		path = fmt.Sprintf("phd-export.%s", cfg.Format)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("ui: create export file: %w", err)
	}
	defer f.Close()

	if cfg.Format == "csv" {
		err = sample.WriteCSV(f, samples)
	} else {
		err = sample.WriteJSON(f, samples)
	}
	if err != nil {
		return "", fmt.Errorf("ui: write export: %w", err)
	}
	return path, nil
}

const resourceTickInterval = time.Second

func resourceTickCmd() tea.Cmd {
	return tea.Tick(resourceTickInterval, func(time.Time) tea.Msg {
		return resourceTickMsg{text: readResourceLine()}
	})
}

func readResourceLine() string {
	cpuPct, err := psutil.Percent(0, false)
	if err != nil || len(cpuPct) == 0 {
		return "cpu: n/a"
	}
	vmem, err := psmem.VirtualMemory()
	if err != nil {
		return fmt.Sprintf("cpu: %.0f%%  mem: n/a", cpuPct[0])
	}
	return fmt.Sprintf("cpu: %.0f%%  mem: %.0f%%", cpuPct[0], vmem.UsedPercent)
}

func copyPathCmd(path string) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(path)
		return clipboardCopiedMsg{err: err}
	}
}

func copyNoticeExpireCmd() tea.Cmd {
	return tea.Tick(copyNoticeDuration, func(time.Time) tea.Msg {
		return copyNoticeExpiredMsg{}
	})
}
