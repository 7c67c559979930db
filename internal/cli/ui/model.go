// Package ui is the bubbletea terminal shell for phd-reader: pick a
// discovered meter, run a download, then browse or export the samples.
// It is one of two outer shells (see internal/webapi) around the same
// discover()/download() core; it holds no protocol logic of its own.
package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/accuchek/phd-reader/internal/appconfig"
	"github.com/accuchek/phd-reader/internal/applog"
	"github.com/accuchek/phd-reader/internal/catalog"
	"github.com/accuchek/phd-reader/internal/usbtransport"
	"github.com/accuchek/phd-reader/pkg/phd/sample"
)

type viewState int

const (
	viewDiscovering viewState = iota
	viewDeviceList
	viewDownloading
	viewResult
	viewError
)

// deviceItem adapts a usbtransport.DeviceDescriptor to bubbles/list.Item.
type deviceItem struct {
	desc usbtransport.DeviceDescriptor
}

func (i deviceItem) Title() string { return i.desc.Name }
func (i deviceItem) Description() string {
	return fmt.Sprintf("vid=0x%04x pid=0x%04x bus=%d addr=%d", i.desc.VendorID, i.desc.ProductID, i.desc.Bus, i.desc.Address)
}
func (i deviceItem) FilterValue() string { return i.desc.Name }

// Model is the top-level bubbletea model for the device-list -> download
// -> export flow.
type Model struct {
	state  viewState
	cfg    appconfig.Config
	cat    *catalog.Catalog
	logger *applog.Logger

	deviceList list.Model
	devices    []usbtransport.DeviceDescriptor

	samples    []sample.Sample
	exportPath string

	resourceLine   string
	err            error
	showCopyNotice bool
	width, height  int
}

// NewModel builds the initial model for a run against cat, honoring cfg
// (catalog path is already resolved into cat; cfg still carries the
// transport timeout, export format, and output path).
func NewModel(cfg appconfig.Config, cat *catalog.Catalog, logger *applog.Logger) Model {
	defaultWidth, defaultHeight := 80, 24
	l := list.New(nil, list.NewDefaultDelegate(), defaultWidth-4, defaultHeight-13)
	l.Title = "Accu-Chek devices"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	return Model{
		state:      viewDiscovering,
		cfg:        cfg,
		cat:        cat,
		logger:     logger,
		deviceList: l,
		width:      defaultWidth,
		height:     defaultHeight,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(discoverCmd(m.cat, m.logger), resourceTickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.deviceList.SetSize(msg.Width-4, msg.Height-13)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != viewDeviceList {
				return m, tea.Quit
			}
		case "esc":
			if m.state == viewResult || m.state == viewError || (m.state == viewDeviceList && len(m.devices) == 0) {
				m.state = viewDiscovering
				m.err = nil
				return m, discoverCmd(m.cat, m.logger)
			}
		case "enter":
			if m.state == viewDeviceList {
				if item, ok := m.deviceList.SelectedItem().(deviceItem); ok {
					m.state = viewDownloading
					return m, downloadCmd(item.desc, m.cfg, m.logger)
				}
			}
		case "c":
			if m.state == viewResult && m.exportPath != "" {
				return m, copyPathCmd(m.exportPath)
			}
		}

	case devicesFoundMsg:
		m.devices = msg.devices
		items := make([]list.Item, len(msg.devices))
		for i, d := range msg.devices {
			items[i] = deviceItem{desc: d}
		}
		m.deviceList.SetItems(items)
		m.state = viewDeviceList
		return m, nil

	case discoverErrMsg:
		m.err = msg.err
		m.state = viewError
		return m, nil

	case downloadDoneMsg:
		m.samples = msg.samples
		m.exportPath = msg.path
		m.state = viewResult
		return m, nil

	case downloadErrMsg:
		m.err = msg.err
		m.state = viewError
		return m, nil

	case resourceTickMsg:
		m.resourceLine = msg.text
		return m, resourceTickCmd()

	case clipboardCopiedMsg:
		m.showCopyNotice = msg.err == nil
		return m, copyNoticeExpireCmd()

	case copyNoticeExpiredMsg:
		m.showCopyNotice = false
		return m, nil
	}

	if m.state == viewDeviceList {
		var cmd tea.Cmd
		m.deviceList, cmd = m.deviceList.Update(msg)
		return m, cmd
	}
	return m, nil
}

const copyNoticeDuration = 2 * time.Second
