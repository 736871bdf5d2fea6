package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okvist/printlink/internal/discovery"
)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	printers []*discovery.Printer
	err      error
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual host entry mode
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.Confirm, m.Cancel},
	}
}

// scanningKeyMap defines key bindings for scanning mode
type scanningKeyMap struct {
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (s scanningKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{s.Manual, s.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (s scanningKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{s.Manual, s.Quit},
	}
}

// emptyScreenKeyMap defines key bindings for empty results screen
type emptyScreenKeyMap struct {
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (e emptyScreenKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{e.Rescan, e.Manual, e.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (e emptyScreenKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{e.Rescan, e.Manual, e.Quit},
	}
}

// printerItem wraps a Printer for use with bubbles/list
type printerItem struct {
	printer *discovery.Printer
}

// Implement list.Item interface
func (p printerItem) FilterValue() string {
	return p.printer.Name + " " + p.printer.IP + " " + p.printer.Hostname
}

// Title returns the printer name for list display
func (p printerItem) Title() string {
	if p.printer.Name != "" {
		return p.printer.Name
	}
	return p.printer.Host()
}

// Description returns printer details for list display
func (p printerItem) Description() string {
	return fmt.Sprintf("%s:%d • %s", p.printer.IP, p.printer.Port, p.printer.Service)
}

// printerDelegate is a custom list delegate for rendering printer cards
type printerDelegate struct {
	width int
}

func (d printerDelegate) Height() int { return 7 } // Card height including borders

func (d printerDelegate) Spacing() int { return 1 } // Spacing between cards

func (d printerDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d printerDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	printerItem, ok := item.(printerItem)
	if !ok {
		return
	}

	printer := printerItem.printer
	selected := index == m.Index()

	name := printer.Name
	if name == "" {
		name = printer.Host()
	}

	// Build content lines
	var content strings.Builder

	// Add selection indicator to printer name
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + name))
	} else {
		content.WriteString("  " + name)
	}
	content.WriteString("\n\n")

	content.WriteString(fmt.Sprintf("  Address:  %s:%d\n", printer.IP, printer.Port))
	content.WriteString(fmt.Sprintf("  Service:  %s", printer.Service))
	if model, ok := printer.Metadata["model"]; ok {
		content.WriteString(fmt.Sprintf("\n  Model:    %s", model))
	}

	// Create responsive card style
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 2).
		MarginLeft(2)

	// Calculate card width (leave room for margins and borders)
	cardWidth := d.width - 6
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}

	cardStyle = cardStyle.Width(cardWidth)

	// Highlight selected card
	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel represents the printer discovery screen state
type DiscoveryModel struct {
	// Discovery state
	Scanning    bool
	PrinterList list.Model
	Err         error

	// Manual host entry state
	ManualMode bool
	HostInput  textinput.Model

	// Signal states
	Done          bool
	QuitRequested bool
	manualHost    string

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
	ScanningKeys  scanningKeyMap
	EmptyKeys     emptyScreenKeyMap
}

// NewDiscoveryModel creates a new discovery screen model
func NewDiscoveryModel() DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	// Initialize host input
	hostInput := textinput.New()
	hostInput.Placeholder = "192.168.1.50 or prusa-mini.local"
	hostInput.CharLimit = 128
	hostInput.Width = 40

	// Initialize progress bar
	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	// Initialize printer list with custom delegate
	delegate := printerDelegate{width: MinTerminalWidth}
	printerList := list.New([]list.Item{}, delegate, 0, 0)
	printerList.Title = "Discovered Printers"
	printerList.SetShowStatusBar(false)
	printerList.SetFilteringEnabled(true)
	printerList.Styles.Title = TitleStyle

	// Initialize help
	h := help.New()

	keys := discoveryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "link"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual host"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	manualKeys := manualModeKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	scanningKeys := scanningKeyMap{
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual host"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	emptyKeys := emptyScreenKeyMap{
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual host"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	return DiscoveryModel{
		PrinterList:  printerList,
		HostInput:    hostInput,
		Spinner:      s,
		ProgressBar:  progressBar,
		Help:         h,
		Keys:         keys,
		ManualKeys:   manualKeys,
		ScanningKeys: scanningKeys,
		EmptyKeys:    emptyKeys,
	}
}

// Init initializes the discovery model
func (m DiscoveryModel) Init() tea.Cmd {
	// Start scanning immediately
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanPrinters,
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.PrinterList.SetWidth(msg.Width - 4)
		m.PrinterList.SetHeight(msg.Height - 10) // Leave room for header/footer

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.printers))
		for i, p := range msg.printers {
			items[i] = printerItem{printer: p}
		}
		m.PrinterList.SetItems(items)

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.ManualMode && !m.Scanning {
		m.PrinterList, cmd = m.PrinterList.Update(msg)
	}

	return m, cmd
}

// updateNormalMode handles keyboard input in normal printer list mode
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.QuitRequested = true
		return m, nil

	case "enter", " ":
		if selectedItem := m.PrinterList.SelectedItem(); selectedItem != nil {
			m.Done = true
			return m, nil
		}

	case "r":
		m.PrinterList.SetItems([]list.Item{})
		m.Err = nil
		return m, tea.Batch(
			func() tea.Msg { return scanStartMsg{} },
			scanPrinters,
			m.Spinner.Tick,
		)

	case "m":
		m.ManualMode = true
		m.HostInput.SetValue("")
		m.HostInput.Focus()
	}

	// Let the list handle up/down navigation
	return m, nil
}

// updateManualMode handles keyboard input in manual host entry mode
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc":
		m.ManualMode = false
		m.HostInput.SetValue("")
		m.HostInput.Blur()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.HostInput.Value())
		if value != "" {
			m.manualHost = value
			m.Done = true
			return m, nil
		}
	}

	m.HostInput, cmd = m.HostInput.Update(msg)
	return m, cmd
}

// SelectedHost returns the host chosen on this screen, either a manually
// entered address or the address of the selected printer
func (m DiscoveryModel) SelectedHost() string {
	if m.manualHost != "" {
		return m.manualHost
	}
	if selectedItem := m.PrinterList.SelectedItem(); selectedItem != nil {
		if item, ok := selectedItem.(printerItem); ok {
			return item.printer.Host()
		}
	}
	return ""
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content string
	if m.ManualMode {
		content = m.renderManualEntry()
	} else if m.Scanning {
		content = m.renderScanning(width)
	} else {
		content = m.renderResults()
	}

	// Context-sensitive help text
	var helpText string
	if m.ManualMode {
		helpText = m.Help.View(m.ManualKeys)
	} else if m.Scanning {
		helpText = m.Help.View(m.ScanningKeys)
	} else if len(m.PrinterList.Items()) > 0 {
		helpText = m.Help.View(m.Keys)
	} else {
		helpText = m.Help.View(m.EmptyKeys)
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderScanning renders a centered scanning progress display
func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	elapsedSec := int(elapsed.Seconds())

	// Progress against the fixed scan window
	scanSec := int(discovery.DefaultScanTimeout.Seconds())
	progressPercent := min(100, (elapsedSec*100)/scanSec)
	progressFloat := float64(progressPercent) / 100.0

	title := fmt.Sprintf("%s SEARCHING FOR PRINTERS", m.Spinner.View())
	subtitle := "Scanning your network for PrusaLink printers..."

	progressBar := m.ProgressBar.ViewAs(progressFloat)
	elapsedText := fmt.Sprintf("Elapsed: %ds", elapsedSec)

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(title),
		"",
		SubtitleStyle.Render(subtitle),
		"",
		progressBar,
		"",
		SubtitleStyle.Render(elapsedText),
		"",
	)

	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderResults renders the printer list or "no printers found" message
func (m DiscoveryModel) renderResults() string {
	var b strings.Builder

	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
		b.WriteString(troubleshootingHints())

	} else if len(m.PrinterList.Items()) == 0 {
		b.WriteString("  ")
		warningStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString(warningStyle.Render("⚠ No printers found on your network"))
		b.WriteString("\n\n")
		b.WriteString(troubleshootingHints())
		b.WriteString("\n")

	} else {
		b.WriteString(m.PrinterList.View())
	}

	return b.String()
}

// troubleshootingHints lists the common reasons a scan comes back empty
func troubleshootingHints() string {
	var b strings.Builder
	b.WriteString("  Troubleshooting:\n")
	b.WriteString("    • Ensure the printer is powered on and connected to your network\n")
	b.WriteString("    • Check that PrusaLink is enabled in the printer's network settings\n")
	b.WriteString("    • Verify this machine is on the same network segment\n")
	b.WriteString("    • Use 'm' to enter the printer's address manually\n")
	return b.String()
}

// renderManualEntry renders the manual host entry dialog
func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder

	b.WriteString(RenderSubtitle("Enter printer host or IP address"))
	b.WriteString("\n\n")

	b.WriteString("  Host: ")
	b.WriteString(m.HostInput.View())
	b.WriteString("\n\n")

	return b.String()
}

// min returns the minimum of two integers
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// scanPrinters is a command that performs printer discovery
func scanPrinters() tea.Msg {
	printers, err := discovery.ScanForPrinters(discovery.DefaultScanTimeout)
	return scanCompleteMsg{
		printers: printers,
		err:      err,
	}
}
