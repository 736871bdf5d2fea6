package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/okvist/printlink/internal/linkflow"
)

// Screen represents the current active screen in the wizard
type Screen string

const (
	ScreenDiscovery   Screen = "discovery"
	ScreenAuthChoice  Screen = "auth_choice"
	ScreenCredentials Screen = "credentials"
	ScreenValidating  Screen = "validating"
	ScreenSuccess     Screen = "success"
)

// validationDoneMsg carries the outcome of the async validation call
type validationDoneMsg struct {
	result *linkflow.Result
	err    error
}

// successKeyMap defines key bindings for the success screen
type successKeyMap struct {
	Quit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k successKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k successKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit}}
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	// Current screen state
	CurrentScreen Screen

	// The setup flow driving this session
	Flow *linkflow.Flow

	// Screen models
	DiscoveryModel   DiscoveryModel
	AuthChoiceModel  AuthChoiceModel
	CredentialsModel CredentialsModel

	// Host prefilled by discovery or the --host flag
	PrefillHost string

	// Result state
	Entry *linkflow.EntryResult

	// Validation spinner
	Spinner spinner.Model

	// UI state
	Width  int
	Height int

	// Help
	Help        help.Model
	SuccessKeys successKeyMap
}

// NewAppModel creates a new wizard model. When skipDiscovery is set (or a
// prefill host is given) the wizard starts directly at the auth-type
// choice.
func NewAppModel(flow *linkflow.Flow, prefillHost string, skipDiscovery bool) AppModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	model := AppModel{
		Flow:        flow,
		PrefillHost: prefillHost,
		Spinner:     s,
		Help:        help.New(),
		SuccessKeys: successKeyMap{
			Quit: key.NewBinding(
				key.WithKeys("q", "enter"),
				key.WithHelp("q/enter", "quit"),
			),
		},
	}

	if skipDiscovery || prefillHost != "" {
		model.CurrentScreen = ScreenAuthChoice
		model.AuthChoiceModel = NewAuthChoiceModel(flow.Start())
	} else {
		model.CurrentScreen = ScreenDiscovery
		model.DiscoveryModel = NewDiscoveryModel()
	}

	return model
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	default:
		return nil
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case validationDoneMsg:
		return m.handleValidationDone(msg)

	case spinner.TickMsg:
		if m.CurrentScreen == ScreenValidating {
			var cmd tea.Cmd
			m.Spinner, cmd = m.Spinner.Update(msg)
			return m, cmd
		}
	}

	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDiscovery:
		updated, c := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		cmd = c

		if m.DiscoveryModel.QuitRequested {
			return m, tea.Quit
		}
		if m.DiscoveryModel.Done {
			m.PrefillHost = m.DiscoveryModel.SelectedHost()
			m.CurrentScreen = ScreenAuthChoice
			m.AuthChoiceModel = NewAuthChoiceModel(m.Flow.Start())
			return m, nil
		}

	case ScreenAuthChoice:
		updated, c := m.AuthChoiceModel.Update(msg)
		m.AuthChoiceModel = updated.(AuthChoiceModel)
		cmd = c

		if m.AuthChoiceModel.QuitRequested {
			return m, tea.Quit
		}
		if m.AuthChoiceModel.Chosen {
			form, err := m.Flow.ChooseAuthType(m.AuthChoiceModel.Choice)
			if err != nil {
				// Flow already past the choice; restart the screen
				m.AuthChoiceModel = NewAuthChoiceModel(m.Flow.Start())
				return m, nil
			}
			m.CurrentScreen = ScreenCredentials
			m.CredentialsModel = NewCredentialsModel(form, m.PrefillHost)
			return m, m.CredentialsModel.Init()
		}

	case ScreenCredentials:
		updated, c := m.CredentialsModel.Update(msg)
		m.CredentialsModel = updated.(CredentialsModel)
		cmd = c

		if m.CredentialsModel.Cancelled {
			m.CurrentScreen = ScreenAuthChoice
			m.AuthChoiceModel = NewAuthChoiceModel(m.Flow.Back())
			return m, nil
		}
		if m.CredentialsModel.Submitted {
			m.CurrentScreen = ScreenValidating
			return m, tea.Batch(m.Spinner.Tick, m.submitCmd(m.CredentialsModel.Values()))
		}

	case ScreenSuccess:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "q", "enter", "esc":
				return m, tea.Quit
			}
		}
	}

	return m, cmd
}

// submitCmd runs the flow's validation asynchronously
func (m AppModel) submitCmd(fields map[string]string) tea.Cmd {
	flow := m.Flow
	return func() tea.Msg {
		result, err := flow.SubmitCredentials(context.Background(), fields)
		return validationDoneMsg{result: result, err: err}
	}
}

// handleValidationDone transitions out of the validating screen
func (m AppModel) handleValidationDone(msg validationDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Step misuse is a programming error; surface it like an unknown
		// failure and restart at the choice.
		m.CurrentScreen = ScreenAuthChoice
		m.AuthChoiceModel = NewAuthChoiceModel(m.Flow.Back())
		m.AuthChoiceModel.ErrorMessage = msg.err.Error()
		return m, nil
	}

	if msg.result.Entry != nil {
		m.Entry = msg.result.Entry
		m.CurrentScreen = ScreenSuccess
		return m, nil
	}

	// Back to the auth-type choice, annotated with the error tag
	m.CurrentScreen = ScreenAuthChoice
	m.AuthChoiceModel = NewAuthChoiceModel(msg.result.Form)
	return m, nil
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenAuthChoice:
		return m.AuthChoiceModel.render(m.Width, m.Height)
	case ScreenCredentials:
		return m.CredentialsModel.render(m.Width, m.Height)
	case ScreenValidating:
		return m.renderValidatingScreen()
	case ScreenSuccess:
		return m.renderSuccessScreen()
	default:
		return "Unknown screen"
	}
}

// renderValidatingScreen renders the spinner shown during validation
func (m AppModel) renderValidatingScreen() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Checking printer..."))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  %s Contacting the printer and verifying credentials", m.Spinner.View()))
	b.WriteString("\n\n")
	b.WriteString(RenderSubtitle("  This takes at most a few seconds."))
	b.WriteString("\n")

	return RenderApplicationContainer(b.String(), "please wait...", m.Width, m.Height)
}

// renderSuccessScreen renders the final result screen
func (m AppModel) renderSuccessScreen() string {
	var b strings.Builder

	b.WriteString(RenderTitle("✓ Printer Linked Successfully!"))
	b.WriteString("\n\n")

	if m.Entry != nil {
		b.WriteString(SuccessBoxStyle.Render("Created entry:"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  Title:  %s\n", m.Entry.Title))
		b.WriteString(fmt.Sprintf("  Host:   %s\n", m.Entry.Config.Host))
		b.WriteString(fmt.Sprintf("  Auth:   %s\n", m.Entry.Config.Auth.Type))
		b.WriteString("\n")
	}

	b.WriteString("Run 'printlink-cfg entries list' to see all linked printers.\n")

	helpText := m.Help.View(m.SuccessKeys)
	return RenderApplicationContainer(b.String(), helpText, m.Width, m.Height)
}
