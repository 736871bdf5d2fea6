package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/okvist/printlink/internal/linkflow"
)

// authChoiceKeyMap defines key bindings for the auth-type choice screen
type authChoiceKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k authChoiceKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k authChoiceKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Select, k.Quit},
	}
}

// authChoiceOption is one selectable auth type with its display text
type authChoiceOption struct {
	authType    linkflow.AuthType
	title       string
	description string
}

// AuthChoiceModel handles the auth-type selection screen
type AuthChoiceModel struct {
	// Options offered by the flow, in presentation order
	options []authChoiceOption
	cursor  int

	// Error message from a failed previous attempt, empty when none
	ErrorMessage string

	// Signal states
	Chosen        bool
	Choice        linkflow.AuthType
	QuitRequested bool

	keys authChoiceKeyMap
	help help.Model
}

// NewAuthChoiceModel creates the auth-type choice screen from the flow's
// form request. A non-empty form error is translated into a banner.
func NewAuthChoiceModel(form *linkflow.FormRequest) AuthChoiceModel {
	m := AuthChoiceModel{
		options: []authChoiceOption{
			{
				authType:    linkflow.AuthTypeDigest,
				title:       "Username and password",
				description: "HTTP digest credentials from the printer's settings screen",
			},
			{
				authType:    linkflow.AuthTypeAPIKey,
				title:       "API key",
				description: "The key printed on the printer's LCD menu or web interface",
			},
		},
		keys: authChoiceKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "down"),
			),
			Select: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "select"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc"),
				key.WithHelp("q/esc", "quit"),
			),
		},
		help: help.New(),
	}

	if form != nil && form.Error != linkflow.ErrorNone {
		m.ErrorMessage = ErrorTagMessage(string(form.Error))
	}

	return m
}

// Init initializes the auth choice screen
func (m AuthChoiceModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the auth choice screen
func (m AuthChoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			m.Chosen = true
			m.Choice = m.options[m.cursor].authType
		case key.Matches(msg, m.keys.Quit):
			m.QuitRequested = true
		}
	}
	return m, nil
}

// View renders the auth choice screen without the application container
func (m AuthChoiceModel) View() string {
	return m.render(0, 0)
}

// render renders the auth choice screen inside the application container
func (m AuthChoiceModel) render(width, height int) string {
	var b strings.Builder

	b.WriteString(RenderTitle("How should we authenticate?"))
	b.WriteString("\n\n")

	if m.ErrorMessage != "" {
		b.WriteString(RenderError(m.ErrorMessage))
		b.WriteString("\n\n")
	}

	for i, opt := range m.options {
		b.WriteString(RenderMenuItem(opt.title, i == m.cursor))
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render("    " + opt.description))
		b.WriteString("\n\n")
	}

	helpText := m.help.View(m.keys)
	return RenderApplicationContainer(b.String(), helpText, width, height)
}
