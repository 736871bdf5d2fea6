package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/okvist/printlink/internal/linkflow"
)

// credentialsKeyMap defines key bindings for the credential entry screen
type credentialsKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Back   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k credentialsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k credentialsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Submit, k.Back},
	}
}

// fieldLabels maps flow field names to display labels
var fieldLabels = map[string]string{
	linkflow.FieldHost:     "Host or IP address",
	linkflow.FieldUser:     "Username",
	linkflow.FieldPassword: "Password",
	linkflow.FieldAPIKey:   "API key",
}

// fieldPlaceholders maps flow field names to input placeholders
var fieldPlaceholders = map[string]string{
	linkflow.FieldHost:     "192.168.1.50 or prusa-mini.local",
	linkflow.FieldUser:     "maker",
	linkflow.FieldPassword: "",
	linkflow.FieldAPIKey:   "",
}

// CredentialsModel handles the credential entry form
type CredentialsModel struct {
	// Form fields in presentation order, parallel slices
	names  []string
	inputs []textinput.Model
	focus  int

	title string

	// Signal states
	Submitted bool
	Cancelled bool

	keys credentialsKeyMap
	help help.Model
}

// NewCredentialsModel builds the input form for the flow's credential
// step. The host input is prefilled with the discovered or flag-supplied
// host when one is known.
func NewCredentialsModel(form *linkflow.FormRequest, prefillHost string) CredentialsModel {
	m := CredentialsModel{
		title: "Enter printer credentials",
		keys: credentialsKeyMap{
			Next: key.NewBinding(
				key.WithKeys("tab", "down"),
				key.WithHelp("tab", "next field"),
			),
			Prev: key.NewBinding(
				key.WithKeys("shift+tab", "up"),
				key.WithHelp("shift+tab", "previous field"),
			),
			Submit: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "submit"),
			),
			Back: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "back"),
			),
		},
		help: help.New(),
	}

	if form.Step == linkflow.StepAPIKey {
		m.title = "Enter printer API key"
	}

	for i, field := range form.Fields {
		input := textinput.New()
		input.Placeholder = fieldPlaceholders[field.Name]
		input.CharLimit = 128
		input.Width = 40

		if field.Kind == linkflow.FieldKindSecret {
			input.EchoMode = textinput.EchoPassword
			input.EchoCharacter = '•'
		}
		if field.Name == linkflow.FieldHost && prefillHost != "" {
			input.SetValue(prefillHost)
		}
		if i == 0 {
			input.Focus()
		}

		m.names = append(m.names, field.Name)
		m.inputs = append(m.inputs, input)
	}

	return m
}

// Init initializes the credentials screen
func (m CredentialsModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the credentials screen
func (m CredentialsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.Cancelled = true
			return m, nil

		case key.Matches(msg, m.keys.Submit):
			// Enter advances through the form; submitting happens from
			// the last field.
			if m.focus == len(m.inputs)-1 {
				m.Submitted = true
				return m, nil
			}
			return m.setFocus(m.focus + 1)

		case key.Matches(msg, m.keys.Next):
			return m.setFocus((m.focus + 1) % len(m.inputs))

		case key.Matches(msg, m.keys.Prev):
			return m.setFocus((m.focus - 1 + len(m.inputs)) % len(m.inputs))
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// setFocus moves input focus to the given index
func (m CredentialsModel) setFocus(index int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = index
	return m, m.inputs[m.focus].Focus()
}

// Values returns the entered field values keyed by flow field name
func (m CredentialsModel) Values() map[string]string {
	values := make(map[string]string, len(m.inputs))
	for i, name := range m.names {
		values[name] = m.inputs[i].Value()
	}
	return values
}

// View renders the credentials screen without the application container
func (m CredentialsModel) View() string {
	return m.render(0, 0)
}

// render renders the credentials screen inside the application container
func (m CredentialsModel) render(width, height int) string {
	var b strings.Builder

	b.WriteString(RenderTitle(m.title))
	b.WriteString("\n\n")

	for i, name := range m.names {
		label := fieldLabels[name]
		if label == "" {
			label = name
		}

		b.WriteString(FieldLabelStyle.Render(label))
		b.WriteString("\n")
		if i == m.focus {
			b.WriteString(FocusedInputStyle.Render(m.inputs[i].View()))
		} else {
			b.WriteString(BlurredInputStyle.Render(m.inputs[i].View()))
		}
		b.WriteString("\n\n")
	}

	helpText := m.help.View(m.keys)
	return RenderApplicationContainer(b.String(), helpText, width, height)
}
