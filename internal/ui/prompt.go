package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/footprint-tools/mach/internal/ui/style"
)

// Prompter asks the user questions. When Interactive is false every
// question returns its default without reading input.
type Prompter struct {
	Interactive bool
	In          io.Reader
	Out         io.Writer
}

// Confirm asks a yes/no question.
func (p Prompter) Confirm(question string, def bool) (bool, error) {
	if !p.Interactive {
		return def, nil
	}

	final, err := tea.NewProgram(newConfirmModel(question, def), p.options()...).Run()
	if err != nil {
		return def, fmt.Errorf("prompt: %w", err)
	}
	return final.(confirmModel).answer, nil
}

// Ask asks for a line of text. An empty answer returns def.
func (p Prompter) Ask(question, def string) (string, error) {
	if !p.Interactive {
		return def, nil
	}

	final, err := tea.NewProgram(newAskModel(question, def), p.options()...).Run()
	if err != nil {
		return def, fmt.Errorf("prompt: %w", err)
	}
	return final.(askModel).result(), nil
}

func (p Prompter) options() []tea.ProgramOption {
	var opts []tea.ProgramOption
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}
	return opts
}

type confirmModel struct {
	question string
	def      bool
	answer   bool
	done     bool
}

func newConfirmModel(question string, def bool) confirmModel {
	return confirmModel{question: question, def: def, answer: def}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
		m.answer = m.def
		m.done = true
		return m, tea.Quit
	case tea.KeyRunes:
		switch strings.ToLower(string(key.Runes)) {
		case "y":
			m.answer, m.done = true, true
			return m, tea.Quit
		case "n":
			m.answer, m.done = false, true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	hint := "[y/N]"
	if m.def {
		hint = "[Y/n]"
	}
	if m.done {
		answer := "no"
		if m.answer {
			answer = "yes"
		}
		return fmt.Sprintf("%s %s %s\n", m.question, style.Muted(hint), answer)
	}
	return fmt.Sprintf("%s %s ", m.question, style.Muted(hint))
}

type askModel struct {
	question string
	def      string
	input    textinput.Model
	done     bool
}

func newAskModel(question, def string) askModel {
	input := textinput.New()
	input.Placeholder = def
	input.Prompt = ""
	input.Focus()
	return askModel{question: question, def: def, input: input}
}

func (m askModel) result() string {
	v := strings.TrimSpace(m.input.Value())
	if v == "" {
		return m.def
	}
	return v
}

func (m askModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m askModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.input.SetValue("")
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m askModel) View() string {
	if m.done {
		return fmt.Sprintf("%s %s\n", m.question, m.result())
	}
	return fmt.Sprintf("%s %s", m.question, m.input.View())
}
