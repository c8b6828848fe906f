package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/armgong/rbridge/convert"
	"github.com/armgong/rbridge/sexp"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("25")).
			Padding(0, 1)

	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("25"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// consoleMode is the screen the console is showing.
type consoleMode int

const (
	modePick consoleMode = iota
	modeArgs
	modeResult
)

type console struct {
	err      error
	engine   *sexp.Engine
	builtins []string
	input    textinput.Model
	result   string
	cursor   int
	mode     consoleMode
}

func newConsole() *console {
	e := sexp.New()
	names := e.Builtins()
	sort.Strings(names)

	ti := textinput.New()
	ti.Placeholder = "comma-separated arguments, e.g. 1, 2.5, hello"
	ti.CharLimit = 256

	return &console{
		engine:   e,
		builtins: names,
		input:    ti,
	}
}

// invokeDoneMsg carries the outcome of a builtin call back into Update.
type invokeDoneMsg struct {
	err    error
	result string
}

func (c *console) Init() tea.Cmd { return nil }

func (c *console) invoke() tea.Msg {
	fn, err := convert.Func(c.engine, c.builtins[c.cursor])
	if err != nil {
		return invokeDoneMsg{err: err}
	}
	defer fn.Close()

	out, err := fn.Call(parseArgs(c.input.Value())...)
	if err != nil {
		return invokeDoneMsg{err: err}
	}
	return invokeDoneMsg{result: fmt.Sprintf("%v", out)}
}

func (c *console) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" || (key == "q" && c.mode != modeArgs) {
			c.engine.Close()
			return c, tea.Quit
		}

		switch c.mode {
		case modePick:
			switch key {
			case "up", "k":
				if c.cursor > 0 {
					c.cursor--
				}
			case "down", "j":
				if c.cursor < len(c.builtins)-1 {
					c.cursor++
				}
			case "enter":
				c.input.SetValue("")
				c.input.Focus()
				c.mode = modeArgs
			}

		case modeArgs:
			switch key {
			case "enter":
				c.input.Blur()
				return c, c.invoke
			case "esc":
				c.input.Blur()
				c.mode = modePick
			default:
				var cmd tea.Cmd
				c.input, cmd = c.input.Update(msg)
				return c, cmd
			}

		case modeResult:
			if key == "enter" || key == "esc" {
				c.mode = modePick
				c.result = ""
				c.err = nil
			}
		}

	case invokeDoneMsg:
		c.result = msg.result
		c.err = msg.err
		c.mode = modeResult
	}

	return c, nil
}

func (c *console) View() string {
	s := headerStyle.Render("rbridge engine console") + "\n\n"

	switch c.mode {
	case modePick:
		s += "Builtins:\n"
		for i, name := range c.builtins {
			if i == c.cursor {
				s += cursorStyle.Render("> "+name) + "\n"
			} else {
				s += "  " + nameStyle.Render(name) + "\n"
			}
		}
		s += "\n" + dimStyle.Render("up/down select, enter call, q quit")

	case modeArgs:
		s += fmt.Sprintf("Arguments for %s:\n\n", nameStyle.Render(c.builtins[c.cursor]))
		s += c.input.View() + "\n\n"
		s += dimStyle.Render("enter call, esc back")

	case modeResult:
		s += fmt.Sprintf("%s(%s)\n\n", nameStyle.Render(c.builtins[c.cursor]), c.input.Value())
		if c.err != nil {
			s += failStyle.Render("Error: "+c.err.Error()) + "\n"
		} else {
			s += okStyle.Render(c.result) + "\n"
		}
		s += "\n" + dimStyle.Render("enter back, q quit")
	}

	s += "\n" + dimStyle.Render(fmt.Sprintf("protect depth %d, %d live cells",
		c.engine.ProtectDepth(), c.engine.HeapLen()))
	return s
}

func runInteractive() error {
	p := tea.NewProgram(newConsole())
	_, err := p.Run()
	return err
}
