package main

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/structwire/codec"
	"github.com/wippyai/structwire/schema"
)

type interactiveModel struct {
	err    error
	schema *schema.Schema
	rec    *codec.Record
	result string
	dump   string
	input  textinput.Model
	little bool
}

func newInteractiveModel(s *schema.Schema, little bool) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("%d bytes of hex", s.ByteLength())
	ti.Prompt = "hex: "
	ti.Width = 3 * s.ByteLength()
	ti.CharLimit = 8 * s.ByteLength()
	ti.Focus()

	return &interactiveModel{
		schema: s,
		rec:    codec.NewRecord(s),
		input:  ti,
		little: little,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) order() binary.ByteOrder {
	if m.little {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.little = !m.little
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refresh()
	return m, cmd
}

// refresh re-decodes the current input. The record keeps its last good
// contents while the input is incomplete.
func (m *interactiveModel) refresh() {
	m.err = nil
	m.result = ""
	m.dump = ""

	data, err := parseHex(m.input.Value())
	if err != nil {
		m.err = err
		return
	}
	if len(data) == 0 {
		return
	}
	m.dump = hexdump(data, true)

	if need := m.schema.ByteLength(); len(data) != need {
		m.err = fmt.Errorf("have %d of %d bytes", len(data), need)
		return
	}
	if err := m.rec.Decode(data, m.order()); err != nil {
		m.err = err
		return
	}
	m.result, m.err = recordYAML(m.rec)
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("structwire"))
	b.WriteString(" ")
	b.WriteString(m.schema.Name)
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(m.schema.Format().String()))
	endian := "big-endian"
	if m.little {
		endian = "little-endian"
	}
	fmt.Fprintf(&b, " (%d bytes, %s)\n\n", m.schema.ByteLength(), endian)

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.dump != "" {
		b.WriteString(m.dump)
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	} else if m.result != "" {
		b.WriteString(resultStyle.Render(m.result))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("tab toggle byte order • esc quit"))
	return b.String()
}

func runInteractive(s *schema.Schema, little bool) error {
	p := tea.NewProgram(newInteractiveModel(s, little), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
