package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/structwire/codec"
	"github.com/wippyai/structwire/schema"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const dumpWidth = 16

// styled reports whether w is a terminal that should get colors.
func styled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func render(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}

// chunks splits data into consecutive slices of at most n bytes.
func chunks(data []byte, n int) [][]byte {
	var out [][]byte
	for len(data) > n {
		out = append(out, data[:n:n])
		data = data[n:]
	}
	if len(data) > 0 {
		out = append(out, data)
	}
	return out
}

// hexdump renders data as offset-prefixed rows of dumpWidth bytes.
func hexdump(data []byte, color bool) string {
	var b strings.Builder
	for i, row := range chunks(data, dumpWidth) {
		b.WriteString(render(offsetStyle, fmt.Sprintf("%04x", i*dumpWidth), color))
		b.WriteString("  ")
		for j, c := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%02x", c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// recordYAML renders rec as YAML with fields in declaration order.
func recordYAML(rec *codec.Record) (string, error) {
	node, err := recordNode(rec)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("render yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render yaml: %w", err)
	}
	return buf.String(), nil
}

func recordNode(rec *codec.Record) (*yaml.Node, error) {
	s := rec.Schema()
	node := &yaml.Node{Kind: yaml.MappingNode}

	var names []string
	if s.Bits != nil {
		for _, e := range s.Bits.Entries {
			names = append(names, e.Name)
		}
	} else {
		for _, f := range s.Fields {
			if f.Kind != schema.KindOpaque {
				names = append(names, f.Name)
			}
		}
	}

	for _, name := range names {
		v, err := rec.Get(name)
		if err != nil {
			return nil, err
		}
		val, err := valueNode(v)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, val)
	}
	return node, nil
}

func valueNode(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case *codec.Record:
		return recordNode(x)
	case []*codec.Record:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, rec := range x {
			n, err := recordNode(rec)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, e := range x {
			n, err := valueNode(e)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case []byte:
		// as a list of integers so encode reads it back
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, c := range x {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(int(c))})
		}
		return seq, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(x); err != nil {
			return nil, fmt.Errorf("render value: %w", err)
		}
		if n.Kind == yaml.SequenceNode {
			n.Style = yaml.FlowStyle
		}
		return n, nil
	}
}
