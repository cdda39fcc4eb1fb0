package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/n6502/nesvm/bus"
	"github.com/n6502/nesvm/cpu"
	"github.com/n6502/nesvm/internal/breakpoint"
)

const pageRows = 16

var (
	pcStyle  = lipgloss.NewStyle().Bold(true).Reverse(true)
	hitStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

type model struct {
	cpu *cpu.CPU
	bus *bus.Bus

	watch    *breakpoint.Expression
	watchHit bool

	prevPC uint16
	err    error
	quit   bool
}

func newModel(c *cpu.CPU, b *bus.Bus, watchExpr string) model {
	m := model{cpu: c, bus: b, prevPC: c.PC}
	if watchExpr != "" {
		expr, err := breakpoint.Compile(watchExpr)
		if err != nil {
			m.err = err
		} else {
			m.watch = expr
		}
	}
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "q", "ctrl+c":
		m.quit = true
		return m, tea.Quit

	case " ", "n":
		m.prevPC = m.cpu.PC
		if err := m.cpu.Step(); err != nil {
			m.err = err
			return m, nil
		}
		if m.watch != nil {
			hit, err := m.watch.Eval(breakpoint.Snapshot{
				PC: m.cpu.PC, A: m.cpu.A, X: m.cpu.X, Y: m.cpu.Y, P: m.cpu.P, SP: m.cpu.SP, Cycles: m.cpu.Cycles,
				Peek: m.peek,
			})
			if err != nil {
				m.err = err
				return m, nil
			}
			m.watchHit = hit
		}
	}
	return m, nil
}

func (m model) peek(addr uint16) byte {
	v, _ := m.bus.ReadByte(addr)
	return v
}

// renderPage renders one 16-byte row of memory starting at start (a
// 16-byte-aligned address within the PC's page), highlighting the current
// PC byte.
func (m model) renderPage(start uint16) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04X | ", start)
	for i := uint16(0); i < 16; i++ {
		v := m.peek(start + i)
		cell := fmt.Sprintf("%02X ", v)
		if start+i == m.cpu.PC {
			cell = pcStyle.Render(cell)
		}
		sb.WriteString(cell)
	}
	return sb.String()
}

func (m model) pageTable() string {
	base := m.cpu.PC & 0xFF00
	rows := []string{"ADDR | " + strings.TrimRight(strings.Repeat(" X ", 16), " ")}
	for r := 0; r < pageRows; r++ {
		rows = append(rows, m.renderPage(base+uint16(r*16)))
	}
	return strings.Join(rows, "\n")
}

func (m model) status() string {
	flagBits := []struct {
		name string
		set  bool
	}{
		{"N", m.cpu.P&0x80 != 0},
		{"V", m.cpu.P&0x40 != 0},
		{"-", m.cpu.P&0x20 != 0},
		{"B", m.cpu.P&0x10 != 0},
		{"D", m.cpu.P&0x08 != 0},
		{"I", m.cpu.P&0x04 != 0},
		{"Z", m.cpu.P&0x02 != 0},
		{"C", m.cpu.P&0x01 != 0},
	}
	var flags strings.Builder
	for _, f := range flagBits {
		if f.set {
			flags.WriteString(f.name + " ")
		} else {
			flags.WriteString(". ")
		}
	}

	return fmt.Sprintf(
		"PC: %04X (was %04X)\nA:  %02X\nX:  %02X\nY:  %02X\nSP: %02X\nCYC: %d\n%s",
		m.cpu.PC, m.prevPC, m.cpu.A, m.cpu.X, m.cpu.Y, m.cpu.SP, m.cpu.Cycles, flags.String(),
	)
}

func (m model) watchPane() string {
	if m.watch == nil {
		return ""
	}
	line := fmt.Sprintf("watch: %s", m.watch.String())
	if m.watchHit {
		return hitStyle.Render(line + " [HIT]")
	}
	return line
}

func (m model) View() string {
	if m.quit {
		return ""
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.pageTable(), "  ", m.status())
	parts := []string{body, "", m.watchPane(), "", spew.Sdump(struct{ PC uint16 }{m.cpu.PC})}
	if m.err != nil {
		parts = append(parts, hitStyle.Render("error: "+m.err.Error()))
	}
	parts = append(parts, "(space/n: step, q: quit)")
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
