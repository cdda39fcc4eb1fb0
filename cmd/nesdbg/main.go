// Command nesdbg is an interactive terminal inspector: load a cartridge,
// single-step the CPU, and watch registers, flags, and a page of memory
// change one instruction at a time.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/n6502/nesvm/bus"
	"github.com/n6502/nesvm/cartridge"
	"github.com/n6502/nesvm/cpu"
	"github.com/n6502/nesvm/internal/nlog"
	"github.com/n6502/nesvm/mapper"
)

func loadROM(path string) (*cartridge.Cartridge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open rom: %w", err)
	}
	defer f.Close()
	return cartridge.Parse(f)
}

func main() {
	romPath := flag.String("rom", "", "path to an iNES cartridge image")
	watch := flag.String("watch", "", "JavaScript expression highlighted in the watch pane once truthy")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "nesdbg: -rom is required")
		os.Exit(2)
	}

	cart, err := loadROM(*romPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cart.MapperID != 0 {
		fmt.Fprintf(os.Stderr, "nesdbg: mapper %d not supported, only NROM (mapper 0) is implemented\n", cart.MapperID)
		os.Exit(2)
	}

	b := bus.New(cart, mapper.NewNROM(cart), nlog.Default())
	c := cpu.New(b)

	m := newModel(c, b, *watch)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
