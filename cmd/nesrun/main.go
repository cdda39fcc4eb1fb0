// Command nesrun loads an iNES cartridge and drives the CPU step loop to
// completion (or until a breakpoint expression fires), optionally emitting
// a parity trace and CPU/heap profiles.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/n6502/nesvm/bus"
	"github.com/n6502/nesvm/cartridge"
	"github.com/n6502/nesvm/cpu"
	"github.com/n6502/nesvm/internal/breakpoint"
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

func run(ctx *cli.Context) error {
	romPath := ctx.String("rom")
	cart, err := loadROM(romPath)
	if err != nil {
		return err
	}

	log := nlog.Default()
	fp := cart.Fingerprint()
	log.Infof("nesrun: loaded %s (mapper %d, mirroring %s, fingerprint %x)", romPath, cart.MapperID, cart.Mirroring, fp[:8])

	if cart.MapperID != 0 {
		return fmt.Errorf("nesrun: mapper %d not supported, only NROM (mapper 0) is implemented", cart.MapperID)
	}

	b := bus.New(cart, mapper.NewNROM(cart), log)
	c := cpu.New(b)

	if pc := ctx.String("pc"); pc != "" {
		var addr uint16
		if _, err := fmt.Sscanf(pc, "0x%x", &addr); err != nil {
			if _, err2 := fmt.Sscanf(pc, "%x", &addr); err2 != nil {
				return fmt.Errorf("nesrun: invalid --pc value %q", pc)
			}
		}
		c.PC = addr
	}

	if ctx.Bool("trace") {
		c.SetTrace(os.Stdout)
	}

	var brk *breakpoint.Expression
	if expr := ctx.String("break"); expr != "" {
		brk, err = breakpoint.Compile(expr)
		if err != nil {
			return err
		}
	}

	if cpuprofile := ctx.String("cpuprofile"); cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			return fmt.Errorf("nesrun: could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("nesrun: could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}
	if memprofile := ctx.String("memprofile"); memprofile != "" {
		f, err := os.Create(memprofile)
		if err != nil {
			return fmt.Errorf("nesrun: could not create memory profile: %w", err)
		}
		defer func() {
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Infof("nesrun: could not write memory profile: %v", err)
			}
			f.Close()
		}()
	}

	sigctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return stepLoop(sigctx, c, b, brk, log)
}

// stepLoop drives the CPU one instruction at a time until the bus/CPU
// reports a fatal error, the breakpoint expression fires, or ctx is
// canceled (SIGINT/SIGTERM between steps — a single Step never blocks, so
// there's no need to thread the context any deeper than this).
func stepLoop(ctx context.Context, c *cpu.CPU, b *bus.Bus, brk *breakpoint.Expression, log *nlog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			log.Infof("nesrun: stopped after %d cycles (%v)", c.Cycles, ctx.Err())
			return nil
		default:
		}

		if brk != nil {
			hit, err := brk.Eval(breakpoint.Snapshot{
				PC: c.PC, A: c.A, X: c.X, Y: c.Y, P: c.P, SP: c.SP, Cycles: c.Cycles,
				Peek: func(addr uint16) byte {
					v, _ := b.ReadByte(addr)
					return v
				},
			})
			if err != nil {
				return err
			}
			if hit {
				log.Infof("nesrun: breakpoint %q hit at pc=%#04x after %d cycles", brk.String(), c.PC, c.Cycles)
				return nil
			}
		}

		if err := c.Step(); err != nil {
			return fmt.Errorf("nesrun: halted at pc=%#04x after %d cycles: %w", c.PC, c.Cycles, err)
		}
	}
}

func main() {
	app := &cli.App{
		Name:  "nesrun",
		Usage: "run a 6502 cartridge image through the CPU interpreter",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "rom", Usage: "path to an iNES cartridge image", Required: true},
			&cli.StringFlag{Name: "pc", Usage: "override the program counter at startup, e.g. 0xC000"},
			&cli.BoolFlag{Name: "trace", Usage: "emit one trace line per instruction to stdout"},
			&cli.StringFlag{Name: "break", Usage: "JavaScript expression; stop stepping once it evaluates truthy"},
			&cli.StringFlag{Name: "cpuprofile", Usage: "write a CPU profile to this path"},
			&cli.StringFlag{Name: "memprofile", Usage: "write a heap profile to this path"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
