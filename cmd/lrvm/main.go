/*
Lrvm runs a previously assembled bytecode file produced by lrvmc -o.

Usage:

	lrvm [flags] BYTECODE_FILE

The flags are:

	-c, --config FILE
		Load VM sizing settings from an lrvmconfig TOML file. Defaults are
		used when omitted.

	-S, --asm
		Print the disassembled instruction listing instead of running.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/mseida/lr1vm/internal/bytecode"
	"github.com/mseida/lr1vm/internal/config"
	"github.com/mseida/lr1vm/internal/vm"
)

const (
	ExitSuccess = iota
	ExitUsageError
	ExitLoadError
	ExitRunError
)

var (
	configFile = pflag.StringP("config", "c", "", "Load VM settings from an lrvmconfig TOML file")
	showAsm    = pflag.BoolP("asm", "S", false, "Print the disassembled instruction listing instead of running")
)

func main() {
	os.Exit(run())
}

func run() int {
	pflag.Parse()
	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: lrvm [flags] BYTECODE_FILE")
		return ExitUsageError
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return ExitUsageError
	}

	data, err := os.ReadFile(pflag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return ExitLoadError
	}

	prog, err := bytecode.Load(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return ExitLoadError
	}

	if *showAsm {
		fmt.Print(bytecode.Disassemble(prog))
		return ExitSuccess
	}

	m := vm.New(prog, cfg.VMConfig())
	if err := m.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return ExitRunError
	}
	if top, ok := m.Top(); ok {
		fmt.Println(vm.ValueString(top))
	}
	return ExitSuccess
}
