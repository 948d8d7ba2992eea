/*
Lrvmi is an interactive read-eval-print loop for the sample language. Each
line is appended to a growing session buffer, which is recompiled and run
from scratch on every line, so assignments and function definitions from
earlier lines stay visible to later ones.

Usage:

	lrvmi [flags]

The flags are:

	-c, --config FILE
		Load VM sizing and conflict-resolver settings from an lrvmconfig TOML
		file. Defaults are used when omitted.

Once started, type a statement and press enter to run it. Type ":quit" to
exit.
*/
package main

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/pflag"

	"github.com/mseida/lr1vm/internal/codegen"
	"github.com/mseida/lr1vm/internal/compile"
	"github.com/mseida/lr1vm/internal/config"
	"github.com/mseida/lr1vm/internal/vm"
)

const (
	ExitSuccess = iota
	ExitInitError
)

var configFile = pflag.StringP("config", "c", "", "Load VM/codegen/resolver settings from an lrvmconfig TOML file")

func main() {
	os.Exit(run())
}

func run() int {
	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		pterm.Error.Printfln("%s", err)
		return ExitInitError
	}

	opts := compile.Options{
		Collection: compile.LALR1,
		Resolvers:  cfg.GrammarResolvers(),
		Codegen:    cfg.CodegenOptions(codegen.ModeBinary),
	}

	fe, err := compile.BuildFrontend(opts)
	if err != nil {
		pterm.Error.Printfln("%s", err)
		return ExitInitError
	}

	rl, err := readline.NewEx(&readline.Config{Prompt: "lrvm> "})
	if err != nil {
		pterm.Error.Printfln("create readline config: %s", err)
		return ExitInitError
	}
	defer rl.Close()

	pterm.Info.Println("lrvmi interactive session. Type :quit to exit.")

	var session strings.Builder
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				break
			}
			pterm.Error.Printfln("%s", err)
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ":quit" {
			break
		}

		attempt := session.String() + line + "\n"
		result, err := fe.Compile(attempt, opts)
		if err != nil {
			pterm.Error.Printfln("%s", err)
			continue
		}

		m := vm.New(result.Program, cfg.VMConfig())
		if err := m.Run(); err != nil {
			pterm.Error.Printfln("%s", err)
			continue
		}

		session.WriteString(line)
		session.WriteByte('\n')
		if top, ok := m.Top(); ok {
			pterm.Success.Println(vm.ValueString(top))
		}
	}
	return ExitSuccess
}
