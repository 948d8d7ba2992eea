// Package config loads the lrvmconfig file the CLI front ends read at
// startup: VM sizing and jump-addressing-mode knobs, plus the conflict
// resolver list, expressed as TOML (spec.md §6 "Persisted parse tables" uses
// the same structured-literal-text approach; this is its counterpart for
// run-time settings). Grounded on the teacher's own use of BurntSushi/toml
// for its world-manifest format (internal/worldgen).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/mseida/lr1vm/internal/codegen"
	"github.com/mseida/lr1vm/internal/grammar"
	"github.com/mseida/lr1vm/internal/vm"
)

// Config is the on-disk shape of an lrvmconfig file.
type Config struct {
	VM struct {
		MemSize   int `toml:"mem_size"`
		FrameSize int `toml:"frame_size"`
	} `toml:"vm"`

	Codegen struct {
		AbsoluteAddressing bool `toml:"absolute_addressing"`
	} `toml:"codegen"`

	Resolvers []ResolverEntry `toml:"resolver"`
}

// ResolverEntry is one entry of the explicit conflict-resolver list (spec.md
// §4.3 step 1), as it appears in an lrvmconfig file.
type ResolverEntry struct {
	Key        string `toml:"key"`
	Lookahead  string `toml:"lookahead"`
	ForceShift bool   `toml:"force_shift"`
}

// Default returns the configuration used when no lrvmconfig file is found:
// vm.DefaultConfig sizing, IP-relative addressing, and the sample grammar's
// default dangling-else resolver.
func Default() Config {
	var c Config
	dflt := vm.DefaultConfig()
	c.VM.MemSize = dflt.MemSize
	c.VM.FrameSize = dflt.FrameSize
	c.Codegen.AbsoluteAddressing = false
	for _, r := range grammar.DefaultResolvers() {
		c.Resolvers = append(c.Resolvers, ResolverEntry{Key: r.Key, Lookahead: r.Lookahead, ForceShift: r.ForceShift})
	}
	return c
}

// Load reads and parses the lrvmconfig file at path. A missing file is not
// an error; callers get Default() back instead, matching the teacher's
// tolerant "no manifest, use the built-in world" fallback.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	c := Default()
	if _, err := toml.Decode(string(data), &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// VMConfig adapts c's VM section to vm.Config.
func (c Config) VMConfig() vm.Config {
	return vm.Config{MemSize: c.VM.MemSize, FrameSize: c.VM.FrameSize}
}

// CodegenOptions adapts c's codegen section to codegen.Options for mode m.
func (c Config) CodegenOptions(m codegen.Mode) codegen.Options {
	return codegen.Options{Mode: m, AbsoluteAddressing: c.Codegen.AbsoluteAddressing}
}

// GrammarResolvers adapts c's resolver list to grammar.ResolverSpec.
func (c Config) GrammarResolvers() []grammar.ResolverSpec {
	specs := make([]grammar.ResolverSpec, 0, len(c.Resolvers))
	for _, r := range c.Resolvers {
		specs = append(specs, grammar.ResolverSpec{Key: r.Key, Lookahead: r.Lookahead, ForceShift: r.ForceShift})
	}
	return specs
}
