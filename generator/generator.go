// Package generator defines the per-vendor config-emission contract and a
// registry binding vendor ids to implementations, mirroring the parser
// package's registration pattern (itself grounded on the teacher's
// factory.go dispatch).
package generator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fwconvert/fwconvert/ir"
	"github.com/fwconvert/fwconvert/parser"
)

// Options carries generation-time knobs a vendor generator may honor.
type Options struct {
	// Hostname is emitted into the target config header/banner when the
	// target vendor supports one.
	Hostname string
	// VDOM names the FortiGate virtual domain to emit into, when the
	// target is Fortinet and the config should be scoped to a non-root
	// VDOM.
	VDOM string
	// Standalone forces PAN-OS output without a Panorama device-group
	// prefix even if DeviceGroup/Template are set.
	Standalone bool
	// DeviceGroup names the Panorama device-group PAN-OS objects,
	// profiles, and pre-rulebase rules are scoped under. Setting this (or
	// Template) without Standalone switches PAN-OS output into Panorama
	// mode.
	DeviceGroup string
	// Template names the Panorama template PAN-OS network config
	// (interfaces, zones, virtual-router routes) is scoped under.
	Template string
}

// Generator lowers the IR into one vendor's native configuration text.
type Generator interface {
	Generate(ctx context.Context, cfg *ir.FirewallConfig, opts Options) ([]byte, []ir.Warning, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, cfg *ir.FirewallConfig, opts Options) ([]byte, []ir.Warning, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, cfg *ir.FirewallConfig, opts Options) ([]byte, []ir.Warning, error) {
	return f(ctx, cfg, opts)
}

var (
	mu       sync.RWMutex
	registry = map[parser.Vendor]Generator{}
)

// Register binds a vendor id to a Generator implementation. Called from
// each vendor subpackage's init().
func Register(v parser.Vendor, g Generator) {
	mu.Lock()
	defer mu.Unlock()
	registry[v] = g
}

// Get looks up the Generator registered for v.
func Get(v parser.Vendor) (Generator, error) {
	mu.RLock()
	defer mu.RUnlock()
	g, ok := registry[v]
	if !ok {
		return nil, fmt.Errorf("generator: no generator registered for vendor %q", v)
	}
	return g, nil
}

// Supported returns every registered vendor id, sorted.
func Supported() []parser.Vendor {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]parser.Vendor, 0, len(registry))
	for v := range registry {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
