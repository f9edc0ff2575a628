// Package parser defines the per-vendor parser contract and a small
// registry binding vendor-id strings to implementations, directly
// generalizing the teacher's factory.go CapabilityMatrix/NewDriver
// dispatch to the firewall-config domain.
package parser

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fwconvert/fwconvert/ir"
)

// Vendor identifies a supported source platform.
type Vendor string

const (
	VendorASA        Vendor = "asa"
	VendorCheckPoint Vendor = "checkpoint"
	VendorFortinet   Vendor = "fortinet"
	VendorPaloAlto   Vendor = "paloalto"
)

// Input is a labeled byte blob. Most vendors consume a single blob under
// role "config"; Check Point consumes several named roles (objects,
// policy, nat, show_configuration) per spec.md §4.2.2/§6.
type Input struct {
	Role string
	Name string
	Data []byte
}

// Request bundles every input blob for one parse invocation.
type Request struct {
	Inputs []Input
}

// ByRole returns the first input with the given role, or nil.
func (r Request) ByRole(role string) *Input {
	for i := range r.Inputs {
		if r.Inputs[i].Role == role {
			return &r.Inputs[i]
		}
	}
	return nil
}

// Parser lifts vendor bytes into the IR. Implementations never fail hard
// on an unrecognized line: the ASA parser records a Warning on the
// returned FirewallConfig for each one, while the Check Point, Fortinet
// and PAN-OS parsers skip lines they do not recognize without recording a
// Warning. error is reserved for fatal structural
// preconditions (spec.md §7's "Input validation" class) — e.g. a required
// blob missing entirely.
type Parser interface {
	Parse(ctx context.Context, req Request) (*ir.FirewallConfig, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(ctx context.Context, req Request) (*ir.FirewallConfig, error)

// Parse implements Parser.
func (f ParserFunc) Parse(ctx context.Context, req Request) (*ir.FirewallConfig, error) {
	return f(ctx, req)
}

var (
	mu       sync.RWMutex
	registry = map[Vendor]Parser{}
)

// Register binds a vendor id to a Parser implementation. Called from each
// vendor subpackage's init().
func Register(v Vendor, p Parser) {
	mu.Lock()
	defer mu.Unlock()
	registry[v] = p
}

// Get looks up the Parser registered for v.
func Get(v Vendor) (Parser, error) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := registry[v]
	if !ok {
		return nil, fmt.Errorf("parser: no parser registered for vendor %q", v)
	}
	return p, nil
}

// Supported returns every registered vendor id, sorted.
func Supported() []Vendor {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Vendor, 0, len(registry))
	for v := range registry {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
