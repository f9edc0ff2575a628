// Package mapper applies an interface/zone renaming layer between parsing
// and generation, so a config can move between vendors whose interface
// naming conventions differ (e.g. ASA's "inside"/"outside" nameifs to
// FortiGate's "port1"/"port2"). Grounded on spec.md's Mapper module.
package mapper

import (
	"fmt"

	"github.com/fwconvert/fwconvert/ir"
)

// Mapping renames interfaces and/or zones. Either map may be nil or
// partial; unmapped names pass through unchanged.
type Mapping struct {
	Interfaces map[string]string
	Zones      map[string]string
}

func (m Mapping) resolveInterface(name string) string {
	if m.Interfaces == nil {
		return name
	}
	if renamed, ok := m.Interfaces[name]; ok {
		return renamed
	}
	return name
}

func (m Mapping) resolveZone(name string) string {
	if m.Zones == nil {
		return name
	}
	if renamed, ok := m.Zones[name]; ok {
		return renamed
	}
	return name
}

// Apply rewrites every interface name and zone reference in cfg in place
// according to m. It returns a warning for each rule whose source or
// destination interface set, after renaming, names an interface other than
// "any" that cfg does not define (a dangling reference that will surface
// again at generation time). NAT rules and static routes are renamed but
// not checked.
func Apply(cfg *ir.FirewallConfig, m Mapping) []ir.Warning {
	var warnings []ir.Warning

	renamedInterfaces := make(map[string]*ir.Interface, len(cfg.Interfaces))
	for name, iface := range cfg.Interfaces {
		newName := m.resolveInterface(name)
		iface.Name = newName
		iface.Zone = m.resolveZone(iface.Zone)
		for i, member := range iface.AggregateMembers {
			iface.AggregateMembers[i] = m.resolveInterface(member)
		}
		renamedInterfaces[newName] = iface
	}
	cfg.Interfaces = renamedInterfaces

	for _, r := range cfg.Rules {
		r.SourceInterface = renameSet(r.SourceInterface, m.resolveInterface)
		r.DestinationInterface = renameSet(r.DestinationInterface, m.resolveInterface)
		if !referencesKnown(r.SourceInterface, cfg.Interfaces) {
			warnings = append(warnings, danglingInterfaceWarning(r.Name, r.SourceInterface))
		}
		if !referencesKnown(r.DestinationInterface, cfg.Interfaces) {
			warnings = append(warnings, danglingInterfaceWarning(r.Name, r.DestinationInterface))
		}
	}
	for _, n := range cfg.NatRules {
		n.SourceInterface = renameSet(n.SourceInterface, m.resolveInterface)
		n.DestinationInterface = renameSet(n.DestinationInterface, m.resolveInterface)
	}
	for _, rt := range cfg.StaticRoutes {
		rt.Interface = m.resolveInterface(rt.Interface)
	}

	return warnings
}

func renameSet(s ir.StringSet, resolve func(string) string) ir.StringSet {
	out := make(ir.StringSet, len(s))
	for name := range s {
		out.Add(resolve(name))
	}
	return out
}

func referencesKnown(s ir.StringSet, known map[string]*ir.Interface) bool {
	for name := range s {
		if name == "any" {
			continue
		}
		if _, ok := known[name]; !ok {
			return false
		}
	}
	return true
}

func danglingInterfaceWarning(ruleName string, s ir.StringSet) ir.Warning {
	return ir.Warning{
		Category: "Mapper",
		Message:  fmt.Sprintf("rule %q references an interface with no mapping and no matching definition", ruleName),
		RuleID:   ruleName,
		Severity: ir.SeverityWarning,
		Details:  s.Sorted(),
	}
}
