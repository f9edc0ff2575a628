// Package fortinet generates FortiGate CLI configuration text from the IR.
package fortinet

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwconvert/fwconvert/generator"
	"github.com/fwconvert/fwconvert/internal/textutil"
	"github.com/fwconvert/fwconvert/ir"
	"github.com/fwconvert/fwconvert/parser"
)

func init() {
	generator.Register(parser.VendorFortinet, generator.GeneratorFunc(Generate))
}

// Generate implements generator.Generator for FortiGate output.
func Generate(ctx context.Context, cfg *ir.FirewallConfig, opts generator.Options) ([]byte, []ir.Warning, error) {
	var b strings.Builder
	var warnings []ir.Warning

	if opts.VDOM != "" {
		fmt.Fprintf(&b, "config vdom\nedit %s\n", opts.VDOM)
	}

	writeInterfaces(&b, cfg)
	writeAddresses(&b, cfg)
	writeAddressGroups(&b, cfg)
	writeServices(&b, cfg, &warnings)
	writeServiceGroups(&b, cfg)
	writeVIPs(&b, cfg)
	writeStaticRoutes(&b, cfg)
	writePolicies(&b, cfg, &warnings)

	if opts.VDOM != "" {
		b.WriteString("end\n")
	}

	return []byte(b.String()), warnings, ctx.Err()
}

func writeInterfaces(b *strings.Builder, cfg *ir.FirewallConfig) {
	b.WriteString("config system interface\n")
	for _, name := range cfg.SortedInterfaceNames() {
		iface := cfg.Interfaces[name]
		fmt.Fprintf(b, "    edit \"%s\"\n", iface.Name)
		if iface.IPAddress != "" {
			fmt.Fprintf(b, "        set ip %s %s\n", iface.IPAddress, maskFor(iface.MaskLength))
		}
		if iface.Description != "" {
			fmt.Fprintf(b, "        set description \"%s\"\n", iface.Description)
		}
		if iface.VLANID != 0 {
			fmt.Fprintf(b, "        set vlanid %d\n", iface.VLANID)
		}
		for _, m := range iface.AggregateMembers {
			fmt.Fprintf(b, "        set member \"%s\"\n", m)
		}
		b.WriteString("    next\n")
	}
	b.WriteString("end\n")
}

func maskFor(prefixLen int) string {
	return textutil.CIDRToMask(prefixLen)
}

func writeAddresses(b *strings.Builder, cfg *ir.FirewallConfig) {
	b.WriteString("config firewall address\n")
	for _, name := range cfg.SortedAddressNames() {
		addr := cfg.Addresses[name]
		fmt.Fprintf(b, "    edit \"%s\"\n", addr.Name)
		switch addr.Type {
		case ir.AddressHost:
			fmt.Fprintf(b, "        set subnet %s 255.255.255.255\n", addr.Value1)
		case ir.AddressNetwork:
			fmt.Fprintf(b, "        set subnet %s %s\n", addr.Value1, cidrToMaskString(addr.Value2))
		case ir.AddressRange:
			fmt.Fprintf(b, "        set type iprange\n        set start-ip %s\n        set end-ip %s\n", addr.Value1, addr.Value2)
		case ir.AddressFQDN:
			fmt.Fprintf(b, "        set type fqdn\n        set fqdn \"%s\"\n", addr.Value1)
		}
		b.WriteString("    next\n")
	}
	b.WriteString("end\n")
}

func writeAddressGroups(b *strings.Builder, cfg *ir.FirewallConfig) {
	if len(cfg.AddressGroups) == 0 {
		return
	}
	b.WriteString("config firewall addrgrp\n")
	for _, name := range cfg.SortedAddressGroupNames() {
		grp := cfg.AddressGroups[name]
		fmt.Fprintf(b, "    edit \"%s\"\n        set member %s\n    next\n", grp.Name, quotedList(grp.Members.Sorted()))
	}
	b.WriteString("end\n")
}

// writeServices canonicalizes each IR service to FortiGate's
// tcp-portrange/udp-portrange vocabulary; a service whose protocol this
// target has no direct equivalent for (ProtoOther) is emitted as an
// ALL-protocol placeholder with a warning.
func writeServices(b *strings.Builder, cfg *ir.FirewallConfig, warnings *[]ir.Warning) {
	b.WriteString("config firewall service custom\n")
	for _, name := range cfg.SortedServiceNames() {
		svc := cfg.Services[name]
		fmt.Fprintf(b, "    edit \"%s\"\n", svc.Name)
		switch svc.Protocol {
		case ir.ProtoTCP:
			fmt.Fprintf(b, "        set tcp-portrange %s\n", portOnly(svc.Port))
		case ir.ProtoUDP:
			fmt.Fprintf(b, "        set udp-portrange %s\n", portOnly(svc.Port))
		case ir.ProtoICMP:
			b.WriteString("        set protocol ICMP\n")
		default:
			b.WriteString("        set protocol ALL\n")
			*warnings = append(*warnings, ir.Warning{
				Category: "Generator", Message: fmt.Sprintf("service %q has no direct FortiGate protocol equivalent; emitted as ALL", svc.Name),
				Severity: ir.SeverityInfo,
			})
		}
		b.WriteString("    next\n")
	}
	b.WriteString("end\n")
}

func portOnly(portSpec string) string {
	fields := strings.Fields(portSpec)
	if len(fields) == 0 {
		return "0"
	}
	return fields[len(fields)-1]
}

func writeServiceGroups(b *strings.Builder, cfg *ir.FirewallConfig) {
	if len(cfg.ServiceGroups) == 0 {
		return
	}
	b.WriteString("config firewall service group\n")
	for _, name := range cfg.SortedServiceGroupNames() {
		grp := cfg.ServiceGroups[name]
		fmt.Fprintf(b, "    edit \"%s\"\n        set member %s\n    next\n", grp.Name, quotedList(grp.Members.Sorted()))
	}
	b.WriteString("end\n")
}

// writeVIPs synthesizes a VIP entry for every NAT rule whose name carries
// the VIP_ prefix this package's parser counterpart produces, and for any
// other destination-NAT rule a cross-vendor migration introduces.
func writeVIPs(b *strings.Builder, cfg *ir.FirewallConfig) {
	var vips []*ir.NatRule
	for _, n := range cfg.NatRules {
		if n.TranslatedDestination != "" {
			vips = append(vips, n)
		}
	}
	if len(vips) == 0 {
		return
	}
	b.WriteString("config firewall vip\n")
	for _, n := range vips {
		extIP := resolveAddressValue(cfg, firstOr(n.OriginalDestination.Sorted(), ""))
		mappedIP := resolveAddressValue(cfg, n.TranslatedDestination)
		fmt.Fprintf(b, "    edit \"%s\"\n        set extip %s\n        set mappedip \"%s\"\n    next\n", n.Name, extIP, mappedIP)
	}
	b.WriteString("end\n")
}

func resolveAddressValue(cfg *ir.FirewallConfig, name string) string {
	if addr, ok := cfg.Addresses[name]; ok {
		return addr.Value1
	}
	return name
}

func writeStaticRoutes(b *strings.Builder, cfg *ir.FirewallConfig) {
	var routes []*ir.StaticRoute
	for _, rt := range cfg.StaticRoutes {
		if rt.RouteType == ir.RouteStatic {
			routes = append(routes, rt)
		}
	}
	if len(routes) == 0 {
		return
	}
	b.WriteString("config router static\n")
	for i, rt := range routes {
		ip, mask := splitCIDR(rt.Destination)
		fmt.Fprintf(b, "    edit %d\n        set dst %s %s\n        set gateway %s\n", i+1, ip, mask, rt.NextHop)
		if rt.Interface != "" {
			fmt.Fprintf(b, "        set device \"%s\"\n", rt.Interface)
		}
		b.WriteString("    next\n")
	}
	b.WriteString("end\n")
}

// writePolicies emits one policy per IR Rule, folding any NAT rule that
// shares the rule's source/interface scope into an embedded `set nat
// enable` + ippool, mirroring FortiGate's single-policy NAT model rather
// than ASA's separate nat statements.
func writePolicies(b *strings.Builder, cfg *ir.FirewallConfig, warnings *[]ir.Warning) {
	ir.SortRulesBySequence(cfg.Rules)
	b.WriteString("config firewall policy\n")
	for i, r := range cfg.Rules {
		if !r.Enabled {
			continue
		}
		action := "deny"
		if r.Action == ir.ActionAllow {
			action = "accept"
		}
		fmt.Fprintf(b, "    edit %d\n", i+1)
		fmt.Fprintf(b, "        set srcintf %s\n", quotedList(nonEmptyOrAny(r.SourceInterface)))
		fmt.Fprintf(b, "        set dstintf %s\n", quotedList(nonEmptyOrAny(r.DestinationInterface)))
		fmt.Fprintf(b, "        set srcaddr %s\n", quotedList(nonEmptyOrAny(r.Source)))
		fmt.Fprintf(b, "        set dstaddr %s\n", quotedList(nonEmptyOrAny(r.Destination)))
		fmt.Fprintf(b, "        set action %s\n", action)
		fmt.Fprintf(b, "        set service %s\n", quotedList(nonEmptyOrAny(r.Service)))
		if nat := natForRule(cfg, r); nat != nil {
			b.WriteString("        set nat enable\n")
			if nat.TranslatedSource != "" && nat.TranslatedSource != "dynamic-ip-and-port" {
				fmt.Fprintf(b, "        set ippool enable\n        set poolname \"%s\"\n", nat.TranslatedSource)
			}
		}
		if r.Remark != "" {
			fmt.Fprintf(b, "        set comments \"%s\"\n", r.Remark)
		}
		if !r.Log {
			b.WriteString("        set logtraffic disable\n")
		}
		b.WriteString("    next\n")
	}
	b.WriteString("end\n")
}

// natForRule finds the first NAT rule whose source-interface scope
// matches r, used to decide whether a policy needs `set nat enable`.
func natForRule(cfg *ir.FirewallConfig, r *ir.Rule) *ir.NatRule {
	for _, n := range cfg.NatRules {
		if setsOverlap(n.SourceInterface, r.SourceInterface) && setsOverlap(n.OriginalSource, r.Source) {
			return n
		}
	}
	return nil
}

func setsOverlap(a, b ir.StringSet) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for k := range a {
		if b.Has(k) {
			return true
		}
	}
	return false
}

func nonEmptyOrAny(s ir.StringSet) []string {
	if len(s) == 0 {
		return []string{"all"}
	}
	return s.Sorted()
}

func quotedList(items []string) string {
	if len(items) == 0 {
		return "\"all\""
	}
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "\"" + it + "\""
	}
	return strings.Join(quoted, " ")
}

func firstOr(items []string, fallback string) string {
	if len(items) > 0 {
		return items[0]
	}
	return fallback
}

func splitCIDR(cidr string) (ip, mask string) {
	parts := strings.SplitN(cidr, "/", 2)
	if len(parts) != 2 {
		return cidr, "255.255.255.255"
	}
	return parts[0], cidrToMaskString(parts[1])
}

func cidrToMaskString(prefix string) string {
	n := 0
	for _, c := range prefix {
		if c < '0' || c > '9' {
			return "255.255.255.255"
		}
		n = n*10 + int(c-'0')
	}
	return textutil.CIDRToMask(n)
}
