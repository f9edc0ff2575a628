// Package asa generates Cisco ASA configuration text from the IR.
package asa

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fwconvert/fwconvert/generator"
	"github.com/fwconvert/fwconvert/internal/textutil"
	"github.com/fwconvert/fwconvert/ir"
	"github.com/fwconvert/fwconvert/parser"
)

func init() {
	generator.Register(parser.VendorASA, generator.GeneratorFunc(Generate))
}

// Generate implements generator.Generator for Cisco ASA output.
func Generate(ctx context.Context, cfg *ir.FirewallConfig, opts generator.Options) ([]byte, []ir.Warning, error) {
	var b strings.Builder
	var warnings []ir.Warning

	if opts.Hostname != "" {
		fmt.Fprintf(&b, "hostname %s\n!\n", opts.Hostname)
	}

	for _, name := range cfg.SortedInterfaceNames() {
		if ctx.Err() != nil {
			return nil, warnings, ctx.Err()
		}
		iface := cfg.Interfaces[name]
		fmt.Fprintf(&b, "interface %s\n", iface.Name)
		if iface.Zone != "" {
			fmt.Fprintf(&b, " nameif %s\n", iface.Zone)
		}
		if iface.Description != "" {
			fmt.Fprintf(&b, " description %s\n", iface.Description)
		}
		if iface.IPAddress != "" {
			fmt.Fprintf(&b, " ip address %s %s\n", iface.IPAddress, textutil.CIDRToMask(iface.MaskLength))
		}
		b.WriteString("!\n")
	}

	for _, name := range cfg.SortedAddressNames() {
		addr := cfg.Addresses[name]
		fmt.Fprintf(&b, "object network %s\n", addr.Name)
		switch addr.Type {
		case ir.AddressHost:
			fmt.Fprintf(&b, " host %s\n", addr.Value1)
		case ir.AddressNetwork:
			if prefix, err := strconv.Atoi(addr.Value2); err == nil {
				fmt.Fprintf(&b, " subnet %s %s\n", addr.Value1, textutil.CIDRToMask(prefix))
			}
		case ir.AddressRange:
			fmt.Fprintf(&b, " range %s %s\n", addr.Value1, addr.Value2)
		case ir.AddressFQDN:
			fmt.Fprintf(&b, " fqdn %s\n", addr.Value1)
		}
	}

	for _, name := range cfg.SortedServiceNames() {
		svc := cfg.Services[name]
		if svc.Protocol != ir.ProtoTCP && svc.Protocol != ir.ProtoUDP {
			continue
		}
		fmt.Fprintf(&b, "object service %s\n service %s destination %s\n", svc.Name, svc.Protocol, svc.Port)
	}

	for _, name := range cfg.SortedAddressGroupNames() {
		grp := cfg.AddressGroups[name]
		fmt.Fprintf(&b, "object-group network %s\n", grp.Name)
		for _, m := range grp.Members.Sorted() {
			fmt.Fprintf(&b, " network-object object %s\n", m)
		}
	}

	for _, name := range cfg.SortedServiceGroupNames() {
		grp := cfg.ServiceGroups[name]
		fmt.Fprintf(&b, "object-group service %s\n", grp.Name)
		for _, m := range grp.Members.Sorted() {
			fmt.Fprintf(&b, " service-object object %s\n", m)
		}
	}

	ir.SortRulesBySequence(cfg.Rules)
	for _, r := range cfg.Rules {
		if !r.Enabled {
			continue
		}
		action := "deny"
		if r.Action == ir.ActionAllow {
			action = "permit"
		}
		intfName := firstOr(r.SourceInterface.Sorted(), "any")
		aclName := intfName + "_access_in"
		src := addressTerm(r.Source)
		dst := addressTerm(r.Destination)
		svc := serviceTerm(r.Service, warningsAppender(&warnings, r.Name))
		fmt.Fprintf(&b, "access-list %s extended %s %s %s %s\n", aclName, action, svc, src, dst)
	}

	ir.SortNatRulesBySequence(cfg.NatRules)
	for _, n := range cfg.NatRules {
		srcIntf := firstOr(n.SourceInterface.Sorted(), "inside")
		dstIntf := firstOr(n.DestinationInterface.Sorted(), "outside")
		origName := firstOr(n.OriginalSource.Sorted(), "any")
		if n.TranslatedSource == "dynamic-ip-and-port" {
			fmt.Fprintf(&b, "nat (%s,%s) dynamic %s interface\n", srcIntf, dstIntf, origName)
		} else if n.TranslatedSource != "" {
			fmt.Fprintf(&b, "nat (%s,%s) source static %s %s\n", srcIntf, dstIntf, origName, n.TranslatedSource)
		}
	}

	for _, rt := range cfg.StaticRoutes {
		if rt.RouteType != ir.RouteStatic {
			continue
		}
		ip, mask := splitCIDR(rt.Destination)
		fmt.Fprintf(&b, "route %s %s %s %s %d\n", rt.Interface, ip, mask, rt.NextHop, orOne(rt.Distance))
	}

	return []byte(b.String()), warnings, ctx.Err()
}

func firstOr(items []string, fallback string) string {
	if len(items) > 0 {
		return items[0]
	}
	return fallback
}

func orOne(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func addressTerm(s ir.StringSet) string {
	if len(s) == 0 || s.Has("any") {
		return "any"
	}
	names := s.Sorted()
	if len(names) == 1 {
		return "object " + names[0]
	}
	return "object-group " + names[0]
}

func serviceTerm(s ir.StringSet, warn func(string)) string {
	if len(s) == 0 || s.Has("any") {
		return "ip"
	}
	names := s.Sorted()
	if len(names) > 1 {
		warn(fmt.Sprintf("multiple services (%s) collapsed to the first service-group reference on ASA output", strings.Join(names, ",")))
	}
	return "object-group " + names[0]
}

func warningsAppender(warnings *[]ir.Warning, ruleName string) func(string) {
	return func(msg string) {
		*warnings = append(*warnings, ir.Warning{Category: "Generator", Message: msg, RuleID: ruleName, Severity: ir.SeverityInfo})
	}
}

func splitCIDR(cidr string) (ip, mask string) {
	parts := strings.SplitN(cidr, "/", 2)
	if len(parts) != 2 {
		return cidr, "255.255.255.255"
	}
	prefix, err := strconv.Atoi(parts[1])
	if err != nil {
		return parts[0], "255.255.255.255"
	}
	return parts[0], textutil.CIDRToMask(prefix)
}
