// Package paloalto generates PAN-OS SET-format configuration text from the
// IR, including the semantic rewrites that make PAN-OS output usable
// rather than merely syntactically valid: App-ID vs port-service rule
// splitting, wildcard-FQDN to URL-category address rewriting, and
// DNAT-aware destination rewriting on security rules that follow a NAT.
package paloalto

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fwconvert/fwconvert/generator"
	"github.com/fwconvert/fwconvert/ir"
	"github.com/fwconvert/fwconvert/parser"
)

func init() {
	generator.Register(parser.VendorPaloAlto, generator.GeneratorFunc(Generate))
}

// Generate implements generator.Generator for PAN-OS SET output.
func Generate(ctx context.Context, cfg *ir.FirewallConfig, opts generator.Options) ([]byte, []ir.Warning, error) {
	var b strings.Builder
	var warnings []ir.Warning
	netPrefix := networkPrefix(opts)
	objPrefix := objectPrefix(opts)
	rulePrefix := ruleScopePrefix(opts)

	wildcardCategories := writeAddresses(&b, cfg, objPrefix, &warnings)
	writeAddressGroups(&b, cfg, objPrefix)
	writeServices(&b, cfg, objPrefix)
	writeServiceGroups(&b, cfg, objPrefix)
	writeZonesAndInterfaces(&b, cfg, netPrefix)
	writeStaticRoutes(&b, cfg, netPrefix)
	writeNatRules(&b, cfg, rulePrefix)
	writeSecurityRules(&b, cfg, rulePrefix, wildcardCategories, &warnings)

	return []byte(b.String()), warnings, ctx.Err()
}

// panoramaMode reports whether output should be scoped under a Panorama
// device-group/template rather than emitted as standalone firewall config.
// Per spec.md §4.5.2, Panorama mode requires a device-group or template to
// have actually been configured; Standalone always wins.
func panoramaMode(opts generator.Options) bool {
	return !opts.Standalone && (opts.DeviceGroup != "" || opts.Template != "")
}

// networkPrefix scopes interface/zone/routing commands under a Panorama
// template's vsys, or emits bare `set network ...` in standalone mode.
func networkPrefix(opts generator.Options) string {
	if !panoramaMode(opts) {
		return ""
	}
	tmpl := opts.Template
	if tmpl == "" {
		tmpl = "default"
	}
	return fmt.Sprintf("template %q config devices localhost.localdomain vsys vsys1 ", tmpl)
}

// objectPrefix scopes address/service/profile object commands under a
// Panorama device-group, or emits bare `set address ...` in standalone mode.
func objectPrefix(opts generator.Options) string {
	if !panoramaMode(opts) {
		return ""
	}
	dg := opts.DeviceGroup
	if dg == "" {
		dg = "default"
	}
	return fmt.Sprintf("device-group %q ", dg)
}

// ruleScopePrefix scopes security/NAT rule commands. Standalone output
// uses the local `rulebase` keyword; Panorama output uses the
// device-group's pre-rulebase.
func ruleScopePrefix(opts generator.Options) string {
	if panoramaMode(opts) {
		dg := opts.DeviceGroup
		if dg == "" {
			dg = "default"
		}
		return fmt.Sprintf("device-group %q pre-rulebase ", dg)
	}
	return "rulebase "
}

// writeAddresses rewrites any wildcard-pattern FQDN address ("*.example.com")
// into a PAN-OS custom URL category instead of an fqdn object, since PAN-OS
// fqdn address objects don't accept wildcards. The category is named after
// the address object itself so rules can reference it by the same name.
// Returns the set of address names that became categories, so
// writeSecurityRules can strip them from destination lists and reference
// them via `category` instead.
func writeAddresses(b *strings.Builder, cfg *ir.FirewallConfig, prefix string, warnings *[]ir.Warning) ir.StringSet {
	wildcardCategories := ir.StringSet{}
	for _, name := range cfg.SortedAddressNames() {
		addr := cfg.Addresses[name]
		switch addr.Type {
		case ir.AddressHost:
			fmt.Fprintf(b, "set %saddress %s ip-netmask %s/32\n", prefix, addr.Name, addr.Value1)
		case ir.AddressNetwork:
			fmt.Fprintf(b, "set %saddress %s ip-netmask %s/%s\n", prefix, addr.Name, addr.Value1, addr.Value2)
		case ir.AddressRange:
			fmt.Fprintf(b, "set %saddress %s ip-range %s-%s\n", prefix, addr.Name, addr.Value1, addr.Value2)
		case ir.AddressFQDN:
			if strings.HasPrefix(addr.Value1, "*.") {
				fmt.Fprintf(b, "set %sprofiles custom-url-category %q list [ %q ]\n", prefix, addr.Name, addr.Value1)
				wildcardCategories.Add(addr.Name)
				*warnings = append(*warnings, ir.Warning{
					Category: "Generator",
					Message:  fmt.Sprintf("wildcard fqdn %q has no PAN-OS address equivalent; rewritten as custom URL category %q, referenced from rules via category instead of destination", addr.Name, addr.Name),
					Severity: ir.SeverityWarning, RuleID: addr.Name,
				})
			} else {
				fmt.Fprintf(b, "set %saddress %s fqdn %s\n", prefix, addr.Name, addr.Value1)
			}
		}
	}
	return wildcardCategories
}

func writeAddressGroups(b *strings.Builder, cfg *ir.FirewallConfig, prefix string) {
	for _, name := range cfg.SortedAddressGroupNames() {
		grp := cfg.AddressGroups[name]
		fmt.Fprintf(b, "set %saddress-group %s static [ %s ]\n", prefix, grp.Name, strings.Join(grp.Members.Sorted(), " "))
	}
}

func writeServices(b *strings.Builder, cfg *ir.FirewallConfig, prefix string) {
	for _, name := range cfg.SortedServiceNames() {
		svc := cfg.Services[name]
		switch svc.Protocol {
		case ir.ProtoTCP:
			fmt.Fprintf(b, "set %sservice %s protocol tcp port %s\n", prefix, svc.Name, portOnly(svc.Port))
		case ir.ProtoUDP:
			fmt.Fprintf(b, "set %sservice %s protocol udp port %s\n", prefix, svc.Name, portOnly(svc.Port))
		}
	}
}

func writeServiceGroups(b *strings.Builder, cfg *ir.FirewallConfig, prefix string) {
	for _, name := range cfg.SortedServiceGroupNames() {
		grp := cfg.ServiceGroups[name]
		fmt.Fprintf(b, "set %sservice-group %s members [ %s ]\n", prefix, grp.Name, strings.Join(grp.Members.Sorted(), " "))
	}
}

func writeZonesAndInterfaces(b *strings.Builder, cfg *ir.FirewallConfig, prefix string) {
	zones := map[string][]string{}
	for _, name := range cfg.SortedInterfaceNames() {
		iface := cfg.Interfaces[name]
		if iface.IPAddress != "" {
			fmt.Fprintf(b, "set %snetwork interface %s layer3 ip %s/%d\n", prefix, iface.Name, iface.IPAddress, iface.MaskLength)
		}
		if iface.Zone != "" {
			zones[iface.Zone] = append(zones[iface.Zone], iface.Name)
		}
	}
	for _, zone := range sortedKeys(zones) {
		fmt.Fprintf(b, "set %szone %s network layer3 [ %s ]\n", prefix, zone, strings.Join(zones[zone], " "))
	}
}

func sortedKeys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func writeStaticRoutes(b *strings.Builder, cfg *ir.FirewallConfig, prefix string) {
	for i, rt := range cfg.StaticRoutes {
		if rt.RouteType != ir.RouteStatic {
			continue
		}
		name := fmt.Sprintf("route-%d", i+1)
		fmt.Fprintf(b, "set %snetwork virtual-router default routing-table ip static-route %s destination %s nexthop ip-address %s\n", prefix, name, rt.Destination, rt.NextHop)
	}
}

// writeNatRules emits one NAT rule per IR NatRule, with from/to resolved to
// zones the same way security rules are.
func writeNatRules(b *strings.Builder, cfg *ir.FirewallConfig, prefix string) {
	for _, n := range cfg.NatRules {
		fmt.Fprintf(b, "set %snat rules %s from %s to %s\n", prefix, n.Name, resolveZones(cfg, n.SourceInterface), resolveZones(cfg, n.DestinationInterface))
		fmt.Fprintf(b, "set %snat rules %s source %s\n", prefix, n.Name, quotedOrAny(n.OriginalSource))
		if len(n.OriginalDestination) > 0 {
			fmt.Fprintf(b, "set %snat rules %s destination %s\n", prefix, n.Name, quotedOrAny(n.OriginalDestination))
		}
		if n.TranslatedSource != "" {
			fmt.Fprintf(b, "set %snat rules %s source-translation dynamic-ip-and-port translated-address %s\n", prefix, n.Name, n.TranslatedSource)
		}
		if n.TranslatedDestination != "" {
			fmt.Fprintf(b, "set %snat rules %s destination-translation translated-address %s\n", prefix, n.Name, n.TranslatedDestination)
		}
	}
}

func quotedOrAny(s ir.StringSet) string {
	if len(s) == 0 {
		return "any"
	}
	return strings.Join(s.Sorted(), " ")
}

func portOnly(portSpec string) string {
	fields := strings.Fields(portSpec)
	if len(fields) == 0 {
		return "0"
	}
	return fields[len(fields)-1]
}

// normalizeIfaceKey matches spec.md §4.5.2's zone-resolution rule:
// case-insensitive, whitespace stripped.
func normalizeIfaceKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// resolveZones maps a set of interface names to the zones they belong to,
// built from the IR's own Interface entities (whose Zone field already
// reflects the user's zone-rename map, applied earlier by the mapper). An
// interface with no known zone falls back to its own name.
func resolveZones(cfg *ir.FirewallConfig, names ir.StringSet) string {
	if len(names) == 0 {
		return "any"
	}
	ifaceZone := map[string]string{}
	for _, name := range cfg.SortedInterfaceNames() {
		ifaceZone[normalizeIfaceKey(name)] = cfg.Interfaces[name].Zone
	}
	zones := ir.StringSet{}
	for _, name := range names.Sorted() {
		if zone, ok := ifaceZone[normalizeIfaceKey(name)]; ok && zone != "" {
			zones.Add(zone)
		} else {
			zones.Add(name)
		}
	}
	return quotedOrAny(zones)
}

// isICMPLike reports whether a service name denotes ICMP/ping/traceroute
// traffic, either by matching the IR's own Service.Protocol or by a
// name-pattern match for sentinel/default service names the parser never
// materialized as an ir.Service (e.g. a bare "ping" application reference).
func isICMPLike(cfg *ir.FirewallConfig, name string) bool {
	if svc, ok := cfg.Services[name]; ok && svc.Protocol == ir.ProtoICMP {
		return true
	}
	lower := strings.ToLower(name)
	return strings.Contains(lower, "icmp") || strings.Contains(lower, "ping") || strings.Contains(lower, "traceroute")
}

// splitICMPServices partitions a rule's service names into ICMP-like and
// ordinary port/protocol services, per spec.md §4.5.2's rule-splitting rule.
func splitICMPServices(cfg *ir.FirewallConfig, services ir.StringSet) (icmpLike, other []string) {
	for _, name := range services.Sorted() {
		if isICMPLike(cfg, name) {
			icmpLike = append(icmpLike, name)
		} else {
			other = append(other, name)
		}
	}
	return
}

// dnatDestinationRewrite substitutes, within destSet, any member name that
// is the translated-destination of a NAT rule with that NAT rule's
// original-destination members. PAN-OS evaluates NAT on the original
// packet but the security policy against the post-NAT zone, so a security
// rule written against the translated (internal) address must instead
// match the original (external) address. Returns the rewritten set and the
// translated-destination names that were replaced (nil if none).
func dnatDestinationRewrite(cfg *ir.FirewallConfig, destSet ir.StringSet) (ir.StringSet, []string) {
	out := destSet.Clone()
	var rewritten []string
	for _, n := range cfg.NatRules {
		if n.TranslatedDestination == "" {
			continue
		}
		if out.Has(n.TranslatedDestination) {
			delete(out, n.TranslatedDestination)
			for name := range n.OriginalDestination {
				out.Add(name)
			}
			rewritten = append(rewritten, n.TranslatedDestination)
		}
	}
	return out, rewritten
}

// writeSecurityRules splits each IR Rule into a port-service rule and/or an
// App-ID rule based on whether its service set mixes ICMP-like entries
// with ordinary port services (spec.md §4.5.2's "intelligent rule
// splitting" — PAN-OS NAT policies cannot reference App-IDs, but security
// policies can, so a rule that would otherwise need both gets split).
// DNAT-aware destination rewriting and the wildcard-FQDN category rewrite
// are applied to the shared destination set before either half is emitted.
func writeSecurityRules(b *strings.Builder, cfg *ir.FirewallConfig, prefix string, wildcardCategories ir.StringSet, warnings *[]ir.Warning) {
	ir.SortRulesBySequence(cfg.Rules)
	for _, r := range cfg.Rules {
		if !r.Enabled {
			continue
		}

		destSet, rewrittenFrom := dnatDestinationRewrite(cfg, r.Destination)
		for _, translated := range rewrittenFrom {
			*warnings = append(*warnings, ir.Warning{
				Category: "Generator",
				Message:  fmt.Sprintf("rule %q destination %q rewritten to its pre-NAT original destination to match PAN-OS DNAT evaluation order", r.Name, translated),
				Severity: ir.SeverityInfo, RuleID: r.Name,
			})
		}

		var categories []string
		for name := range wildcardCategories {
			if destSet.Has(name) {
				delete(destSet, name)
				categories = append(categories, name)
			}
		}
		sort.Strings(categories)
		dest := quotedOrAny(destSet)

		action := "deny"
		if r.Action == ir.ActionAllow {
			action = "allow"
		}

		from := resolveZones(cfg, r.SourceInterface)
		to := resolveZones(cfg, r.DestinationInterface)

		writeOneRule := func(name string, services []string, applications []string) {
			fmt.Fprintf(b, "set %ssecurity rules %s from %s\n", prefix, name, from)
			fmt.Fprintf(b, "set %ssecurity rules %s to %s\n", prefix, name, to)
			fmt.Fprintf(b, "set %ssecurity rules %s source %s\n", prefix, name, quotedOrAny(r.Source))
			fmt.Fprintf(b, "set %ssecurity rules %s destination %s\n", prefix, name, dest)
			if len(categories) > 0 {
				fmt.Fprintf(b, "set %ssecurity rules %s category [ %s ]\n", prefix, name, strings.Join(quoteEach(categories), " "))
			}
			if len(applications) > 0 {
				fmt.Fprintf(b, "set %ssecurity rules %s application [ %s ]\n", prefix, name, strings.Join(applications, " "))
				fmt.Fprintf(b, "set %ssecurity rules %s service application-default\n", prefix, name)
			} else {
				service := "any"
				if len(services) > 0 {
					service = strings.Join(services, " ")
				}
				fmt.Fprintf(b, "set %ssecurity rules %s service %s\n", prefix, name, service)
			}
			fmt.Fprintf(b, "set %ssecurity rules %s action %s\n", prefix, name, action)
		}

		icmpLike, other := splitICMPServices(cfg, r.Service)
		switch {
		case len(icmpLike) > 0 && len(other) > 0:
			writeOneRule(r.Name+"-svc", other, nil)
			writeOneRule(r.Name+"-app", nil, icmpLike)
		case len(icmpLike) > 0:
			writeOneRule(r.Name, nil, icmpLike)
		default:
			writeOneRule(r.Name, other, nil)
		}
	}
}

func quoteEach(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}
