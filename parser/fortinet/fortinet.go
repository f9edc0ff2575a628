// Package fortinet parses FortiGate "show full-configuration" CLI exports
// into the IR. Grounded on the original Python FortinetParser's
// config/edit/set/next/end block walker.
package fortinet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fwconvert/fwconvert/internal/textutil"
	"github.com/fwconvert/fwconvert/ir"
	"github.com/fwconvert/fwconvert/parser"
)

func init() {
	parser.Register(parser.VendorFortinet, parser.ParserFunc(Parse))
}

// Parse implements parser.Parser for FortiGate exports.
func Parse(ctx context.Context, req parser.Request) (*ir.FirewallConfig, error) {
	in := req.ByRole("config")
	if in == nil {
		return nil, fmt.Errorf("fortinet: missing required \"config\" input")
	}
	cfg := ir.New()

	rawLines := strings.Split(string(in.Data), "\n")
	lines := make([]string, len(rawLines))
	for i, l := range rawLines {
		lines[i] = textutil.CleanCLILine(l)
	}

	st := &parseState{cfg: cfg, lines: lines, zoneMembers: map[string][]string{}, splitServices: map[string][]string{}}

	i := 0
	for i < len(lines) {
		if i%256 == 0 && ctx.Err() != nil {
			return cfg, ctx.Err()
		}
		line := lines[i]
		switch {
		case line == "":
			i++
		case strings.HasPrefix(line, "config system interface"):
			i = st.parseBlock(i+1, "interface", st.handleInterfaceEntry)
		case strings.HasPrefix(line, "config system zone"):
			i = st.parseBlock(i+1, "zone", st.handleZoneEntry)
		case strings.HasPrefix(line, "config router static"):
			i = st.parseBlock(i+1, "route", st.handleStaticRouteEntry)
		case strings.HasPrefix(line, "config router ospf"):
			i = st.parseDynamicRoutingBlock(i, "ospf")
		case strings.HasPrefix(line, "config router bgp"):
			i = st.parseDynamicRoutingBlock(i, "bgp")
		case strings.HasPrefix(line, "config firewall address"):
			i = st.parseBlock(i+1, "address", st.handleAddressEntry)
		case strings.HasPrefix(line, "config firewall addrgrp"):
			i = st.parseBlock(i+1, "addrgrp", st.handleAddrgrpEntry)
		case strings.HasPrefix(line, "config firewall service custom"):
			i = st.parseBlock(i+1, "service", st.handleServiceEntry)
		case strings.HasPrefix(line, "config firewall service group"):
			i = st.parseBlock(i+1, "servicegrp", st.handleServiceGroupEntry)
		case strings.HasPrefix(line, "config firewall vip"):
			i = st.parseBlock(i+1, "vip", st.handleVIPEntry)
		case strings.HasPrefix(line, "config firewall central-snat-map"):
			i = st.parseBlock(i+1, "snat", st.handleSNATEntry)
		case strings.HasPrefix(line, "config firewall policy"):
			i = st.parseBlock(i+1, "policy", st.handlePolicyEntry)
		default:
			i++
		}
	}

	st.applyZoneMappings()
	st.updateServiceReferences()

	return cfg, nil
}

type entry struct {
	name   string
	fields map[string][]string // set key -> value tokens
}

type parseState struct {
	cfg         *ir.FirewallConfig
	lines       []string
	zoneMembers map[string][]string
	// splitServices records each TCP/UDP custom service that was split,
	// mapped to the name of the group that replaced it (the original name
	// itself). Nothing reads it back: references need no rewrite.
	splitServices map[string][]string
	ruleSeq       int
	natSeq        int
}

// parseBlock walks `edit <name> ... set k v ... next` entries until the
// matching `end`, calling handle once per finalized entry. Mirrors the
// source's _parse_block/process_entry closure.
func (st *parseState) parseBlock(index int, kind string, handle func(entry)) int {
	i := index
	var cur *entry
	flush := func() {
		if cur != nil {
			handle(*cur)
			cur = nil
		}
	}
	for i < len(st.lines) {
		line := st.lines[i]
		switch {
		case line == "end":
			flush()
			return i + 1
		case strings.HasPrefix(line, "edit "):
			flush()
			name := strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "edit ")), "\"")
			cur = &entry{name: name, fields: map[string][]string{}}
		case line == "next":
			flush()
		case strings.HasPrefix(line, "set ") && cur != nil:
			fields := tokenizeSet(strings.TrimPrefix(line, "set "))
			if len(fields) >= 1 {
				key := fields[0]
				cur.fields[key] = append(cur.fields[key], fields[1:]...)
			}
		case strings.HasPrefix(line, "config "):
			// Nested config block (e.g. vip's config mappedip-list) — skip
			// to its matching end without interpretation.
			i = skipNestedBlock(st.lines, i+1)
			continue
		}
		i++
	}
	flush()
	return i
}

func skipNestedBlock(lines []string, start int) int {
	depth := 1
	i := start
	for i < len(lines) && depth > 0 {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "config "):
			depth++
		case line == "end":
			depth--
		}
		i++
	}
	return i
}

// tokenizeSet splits a `set` line's remainder on whitespace, keeping
// double-quoted phrases (names, descriptions) as single tokens.
func tokenizeSet(s string) []string {
	var out []string
	var b strings.Builder
	inQuote := false
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}

func first(fields map[string][]string, key string) string {
	if v, ok := fields[key]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

func all(fields map[string][]string, key string) []string {
	return fields[key]
}

func (st *parseState) handleInterfaceEntry(e entry) {
	iface := &ir.Interface{Name: e.name}
	if v := all(e.fields, "ip"); len(v) >= 2 {
		iface.IPAddress = v[0]
		if cidr, err := strconv.Atoi(textutil.MaskToCIDR(v[1])); err == nil {
			iface.MaskLength = cidr
		}
	}
	iface.Description = first(e.fields, "description")
	if vlan := first(e.fields, "vlanid"); vlan != "" {
		if v, err := strconv.Atoi(vlan); err == nil {
			iface.VLANID = v
		}
	}
	if members := all(e.fields, "member"); len(members) > 0 {
		iface.AggregateMembers = members
	}
	st.cfg.Interfaces[e.name] = iface
}

func (st *parseState) handleZoneEntry(e entry) {
	st.zoneMembers[e.name] = all(e.fields, "interface")
}

func (st *parseState) handleStaticRouteEntry(e entry) {
	dst := first(e.fields, "dst")
	fields := all(e.fields, "dst")
	var destination string
	if len(fields) >= 2 {
		destination = fields[0] + "/" + textutil.MaskToCIDR(fields[1])
	} else if dst != "" {
		destination = dst
	} else {
		destination = "0.0.0.0/0"
	}
	distance := 10
	if d := first(e.fields, "distance"); d != "" {
		if v, err := strconv.Atoi(d); err == nil {
			distance = v
		}
	}
	st.cfg.StaticRoutes = append(st.cfg.StaticRoutes, &ir.StaticRoute{
		Destination: destination,
		NextHop:     first(e.fields, "gateway"),
		Interface:   first(e.fields, "device"),
		Distance:    distance,
		RouteType:   ir.RouteStatic,
	})
}

func (st *parseState) parseDynamicRoutingBlock(index int, kind string) int {
	var block []string
	block = append(block, st.lines[index])
	i := index + 1
	depth := 1
	for i < len(st.lines) && depth > 0 {
		line := st.lines[i]
		switch {
		case strings.HasPrefix(line, "config "):
			depth++
		case line == "end":
			depth--
		}
		if depth > 0 && line != "" {
			block = append(block, line)
		}
		if strings.HasPrefix(line, "set network ") || strings.HasPrefix(line, "set prefix ") {
			parts := strings.Fields(line)
			if len(parts) >= 3 {
				rt := ir.RouteOSPF
				nh := "Dynamic-OSPF"
				if kind == "bgp" {
					rt = ir.RouteBGP
					nh = "Dynamic-BGP"
				}
				st.cfg.StaticRoutes = append(st.cfg.StaticRoutes, &ir.StaticRoute{
					Destination: parts[2],
					NextHop:     nh,
					Interface:   kind,
					RouteType:   rt,
					Comment:     "Imported from " + strings.ToUpper(kind) + ": " + line,
				})
			}
		}
		i++
	}
	if len(block) > 0 {
		st.cfg.DynamicRoutingConfig += strings.Join(block, "\n") + "\n\n"
	}
	return i
}

func (st *parseState) handleAddressEntry(e entry) {
	addr := &ir.Address{Name: e.name}
	switch {
	case first(e.fields, "type") == "fqdn" || first(e.fields, "fqdn") != "":
		addr.Type = ir.AddressFQDN
		addr.Value1 = first(e.fields, "fqdn")
	case first(e.fields, "type") == "iprange":
		addr.Type = ir.AddressRange
		addr.Value1 = first(e.fields, "start-ip")
		addr.Value2 = first(e.fields, "end-ip")
	default:
		if v := all(e.fields, "subnet"); len(v) >= 2 {
			addr.Value1 = v[0]
			addr.Value2 = textutil.MaskToCIDR(v[1])
			if addr.Value2 == "32" {
				addr.Type = ir.AddressHost
			} else {
				addr.Type = ir.AddressNetwork
			}
		} else if v := all(e.fields, "subnet"); len(v) == 1 {
			addr.Type = ir.AddressHost
			addr.Value1 = v[0]
		}
	}
	st.cfg.Addresses[e.name] = addr
}

func (st *parseState) handleAddrgrpEntry(e entry) {
	grp := &ir.Group{Name: e.name, Members: ir.NewStringSet(all(e.fields, "member")...)}
	st.cfg.AddressGroups[e.name] = grp
}

// handleServiceEntry splits a service defining both tcp-portrange and
// udp-portrange into two synthetic per-protocol services plus a group
// carrying the original name, recorded in splitServices. References to
// the original name keep resolving, to the group.
func (st *parseState) handleServiceEntry(e entry) {
	tcp := first(e.fields, "tcp-portrange")
	udp := first(e.fields, "udp-portrange")
	proto := first(e.fields, "protocol")

	switch {
	case tcp != "" && udp != "":
		tcpName := e.name + "_TCP"
		udpName := e.name + "_UDP"
		st.cfg.Services[tcpName] = &ir.Service{Name: tcpName, Protocol: ir.ProtoTCP, Port: tcp}
		st.cfg.Services[udpName] = &ir.Service{Name: udpName, Protocol: ir.ProtoUDP, Port: udp}
		st.cfg.ServiceGroups[e.name] = &ir.ServiceGroup{Name: e.name, Members: ir.NewStringSet(tcpName, udpName)}
		st.splitServices[e.name] = []string{e.name}
	case tcp != "":
		st.cfg.Services[e.name] = &ir.Service{Name: e.name, Protocol: ir.ProtoTCP, Port: tcp}
	case udp != "":
		st.cfg.Services[e.name] = &ir.Service{Name: e.name, Protocol: ir.ProtoUDP, Port: udp}
	case strings.EqualFold(proto, "ICMP"):
		st.cfg.Services[e.name] = &ir.Service{Name: e.name, Protocol: ir.ProtoICMP}
	default:
		st.cfg.Services[e.name] = &ir.Service{Name: e.name, Protocol: ir.ProtoOther}
	}
}

func (st *parseState) handleServiceGroupEntry(e entry) {
	st.cfg.ServiceGroups[e.name] = &ir.ServiceGroup{Name: e.name, Members: ir.NewStringSet(all(e.fields, "member")...)}
}

func (st *parseState) handleVIPEntry(e entry) {
	extIP := first(e.fields, "extip")
	mappedIP := first(e.fields, "mappedip")
	name := e.name
	st.cfg.Addresses[name+"_ext"] = &ir.Address{Name: name + "_ext", Type: ir.AddressHost, Value1: extIP}
	st.cfg.Addresses[name+"_mapped"] = &ir.Address{Name: name + "_mapped", Type: ir.AddressHost, Value1: mappedIP}

	nat := ir.NewNatRule(st.nextNatSeq(), "VIP_"+name)
	nat.OriginalDestination.Add(name + "_ext")
	nat.TranslatedDestination = name + "_mapped"
	if extPort := first(e.fields, "extport"); extPort != "" {
		mappedPort := first(e.fields, "mappedport")
		svcName := "VIP_SVC_" + name
		st.cfg.Services[svcName] = &ir.Service{Name: svcName, Protocol: ir.ProtoTCP, Port: "eq " + extPort}
		nat.OriginalService.Add(svcName)
		nat.TranslatedService = "tcp/" + mappedPort
	}
	nat.OriginalText = "config firewall vip / edit " + name
	st.cfg.NatRules = append(st.cfg.NatRules, nat)

	// VIPs double as destination address objects referenceable from
	// policies, kept under the VIP's own name for rule lookups.
	st.cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressHost, Value1: extIP, OriginalText: "vip:" + name}
}

func (st *parseState) handleSNATEntry(e entry) {
	nat := ir.NewNatRule(st.nextNatSeq(), "SNAT_"+e.name)
	nat.SourceInterface.Add(first(e.fields, "srcintf"))
	nat.DestinationInterface.Add(first(e.fields, "dstintf"))
	for _, a := range all(e.fields, "orig-addr") {
		nat.OriginalSource.Add(a)
	}
	if pool := first(e.fields, "nat-ippool"); pool != "" {
		nat.TranslatedSource = pool
	} else {
		nat.TranslatedSource = "dynamic-ip-and-port"
	}
	st.cfg.NatRules = append(st.cfg.NatRules, nat)
}

func (st *parseState) handlePolicyEntry(e entry) {
	seqID := st.nextRuleSeq()
	action := ir.ActionDeny
	if strings.EqualFold(first(e.fields, "action"), "accept") {
		action = ir.ActionAllow
	}
	rule := ir.NewRule(seqID, "policy-"+e.name, action)
	rule.Remark = first(e.fields, "comments")
	rule.Enabled = first(e.fields, "status") != "disable"
	rule.Log = first(e.fields, "logtraffic") != "" && first(e.fields, "logtraffic") != "disable"

	for _, v := range all(e.fields, "srcintf") {
		rule.SourceInterface.Add(v)
	}
	for _, v := range all(e.fields, "dstintf") {
		rule.DestinationInterface.Add(v)
	}
	for _, v := range all(e.fields, "srcaddr") {
		rule.Source.Add(v)
	}
	for _, v := range all(e.fields, "dstaddr") {
		rule.Destination.Add(v)
	}
	for _, v := range all(e.fields, "service") {
		rule.Service.Add(v)
	}
	rule.OriginalText = "config firewall policy / edit " + e.name

	if len(rule.Source) == 0 {
		rule.Source.Add("any")
	}
	if len(rule.Destination) == 0 {
		rule.Destination.Add("any")
	}
	if len(rule.Service) == 0 {
		rule.Service.Add("ALL")
	}

	st.cfg.Rules = append(st.cfg.Rules, rule)

	if first(e.fields, "nat") == "enable" {
		nat := ir.NewNatRule(st.nextNatSeq(), "PolicyNAT_"+e.name)
		for k := range rule.Source {
			nat.OriginalSource.Add(k)
		}
		for k := range rule.SourceInterface {
			nat.SourceInterface.Add(k)
		}
		for k := range rule.DestinationInterface {
			nat.DestinationInterface.Add(k)
		}
		if pool := first(e.fields, "ippool"); pool != "" {
			if name := first(e.fields, "poolname"); name != "" {
				nat.TranslatedSource = name
			} else {
				nat.TranslatedSource = "pool"
			}
		} else {
			nat.TranslatedSource = "dynamic-ip-and-port"
		}
		st.cfg.NatRules = append(st.cfg.NatRules, nat)
	}
}

func (st *parseState) nextRuleSeq() int {
	st.ruleSeq++
	return st.ruleSeq
}

func (st *parseState) nextNatSeq() int {
	st.natSeq++
	return st.natSeq
}

// applyZoneMappings folds zone->member-interface lists into the interface
// model (rules are left as parsed): each zone not already defined as an
// interface becomes a pass-through interface alias listing its members, so later
// components (mapper, generators) can resolve srcintf/dstintf references
// that name a zone rather than a physical port.
func (st *parseState) applyZoneMappings() {
	for zone, members := range st.zoneMembers {
		if _, exists := st.cfg.Interfaces[zone]; !exists {
			st.cfg.Interfaces[zone] = &ir.Interface{Name: zone, Zone: zone, AggregateMembers: members}
		}
	}
}

// updateServiceReferences checks every rule's service references and
// warns on each name that is not a service, a service group, or the
// ALL/ANY built-ins. It rewrites nothing: a split TCP+UDP custom service
// is replaced by a group named identically to the original service, so
// references to it stay valid. NAT-rule and group references are not
// checked.
func (st *parseState) updateServiceReferences() {
	resolve := func(name string) bool {
		if st.cfg.HasService(name) {
			return true
		}
		if _, ok := st.cfg.ServiceGroups[name]; ok {
			return true
		}
		return name == "ALL" || name == "ANY"
	}
	check := func(set ir.StringSet, ruleName string) {
		for _, name := range set.Sorted() {
			if !resolve(name) {
				st.cfg.AddWarning(ir.Warning{
					Category: "Parser",
					Message:  fmt.Sprintf("rule %q references unknown service %q", ruleName, name),
					RuleID:   ruleName,
					Severity: ir.SeverityWarning,
				})
			}
		}
	}
	for _, r := range st.cfg.Rules {
		check(r.Service, r.Name)
	}
}
