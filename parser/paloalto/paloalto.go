// Package paloalto parses PAN-OS "set" format configuration exports
// (standalone or Panorama, with the device-group prefix stripped) into
// the IR. Grounded on the original Python PaloAltoParser.
package paloalto

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fwconvert/fwconvert/internal/textutil"
	"github.com/fwconvert/fwconvert/ir"
	"github.com/fwconvert/fwconvert/parser"
)

func init() {
	parser.Register(parser.VendorPaloAlto, parser.ParserFunc(Parse))
}

// defaultServices is the fallback well-known-service table PAN-OS rules
// fall back to when they reference a built-in service name that was
// never explicitly defined as an object.
var defaultServices = map[string]*ir.Service{
	"service-http":  {Name: "service-http", Protocol: ir.ProtoTCP, Port: "eq 80"},
	"service-https": {Name: "service-https", Protocol: ir.ProtoTCP, Port: "eq 443"},
	"service-ftp":   {Name: "service-ftp", Protocol: ir.ProtoTCP, Port: "eq 21"},
	"service-ssh":   {Name: "service-ssh", Protocol: ir.ProtoTCP, Port: "eq 22"},
}

var panoramaPrefix = regexp.MustCompile(`^set (?:device-group \S+|template \S+ config devices \S+ (?:vsys \S+ )?)`)

func init() { _ = panoramaPrefix }

var (
	reAddress      = regexp.MustCompile(`^set address (\S+) ip-netmask (\S+)$`)
	reAddressRange = regexp.MustCompile(`^set address (\S+) ip-range (\S+)-(\S+)$`)
	reAddressFQDN  = regexp.MustCompile(`^set address (\S+) fqdn (\S+)$`)
	reAddrGroupM   = regexp.MustCompile(`^set address-group (\S+) static \[? ?(.+?) ?\]?$`)
	reServiceTCP   = regexp.MustCompile(`^set service (\S+) protocol tcp port (\S+)$`)
	reServiceUDP   = regexp.MustCompile(`^set service (\S+) protocol udp port (\S+)$`)
	reServiceGrp   = regexp.MustCompile(`^set service-group (\S+) members \[? ?(.+?) ?\]?$`)
	reZone         = regexp.MustCompile(`^set zone (\S+) network layer3 \[? ?(.+?) ?\]?$`)
	reIfaceIP      = regexp.MustCompile(`^set network interface \S+ (?:unit \S+ |layer3 )*ip (\S+)$`)
	reStaticRoute  = regexp.MustCompile(`^set network virtual-router \S+ routing-table ip static-route (\S+) destination (\S+) nexthop ip-address (\S+)$`)
	reRuleField    = regexp.MustCompile(`^set rulebase security rules (\S+) (\S+(?:-\S+)*) \[? ?(.+?) ?\]?$`)
	reNatRuleField = regexp.MustCompile(`^set rulebase nat rules (\S+) (\S+(?:-\S+)*(?:\s\S+)?) \[? ?(.+?) ?\]?$`)
)

// Parse implements parser.Parser for PAN-OS SET format exports.
func Parse(ctx context.Context, req parser.Request) (*ir.FirewallConfig, error) {
	in := req.ByRole("config")
	if in == nil {
		return nil, fmt.Errorf("paloalto: missing required \"config\" input")
	}
	cfg := ir.New()

	rulesData := map[string]map[string][]string{}
	natRulesData := map[string]map[string][]string{}
	var ruleOrder, natOrder []string

	rawLines := strings.Split(string(in.Data), "\n")
	for idx, raw := range rawLines {
		if idx%256 == 0 && ctx.Err() != nil {
			return cfg, ctx.Err()
		}
		line := textutil.CleanCLILine(raw)
		if line == "" || !strings.HasPrefix(line, "set ") {
			continue
		}
		line = stripPanoramaPrefix(line)

		switch {
		case reAddress.MatchString(line):
			m := reAddress.FindStringSubmatch(line)
			ip, cidr := splitCIDR(m[2])
			cfg.Addresses[m[1]] = &ir.Address{Name: m[1], Type: ir.AddressNetwork, Value1: ip, Value2: cidr}
		case reAddressRange.MatchString(line):
			m := reAddressRange.FindStringSubmatch(line)
			cfg.Addresses[m[1]] = &ir.Address{Name: m[1], Type: ir.AddressRange, Value1: m[2], Value2: m[3]}
		case reAddressFQDN.MatchString(line):
			m := reAddressFQDN.FindStringSubmatch(line)
			cfg.Addresses[m[1]] = &ir.Address{Name: m[1], Type: ir.AddressFQDN, Value1: m[2]}
		case reAddrGroupM.MatchString(line):
			m := reAddrGroupM.FindStringSubmatch(line)
			mergeGroupMembers(cfg.AddressGroups, m[1], m[2])
		case reServiceTCP.MatchString(line):
			m := reServiceTCP.FindStringSubmatch(line)
			cfg.Services[m[1]] = &ir.Service{Name: m[1], Protocol: ir.ProtoTCP, Port: "eq " + m[2]}
		case reServiceUDP.MatchString(line):
			m := reServiceUDP.FindStringSubmatch(line)
			cfg.Services[m[1]] = &ir.Service{Name: m[1], Protocol: ir.ProtoUDP, Port: "eq " + m[2]}
		case reServiceGrp.MatchString(line):
			m := reServiceGrp.FindStringSubmatch(line)
			mergeServiceGroupMembers(cfg.ServiceGroups, m[1], m[2])
		case reZone.MatchString(line):
			m := reZone.FindStringSubmatch(line)
			for _, member := range splitBracketList(m[2]) {
				iface, ok := cfg.Interfaces[member]
				if !ok {
					iface = &ir.Interface{Name: member}
					cfg.Interfaces[member] = iface
				}
				iface.Zone = m[1]
			}
		case reIfaceIP.MatchString(line):
			parts := strings.Fields(line)
			ifName := parts[3]
			m := reIfaceIP.FindStringSubmatch(line)
			ip, cidr := splitCIDR(m[1])
			iface, ok := cfg.Interfaces[ifName]
			if !ok {
				iface = &ir.Interface{Name: ifName}
				cfg.Interfaces[ifName] = iface
			}
			iface.IPAddress = ip
			if v, err := strconv.Atoi(cidr); err == nil {
				iface.MaskLength = v
			}
		case reStaticRoute.MatchString(line):
			m := reStaticRoute.FindStringSubmatch(line)
			cfg.StaticRoutes = append(cfg.StaticRoutes, &ir.StaticRoute{
				Destination: m[2],
				NextHop:     m[3],
				RouteType:   ir.RouteStatic,
				Comment:     "route " + m[1],
			})
		case reRuleField.MatchString(line):
			m := reRuleField.FindStringSubmatch(line)
			name, key, val := m[1], m[2], m[3]
			if _, ok := rulesData[name]; !ok {
				rulesData[name] = map[string][]string{}
				ruleOrder = append(ruleOrder, name)
			}
			rulesData[name][key] = append(rulesData[name][key], splitBracketList(val)...)
		case reNatRuleField.MatchString(line):
			m := reNatRuleField.FindStringSubmatch(line)
			name, key, val := m[1], m[2], m[3]
			if _, ok := natRulesData[name]; !ok {
				natRulesData[name] = map[string][]string{}
				natOrder = append(natOrder, name)
			}
			natRulesData[name][key] = append(natRulesData[name][key], splitBracketList(val)...)
		}
	}

	createRuleObjects(cfg, ruleOrder, rulesData)
	createNatRuleObjects(cfg, natOrder, natRulesData)
	fillDefaultServices(cfg)

	return cfg, nil
}

func stripPanoramaPrefix(line string) string {
	if loc := panoramaPrefix.FindStringIndex(line); loc != nil {
		rest := strings.TrimSpace(line[loc[1]:])
		for _, p := range []string{"pre-", "post-"} {
			if strings.HasPrefix(rest, p+"rulebase ") {
				rest = strings.TrimPrefix(rest, p)
			}
		}
		return "set " + rest
	}
	return line
}

func splitCIDR(s string) (ip, cidr string) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return s, "32"
}

func splitBracketList(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return strings.Fields(s)
}

func mergeGroupMembers(groups map[string]*ir.Group, name, val string) {
	g, ok := groups[name]
	if !ok {
		g = &ir.Group{Name: name, Members: ir.StringSet{}}
		groups[name] = g
	}
	for _, m := range splitBracketList(val) {
		g.Members.Add(m)
	}
}

func mergeServiceGroupMembers(groups map[string]*ir.ServiceGroup, name, val string) {
	g, ok := groups[name]
	if !ok {
		g = &ir.ServiceGroup{Name: name, Members: ir.StringSet{}}
		groups[name] = g
	}
	for _, m := range splitBracketList(val) {
		g.Members.Add(m)
	}
}

func createRuleObjects(cfg *ir.FirewallConfig, order []string, data map[string]map[string][]string) {
	for seq, name := range order {
		fields := data[name]
		action := ir.ActionDeny
		if v := fields["action"]; len(v) > 0 && v[0] == "allow" {
			action = ir.ActionAllow
		}
		rule := ir.NewRule(seq+1, name, action)
		for _, v := range fields["from"] {
			rule.SourceInterface.Add(v)
		}
		for _, v := range fields["to"] {
			rule.DestinationInterface.Add(v)
		}
		for _, v := range fields["source"] {
			rule.Source.Add(v)
		}
		for _, v := range fields["destination"] {
			rule.Destination.Add(v)
		}
		for _, v := range fields["service"] {
			rule.Service.Add(v)
		}
		for _, v := range fields["application"] {
			rule.Application.Add(v)
		}
		if len(rule.Source) == 0 {
			rule.Source.Add("any")
		}
		if len(rule.Destination) == 0 {
			rule.Destination.Add("any")
		}
		if len(rule.Service) == 0 && len(rule.Application) == 0 {
			rule.Service.Add("application-default")
		}
		rule.OriginalText = "set rulebase security rules " + name
		cfg.Rules = append(cfg.Rules, rule)
	}
}

// createNatRuleObjects builds one NatRule per PAN-OS NAT rule. When a rule
// has both a source and a destination translation, the primary NatRule
// keeps both, and a synthetic `DNAT_of_<name>` entry is added for the
// reverse direction: interfaces swapped, matching the translated
// destination and translating it to the rule's first original destination.
func createNatRuleObjects(cfg *ir.FirewallConfig, order []string, data map[string]map[string][]string) {
	for seq, name := range order {
		fields := data[name]
		nat := ir.NewNatRule(seq*2+1, name)
		for _, v := range fields["from"] {
			nat.SourceInterface.Add(v)
		}
		for _, v := range fields["to"] {
			nat.DestinationInterface.Add(v)
		}
		for _, v := range fields["source"] {
			nat.OriginalSource.Add(v)
		}
		for _, v := range fields["destination"] {
			nat.OriginalDestination.Add(v)
		}
		for _, v := range fields["service"] {
			nat.OriginalService.Add(v)
		}

		hasSourceXlat := len(fields["source-translation"]) > 0
		hasDestXlat := len(fields["destination-translation"]) > 0

		if hasSourceXlat {
			nat.TranslatedSource = firstOr(fields["source-translation"], "dynamic-ip-and-port")
		}
		if hasDestXlat {
			nat.TranslatedDestination = firstOr(fields["destination-translation"], "")
		}
		cfg.NatRules = append(cfg.NatRules, nat)

		if hasSourceXlat && hasDestXlat {
			dnat := ir.NewNatRule(seq*2+2, "DNAT_of_"+name)
			dnat.SourceInterface = nat.DestinationInterface.Clone()
			dnat.DestinationInterface = nat.SourceInterface.Clone()
			dnat.OriginalDestination = ir.NewStringSet(nat.TranslatedDestination)
			dnat.TranslatedDestination = firstOr(fields["destination"], "")
			dnat.OriginalService = nat.OriginalService.Clone()
			cfg.NatRules = append(cfg.NatRules, dnat)
		}
	}
}

func firstOr(v []string, fallback string) string {
	if len(v) > 0 {
		return v[0]
	}
	return fallback
}

// fillDefaultServices materializes any well-known PAN-OS service name a
// rule references but that was never defined as an object, from the
// built-in fallback table.
func fillDefaultServices(cfg *ir.FirewallConfig) {
	for _, rule := range cfg.Rules {
		for _, name := range rule.Service.Sorted() {
			if cfg.HasService(name) {
				continue
			}
			if def, ok := defaultServices[name]; ok {
				cloned := *def
				cfg.Services[name] = &cloned
			}
		}
	}
}
