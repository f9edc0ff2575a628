// Package asa parses Cisco ASA "show running-config" style exports into the
// IR. Grounded on the original Python CiscoAsaParser, reworked in the
// teacher's stateful line-walking idiom (vendors/vsol/line_profile.go).
package asa

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
	parser.Register(parser.VendorASA, parser.ParserFunc(Parse))
}

var (
	reObjName     = regexp.MustCompile(`object(?:-group)? (?:network|service) (\S+)`)
	reTimeRange   = regexp.MustCompile(`time-range (\S+)`)
	reObjNetwork  = regexp.MustCompile(`object network (\S+)`)
	reObjNat      = regexp.MustCompile(`nat \((.+?),(.+?)\) (dynamic|static) (\S+)(?: service (\S+) (\S+) (\S+))?(?: unidirectional)?`)
	reTwiceNat    = regexp.MustCompile(`nat \((.+?),(.+?)\).*source static (\S+) (\S+) destination static (\S+) (\S+)`)
	reStaticNat   = regexp.MustCompile(`nat \((.+?),(.+?)\).*source static (\S+) (\S+?)( unidirectional)?$`)
	reDynamicPAT  = regexp.MustCompile(`nat \((.+?),(.+?)\).*source dynamic (\S+) interface`)
	reDynamicNat  = regexp.MustCompile(`nat \((.+?),(.+?)\).*source dynamic (\S+) (\S+)`)
	reObjService  = regexp.MustCompile(`object service (\S+)`)
	reServiceDef  = regexp.MustCompile(`service (tcp|udp) destination (eq|range) (.*)`)
	reAddrGroup   = regexp.MustCompile(`object-group network (\S+)`)
	reIPMask      = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
	reSvcGroup    = regexp.MustCompile(`object-group service (\S+)(?: (tcp|udp|tcp-udp))?`)
	rePortObject  = regexp.MustCompile(`port-object (eq|range) (.*)`)
	reSvcObjMatch = regexp.MustCompile(`service-object (\S+)(?: destination)? (eq|range) (.*)`)
	reRuleTimeRng = regexp.MustCompile(`time-range (\S+)`)
	reCleanRule   = regexp.MustCompile(`\s+log.*$|\s+inactive$|\s+time-range \S+$`)
	reInterface   = regexp.MustCompile(`^interface (\S+)`)
	reHitCount    = regexp.MustCompile(`\(hitcnt=(\d+)\)`)
)

// stopTokens are the lowercased prefixes that close an open block (object,
// interface, routing) when encountered, mirroring the source's STOP_TOKENS.
var stopTokens = []string{
	"object", "access-list", "hostname", ": end", "time-range", "interface ", "route ", "router ", "nat ",
}

func isStopLine(lowered string) bool {
	return textutil.HasAnyPrefix(lowered, stopTokens...)
}

// Parse implements parser.Parser for Cisco ASA exports.
func Parse(ctx context.Context, req parser.Request) (*ir.FirewallConfig, error) {
	in := req.ByRole("config")
	if in == nil {
		return nil, fmt.Errorf("asa: missing required \"config\" input")
	}
	cfg := ir.New()

	rawLines := strings.Split(string(in.Data), "\n")
	lines := make([]string, len(rawLines))
	for i, l := range rawLines {
		lines[i] = textutil.CleanCLILine(l)
	}

	st := &parseState{cfg: cfg, lines: lines}
	st.duplicates = st.discoverDuplicates()

	var lastRemark string
	i := 0
	for i < len(lines) {
		if i%256 == 0 && ctx.Err() != nil {
			return cfg, ctx.Err()
		}
		line := lines[i]
		lower := strings.ToLower(line)

		switch {
		case line == "" || strings.HasPrefix(line, "!") || strings.HasPrefix(line, ":"):
			i++
		case strings.HasPrefix(lower, "access-list") && strings.Contains(lower, " remark "):
			if idx := caseInsensitiveIndex(line, " remark "); idx >= 0 {
				lastRemark = strings.TrimSpace(line[idx+len(" remark "):])
			}
			i++
		case strings.HasPrefix(lower, "router ospf"):
			i = st.parseDynamicRoutingBlock(i, "ospf", 110)
		case strings.HasPrefix(lower, "router bgp"):
			i = st.parseDynamicRoutingBlock(i, "bgp", 20)
		case strings.HasPrefix(lower, "route "):
			st.parseStaticRoute(line)
			i++
		case strings.HasPrefix(lower, "interface "):
			i = st.parseInterfaceBlock(i)
		case strings.HasPrefix(lower, "object network"):
			i = st.parseObjectNetwork(i)
		case strings.HasPrefix(lower, "object service"):
			i = st.parseObjectService(i)
		case strings.HasPrefix(lower, "object-group network"):
			i = st.parseAddressGroup(i)
		case strings.HasPrefix(lower, "object-group service"):
			i = st.parseServiceGroup(i)
		case strings.HasPrefix(lower, "time-range"):
			i = st.parseTimeRange(i)
		case strings.HasPrefix(lower, "access-list"):
			st.parseRule(line, lastRemark)
			lastRemark = ""
			i++
		case strings.HasPrefix(lower, "nat ("):
			st.parseNatRuleLine(line)
			i++
		default:
			if !hasAnySubstring(lower,
				"hostname", "domain-name", "names", "pager", "logging", "aaa", "ssh", "http",
				"console", "terminal", "crypto", "policy-map", "class-map", "service-policy") {
				cfg.AddWarning(ir.Warning{
					Category:     "Parser",
					Message:      "Skipped unparsed line",
					OriginalLine: line,
					Severity:     ir.SeverityInfo,
				})
			}
			i++
		}
	}

	return cfg, nil
}

func hasAnySubstring(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func caseInsensitiveIndex(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}

// parseState carries the mutable per-parse bookkeeping (rule/nat sequence
// counters, duplicate-name set, multi-context dedup) that the Python
// parser threaded through as explicit arguments.
type parseState struct {
	cfg        *ir.FirewallConfig
	lines      []string
	duplicates map[string]struct{}
	ruleSeq    int
	natSeq     int
}

func (st *parseState) nextRuleSeq() int {
	st.ruleSeq++
	return st.ruleSeq
}

func (st *parseState) nextNatSeq() int {
	st.natSeq++
	return st.natSeq
}

// discoverDuplicates finds object names declared more than once (ASA
// supports multi-context configs concatenated together; this implementation
// treats the whole input as a single "default" context, so duplicates are
// only relevant if the same input repeats a name — kept for parity with
// the source's per-context renaming hook, currently a no-op context name).
func (st *parseState) discoverDuplicates() map[string]struct{} {
	counts := map[string]int{}
	for _, line := range st.lines {
		if m := reObjName.FindStringSubmatch(line); m != nil {
			counts[m[1]]++
		}
	}
	dups := map[string]struct{}{}
	for name, n := range counts {
		if n > 1 {
			dups[name] = struct{}{}
		}
	}
	return dups
}

func (st *parseState) parseStaticRoute(line string) {
	parts := strings.Fields(line)
	if len(parts) < 5 {
		return
	}
	iface, destIP, destMask, nextHop := parts[1], parts[2], parts[3], parts[4]
	distance := 1
	if len(parts) > 5 {
		if d, err := strconv.Atoi(parts[5]); err == nil {
			distance = d
		}
	}
	var destination string
	if destIP == "0.0.0.0" && destMask == "0.0.0.0" {
		destination = "0.0.0.0/0"
	} else {
		destination = destIP + "/" + textutil.MaskToCIDR(destMask)
	}
	st.cfg.StaticRoutes = append(st.cfg.StaticRoutes, &ir.StaticRoute{
		Destination: destination,
		NextHop:     nextHop,
		Interface:   iface,
		Distance:    distance,
		RouteType:   ir.RouteStatic,
	})
}

// parseDynamicRoutingBlock handles `router ospf`/`router bgp` blocks:
// captures raw text and materializes each `network` statement as a
// dynamic-kind StaticRoute with a sentinel next-hop.
func (st *parseState) parseDynamicRoutingBlock(index int, kind string, distance int) int {
	var block []string
	block = append(block, st.lines[index])
	i := index + 1
	for i < len(st.lines) {
		line := st.lines[i]
		lower := strings.ToLower(line)
		if isStopLine(lower) {
			break
		}
		if line != "" {
			block = append(block, line)
		}
		if strings.HasPrefix(lower, "network") {
			parts := strings.Fields(line)
			if len(parts) >= 3 {
				ip, mask := parts[1], parts[2]
				dest := ip + "/" + textutil.MaskToCIDR(mask)
				rt := ir.RouteOSPF
				nh := "Dynamic-OSPF"
				if kind == "bgp" {
					rt = ir.RouteBGP
					nh = "Dynamic-BGP"
				}
				st.cfg.StaticRoutes = append(st.cfg.StaticRoutes, &ir.StaticRoute{
					Destination: dest,
					NextHop:     nh,
					Interface:   kind,
					Distance:    distance,
					Metric:      distance,
					RouteType:   rt,
					Comment:     fmt.Sprintf("Imported from %s: %s", strings.ToUpper(kind), line),
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

func (st *parseState) parseInterfaceBlock(index int) int {
	m := reInterface.FindStringSubmatch(st.lines[index])
	if m == nil {
		return index + 1
	}
	iface := &ir.Interface{Name: m[1]}
	i := index + 1
	for i < len(st.lines) {
		line := st.lines[i]
		if isStopLine(strings.ToLower(line)) {
			break
		}
		if line == "" || strings.HasPrefix(line, "!") {
			i++
			continue
		}
		switch {
		case strings.HasPrefix(line, "nameif "):
			iface.Zone = strings.Fields(line)[1]
		case strings.HasPrefix(line, "description "):
			iface.Description = strings.TrimSpace(strings.TrimPrefix(line, "description "))
		case strings.HasPrefix(line, "ip address "):
			parts := strings.Fields(line)
			if len(parts) >= 3 {
				iface.IPAddress = parts[2]
				if len(parts) > 3 {
					if cidr, err := strconv.Atoi(textutil.MaskToCIDR(parts[3])); err == nil {
						iface.MaskLength = cidr
					}
				}
			}
		case strings.HasPrefix(line, "vlan "):
			if v, err := strconv.Atoi(strings.Fields(line)[1]); err == nil {
				iface.VLANID = v
			}
		}
		i++
	}
	st.cfg.Interfaces[iface.Name] = iface
	return i
}

func (st *parseState) getNewName(original string) string {
	// Single-context input: duplicate renaming is a no-op, but the hook
	// stays in place for multi-context exports pasted back to back.
	return original
}

func (st *parseState) parseTimeRange(index int) int {
	m := reTimeRange.FindStringSubmatch(st.lines[index])
	if m == nil {
		return index + 1
	}
	name := st.getNewName(m[1])
	st.cfg.TimeRanges[name] = &ir.TimeRange{Name: name, StartTime: "00:00", StartDate: "2000/01/01", EndTime: "23:59", EndDate: "2038/01/19", OriginalText: st.lines[index]}
	i := index + 1
	for i < len(st.lines) && !isStopLine(strings.ToLower(st.lines[i])) {
		i++
	}
	return i
}

func (st *parseState) parseObjectNetwork(index int) int {
	m := reObjNetwork.FindStringSubmatch(st.lines[index])
	if m == nil {
		return index + 1
	}
	name := st.getNewName(m[1])
	i := index + 1
	for i < len(st.lines) {
		line := st.lines[i]
		// Object NAT lines begin with the "nat " stop token too; they
		// belong to this block, while manual NAT lines still end it.
		if isStopLine(strings.ToLower(line)) && !reObjNat.MatchString(line) {
			break
		}
		switch {
		case strings.HasPrefix(line, "host "):
			st.cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressHost, Value1: strings.Fields(line)[1], OriginalText: st.lines[index] + "\n" + line}
		case strings.HasPrefix(line, "subnet "):
			parts := strings.Fields(line)
			if len(parts) >= 3 {
				st.cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressNetwork, Value1: parts[1], Value2: textutil.MaskToCIDR(parts[2]), OriginalText: st.lines[index] + "\n" + line}
			}
		case strings.HasPrefix(line, "range "):
			parts := strings.Fields(line)
			if len(parts) >= 3 {
				st.cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressRange, Value1: parts[1], Value2: parts[2], OriginalText: st.lines[index] + "\n" + line}
			}
		case strings.HasPrefix(line, "fqdn "):
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				st.cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressFQDN, Value1: parts[1], OriginalText: st.lines[index] + "\n" + line}
			}
		case strings.HasPrefix(line, "nat ("):
			if m := reObjNat.FindStringSubmatch(line); m != nil {
				srcIntf, dstIntf, _, translatedVal, svcProto, svcReal, svcMapped := m[1], m[2], m[3], m[4], m[5], m[6], m[7]
				translatedSource := strings.TrimSpace(translatedVal)
				if translatedVal == "interface" {
					translatedSource = "dynamic-ip-and-port"
				}
				nat := ir.NewNatRule(st.nextNatSeq(), "NAT_"+name)
				nat.SourceInterface.Add(strings.TrimSpace(srcIntf))
				nat.DestinationInterface.Add(strings.TrimSpace(dstIntf))
				nat.OriginalSource.Add(name)
				nat.TranslatedSource = translatedSource
				if svcProto != "" && svcReal != "" && svcMapped != "" {
					nat.OriginalService.Add(svcProto + "/" + svcReal)
					nat.TranslatedService = svcProto + "/" + svcMapped
				}
				nat.OriginalText = line
				st.cfg.NatRules = append(st.cfg.NatRules, nat)
			}
		}
		i++
	}
	return i
}

func (st *parseState) parseObjectService(index int) int {
	m := reObjService.FindStringSubmatch(st.lines[index])
	if m == nil {
		return index + 1
	}
	name := st.getNewName(m[1])
	i := index + 1
	for i < len(st.lines) && !isStopLine(strings.ToLower(st.lines[i])) {
		line := st.lines[i]
		if m := reServiceDef.FindStringSubmatch(line); m != nil {
			proto, op, ports := m[1], m[2], strings.TrimSpace(m[3])
			st.cfg.Services[name] = &ir.Service{Name: name, Protocol: ir.Protocol(proto), Port: op + " " + ports, OriginalText: st.lines[index] + "\n" + line}
		}
		i++
	}
	return i
}

func (st *parseState) parseAddressGroup(index int) int {
	m := reAddrGroup.FindStringSubmatch(st.lines[index])
	if m == nil {
		return index + 1
	}
	name := st.getNewName(m[1])
	grp := &ir.Group{Name: name, Members: ir.StringSet{}}
	i := index + 1
	for i < len(st.lines) && !isStopLine(strings.ToLower(st.lines[i])) {
		line := st.lines[i]
		switch {
		case strings.Contains(line, "network-object object"):
			parts := strings.Fields(line)
			if len(parts) >= 3 {
				grp.Members.Add(st.getNewName(parts[2]))
			}
		case strings.Contains(line, "network-object host"):
			parts := strings.Fields(line)
			if len(parts) >= 3 {
				ipName := "host_" + parts[2]
				if !st.cfg.HasAddress(ipName) {
					st.cfg.Addresses[ipName] = &ir.Address{Name: ipName, Type: ir.AddressHost, Value1: parts[2]}
				}
				grp.Members.Add(ipName)
			}
		case strings.Contains(line, "network-object"):
			parts := strings.Fields(line)
			if len(parts) >= 3 {
				ip, mask := parts[1], parts[2]
				cidr := textutil.MaskToCIDR(mask)
				netName := fmt.Sprintf("net_%s_%s", ip, cidr)
				if !st.cfg.HasAddress(netName) {
					st.cfg.Addresses[netName] = &ir.Address{Name: netName, Type: ir.AddressNetwork, Value1: ip, Value2: cidr}
				}
				grp.Members.Add(netName)
			}
		}
		i++
	}
	st.cfg.AddressGroups[name] = grp
	return i
}

func (st *parseState) parseServiceGroup(index int) int {
	m := reSvcGroup.FindStringSubmatch(st.lines[index])
	if m == nil {
		return index + 1
	}
	name := st.getNewName(m[1])
	defaultProto := ""
	if len(m) > 2 {
		defaultProto = m[2]
	}
	grp := &ir.ServiceGroup{Name: name, Members: ir.StringSet{}}
	i := index + 1
	for i < len(st.lines) && !isStopLine(strings.ToLower(st.lines[i])) {
		line := st.lines[i]
		switch {
		case strings.Contains(line, "service-object object"):
			parts := strings.Fields(line)
			if len(parts) >= 3 {
				grp.Members.Add(st.getNewName(parts[2]))
			}
		case strings.Contains(line, "group-object"):
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				grp.Members.Add(st.getNewName(parts[1]))
			}
		case strings.Contains(line, "port-object") && defaultProto != "":
			if m := rePortObject.FindStringSubmatch(line); m != nil {
				op, val := m[1], m[2]
				svcName := fmt.Sprintf("%s_%s", strings.ToUpper(defaultProto), strings.ReplaceAll(val, " ", "-"))
				st.cfg.Services[svcName] = &ir.Service{Name: svcName, Protocol: ir.Protocol(defaultProto), Port: op + " " + val}
				grp.Members.Add(svcName)
			}
		case strings.Contains(line, "service-object"):
			if m := reSvcObjMatch.FindStringSubmatch(line); m != nil {
				proto, op, val := m[1], m[2], m[3]
				svcName := fmt.Sprintf("%s_%s", strings.ToUpper(proto), strings.ReplaceAll(val, " ", "-"))
				st.cfg.Services[svcName] = &ir.Service{Name: svcName, Protocol: ir.Protocol(proto), Port: op + " " + val}
				grp.Members.Add(svcName)
			}
		}
		i++
	}
	st.cfg.ServiceGroups[name] = grp
	return i
}

// consumeAddress returns the next address token plus the remaining tokens;
// it is the single source of truth for ASA's address grammar, grounded on
// the vsol line-profile sub-parsers' token-popping style.
func consumeAddress(tokens []string) (string, []string) {
	if len(tokens) == 0 {
		return "", tokens
	}
	kw := tokens[0]
	switch {
	case kw == "any" || kw == "any4":
		return "any", tokens[1:]
	case kw == "host" && len(tokens) >= 2:
		return "host " + tokens[1], tokens[2:]
	case kw == "object-group" && len(tokens) >= 2:
		return "object-group " + tokens[1], tokens[2:]
	case kw == "object" && len(tokens) >= 2:
		return "object " + tokens[1], tokens[2:]
	case reIPMask.MatchString(kw):
		if len(tokens) >= 2 && reIPMask.MatchString(tokens[1]) {
			return tokens[0] + " " + tokens[1], tokens[2:]
		}
		return "host " + tokens[0], tokens[1:]
	}
	return "", tokens
}

func (st *parseState) parseAddressPart(partStr string) string {
	if partStr == "" {
		return ""
	}
	parts := strings.Fields(partStr)
	switch {
	case parts[0] == "any":
		return "any"
	case parts[0] == "host":
		ip := parts[1]
		name := "host_" + ip
		if !st.cfg.HasAddress(name) {
			st.cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressHost, Value1: ip}
		}
		return name
	case parts[0] == "object-group" || parts[0] == "object":
		return st.getNewName(parts[1])
	case len(parts) == 2:
		ip, mask := parts[0], parts[1]
		cidr := textutil.MaskToCIDR(mask)
		name := fmt.Sprintf("net_%s_%s", ip, cidr)
		if !st.cfg.HasAddress(name) {
			st.cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressNetwork, Value1: ip, Value2: cidr}
		}
		return name
	}
	return ""
}

func (st *parseState) parseRule(line, remark string) {
	isEnabled := !strings.HasSuffix(strings.TrimSpace(line), "inactive")
	var timeRangeName string
	if m := reRuleTimeRng.FindStringSubmatch(line); m != nil {
		timeRangeName = st.getNewName(m[1])
	}

	hitCount := 0
	if m := reHitCount.FindStringSubmatch(line); m != nil {
		hitCount, _ = strconv.Atoi(m[1])
		line = strings.Replace(line, m[0], "", 1)
	}

	cleanLine := strings.TrimSpace(reCleanRule.ReplaceAllString(line, ""))
	parts := strings.Fields(cleanLine)
	extIdx := indexOf(parts, "extended")
	if len(parts) < 5 || extIdx < 0 {
		return
	}

	aclName := parts[1]
	actionRaw := strings.ToLower(parts[extIdx+1])
	action := ir.ActionDeny
	if actionRaw == "permit" {
		action = ir.ActionAllow
	}

	tokens := append([]string{}, parts[extIdx+2:]...)
	srcInterface := strings.TrimSuffix(strings.TrimSuffix(aclName, "_access_in"), "_in")
	if len(tokens) == 0 {
		return
	}

	protoOrGrp := tokens[0]
	tokens = tokens[1:]
	var svcGroupName, proto string
	if protoOrGrp == "object-group" || protoOrGrp == "object" {
		if len(tokens) == 0 {
			return
		}
		svcGroupName = st.getNewName(tokens[0])
		tokens = tokens[1:]
	} else {
		proto = protoOrGrp
	}

	srcStr, tokens := consumeAddress(tokens)
	dstStr, tokens := consumeAddress(tokens)
	if srcStr == "" || dstStr == "" {
		return
	}

	seqID := st.nextRuleSeqPeek()
	rule := ir.NewRule(seqID, fmt.Sprintf("%s-%d", aclName, seqID), action)
	rule.Remark = remark
	rule.Enabled = isEnabled
	rule.TimeRange = timeRangeName
	rule.SourceInterface.Add(srcInterface)
	rule.OriginalText = strings.TrimSpace(line)
	rule.HitCount = hitCount

	if s := st.parseAddressPart(srcStr); s != "" {
		rule.Source.Add(s)
	}
	if d := st.parseAddressPart(dstStr); d != "" {
		rule.Destination.Add(d)
	}

	if svcGroupName != "" {
		rule.Service.Add(svcGroupName)
	} else {
		svcStr := strings.TrimSpace(strings.Join(tokens, " "))
		switch {
		case svcStr != "" && strings.HasPrefix(svcStr, "object-group"):
			rule.Service.Add(st.getNewName(strings.Fields(svcStr)[1]))
		case svcStr != "":
			svcName := fmt.Sprintf("%s_%s", strings.ToUpper(proto), strings.ReplaceAll(svcStr, " ", "-"))
			if !st.cfg.HasService(svcName) {
				st.cfg.Services[svcName] = &ir.Service{Name: svcName, Protocol: ir.Protocol(proto), Port: svcStr}
			}
			rule.Service.Add(svcName)
		case strings.ToLower(proto) == "ip":
			if !st.cfg.HasService("IP") {
				st.cfg.Services["IP"] = &ir.Service{Name: "IP", Protocol: ir.ProtoIP}
			}
			rule.Service.Add("IP")
		default:
			name := strings.ToUpper(proto)
			if !st.cfg.HasService(name) {
				st.cfg.Services[name] = &ir.Service{Name: name, Protocol: ir.Protocol(proto)}
			}
			rule.Service.Add(name)
		}
	}

	if len(rule.Source) > 0 && len(rule.Destination) > 0 && len(rule.Service) > 0 {
		st.cfg.Rules = append(st.cfg.Rules, rule)
		st.ruleSeq = seqID
	}
}

// nextRuleSeqPeek returns the sequence id a successfully-parsed rule would
// take, without committing the counter (the Python original only advances
// its counter on a successful parse).
func (st *parseState) nextRuleSeqPeek() int {
	return st.ruleSeq + 1
}

func indexOf(parts []string, target string) int {
	for i, p := range parts {
		if p == target {
			return i
		}
	}
	return -1
}

func (st *parseState) parseNatRuleLine(line string) {
	isEnabled := !strings.Contains(line, "inactive")

	if m := reTwiceNat.FindStringSubmatch(line); m != nil {
		srcIntf, dstIntf, origSrc, mappedSrc, origDst, mappedDst := m[1], m[2], m[3], m[4], m[5], m[6]
		nat := ir.NewNatRule(st.nextNatSeq(), fmt.Sprintf("TwiceNAT_%s_%s", origSrc, origDst))
		nat.SourceInterface.Add(strings.TrimSpace(srcIntf))
		nat.DestinationInterface.Add(strings.TrimSpace(dstIntf))
		nat.OriginalSource.Add(st.getNewName(origSrc))
		nat.TranslatedSource = st.getNewName(mappedSrc)
		nat.OriginalDestination.Add(st.getNewName(origDst))
		nat.TranslatedDestination = st.getNewName(mappedDst)
		nat.Enabled = isEnabled
		nat.OriginalText = line
		st.cfg.NatRules = append(st.cfg.NatRules, nat)
		return
	}

	if m := reStaticNat.FindStringSubmatch(line); m != nil {
		srcIntf, dstIntf, origSrc, mappedSrc, unidirectional := m[1], m[2], m[3], strings.TrimSpace(m[4]), m[5]
		nat := ir.NewNatRule(st.nextNatSeq(), "StaticNAT_"+origSrc)
		nat.SourceInterface.Add(strings.TrimSpace(srcIntf))
		nat.DestinationInterface.Add(strings.TrimSpace(dstIntf))
		nat.OriginalSource.Add(st.getNewName(origSrc))
		nat.TranslatedSource = st.getNewName(mappedSrc)
		nat.Enabled = isEnabled
		nat.OriginalText = line
		st.cfg.NatRules = append(st.cfg.NatRules, nat)

		if unidirectional == "" {
			rev := ir.NewNatRule(st.nextNatSeq(), "StaticNAT_Reverse_"+origSrc)
			rev.SourceInterface.Add(strings.TrimSpace(dstIntf))
			rev.DestinationInterface.Add(strings.TrimSpace(srcIntf))
			rev.OriginalDestination.Add(st.getNewName(mappedSrc))
			rev.TranslatedDestination = st.getNewName(origSrc)
			rev.Enabled = isEnabled
			rev.OriginalText = "! Auto-generated reverse NAT for " + origSrc
			st.cfg.NatRules = append(st.cfg.NatRules, rev)
		}
		return
	}

	if m := reDynamicPAT.FindStringSubmatch(line); m != nil {
		srcIntf, dstIntf, origSrc := m[1], m[2], m[3]
		nat := ir.NewNatRule(st.nextNatSeq(), "DynamicPAT_"+origSrc)
		nat.SourceInterface.Add(strings.TrimSpace(srcIntf))
		nat.DestinationInterface.Add(strings.TrimSpace(dstIntf))
		nat.OriginalSource.Add(st.getNewName(origSrc))
		nat.TranslatedSource = "dynamic-ip-and-port"
		nat.Enabled = isEnabled
		nat.OriginalText = line
		st.cfg.NatRules = append(st.cfg.NatRules, nat)
		return
	}

	if m := reDynamicNat.FindStringSubmatch(line); m != nil {
		srcIntf, dstIntf, origSrc, mappedSrc := m[1], m[2], m[3], m[4]
		nat := ir.NewNatRule(st.nextNatSeq(), "DynamicNAT_"+origSrc)
		nat.SourceInterface.Add(strings.TrimSpace(srcIntf))
		nat.DestinationInterface.Add(strings.TrimSpace(dstIntf))
		nat.OriginalSource.Add(st.getNewName(origSrc))
		nat.TranslatedSource = st.getNewName(mappedSrc)
		nat.Enabled = isEnabled
		nat.OriginalText = line
		st.cfg.NatRules = append(st.cfg.NatRules, nat)
	}
}
