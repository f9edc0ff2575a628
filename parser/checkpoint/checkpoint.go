// Package checkpoint parses Check Point exports into the IR: a bracketed
// "objects" database dump (network_objects / services tables), CSV policy
// and NAT exports, and an optional Gaia CLI "show configuration" capture.
// Grounded on the original Python CheckpointParser and CheckpointCSVParser.
package checkpoint

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fwconvert/fwconvert/internal/textutil"
	"github.com/fwconvert/fwconvert/ir"
	"github.com/fwconvert/fwconvert/parser"
)

func init() {
	parser.Register(parser.VendorCheckPoint, parser.ParserFunc(Parse))
}

// Parse implements parser.Parser for Check Point exports. The "objects"
// input is required; "policy", "nat", and "show_configuration" are
// optional and contribute additional entities when present.
func Parse(ctx context.Context, req parser.Request) (*ir.FirewallConfig, error) {
	objIn := req.ByRole("objects")
	if objIn == nil {
		return nil, fmt.Errorf("checkpoint: missing required \"objects\" input")
	}
	cfg := ir.New()

	if err := parseObjects(ctx, cfg, string(objIn.Data)); err != nil {
		return cfg, err
	}

	if csvIn := req.ByRole("objects_csv"); csvIn != nil {
		// A ZIP-exported CSV object table is authoritative over the
		// bracketed dump for any name it also defines.
		if err := parseObjectsCSV(cfg, csvIn.Data); err != nil {
			cfg.AddWarning(ir.Warning{Category: "Parser", Message: "objects_csv: " + err.Error(), Severity: ir.SeverityWarning})
		}
	}

	if polIn := req.ByRole("policy"); polIn != nil {
		if err := parsePolicyCSV(cfg, polIn.Data); err != nil {
			cfg.AddWarning(ir.Warning{Category: "Parser", Message: "policy: " + err.Error(), Severity: ir.SeverityWarning})
		}
	}

	if natIn := req.ByRole("nat"); natIn != nil {
		if err := parseNatCSV(cfg, natIn.Data); err != nil {
			cfg.AddWarning(ir.Warning{Category: "Parser", Message: "nat: " + err.Error(), Severity: ir.SeverityWarning})
		}
	}

	if showIn := req.ByRole("show_configuration"); showIn != nil {
		parseShowConfiguration(cfg, string(showIn.Data))
	}

	return cfg, ctx.Err()
}

// --- Bracketed objects database -------------------------------------------

// parseObjects walks the Lisp-like `:tablename (...)` dump looking for
// network_objects and services, each a sequence of `(name (...))` blocks.
func parseObjects(ctx context.Context, cfg *ir.FirewallConfig, text string) error {
	for _, table := range []string{"network_objects", "services"} {
		idx := strings.Index(text, ":"+table+" (")
		if idx < 0 {
			continue
		}
		start := idx + len(":"+table+" (")
		end := findClosingParen(text, start-1)
		if end < 0 {
			continue
		}
		body := text[start:end]
		i := 0
		for i < len(body) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			open := strings.IndexByte(body[i:], '(')
			if open < 0 {
				break
			}
			blockStart := i + open
			blockEnd := findClosingParen(body, blockStart)
			if blockEnd < 0 {
				break
			}
			createObjectFromBlock(cfg, body[blockStart+1:blockEnd])
			i = blockEnd + 1
		}
	}
	return nil
}

// findClosingParen returns the index of the ')' matching the '(' at
// openIdx, or -1 if unbalanced.
func findClosingParen(s string, openIdx int) int {
	depth := 0
	for i := openIdx; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// fieldValue extracts `:key (value)` from a bracketed object block.
func fieldValue(block, key string) string {
	marker := ":" + key + " ("
	idx := strings.Index(block, marker)
	if idx < 0 {
		return ""
	}
	start := idx + len(marker)
	end := findClosingParen(block, start-1)
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(block[start:end])
}

func createObjectFromBlock(cfg *ir.FirewallConfig, block string) {
	nameEnd := strings.IndexAny(block, " \t\n")
	if nameEnd < 0 {
		return
	}
	name := strings.TrimSpace(block[:nameEnd])
	class := fieldValue(block, "class_name")

	switch class {
	case "host":
		cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressHost, Value1: fieldValue(block, "ipaddr")}
	case "network":
		ip := fieldValue(block, "ipaddr")
		mask := fieldValue(block, "netmask")
		cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressNetwork, Value1: ip, Value2: textutil.MaskToCIDR(mask)}
	case "address_range":
		cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressRange, Value1: fieldValue(block, "ipaddr_first"), Value2: fieldValue(block, "ipaddr_last")}
	case "dns_domain", "wildcard":
		cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressFQDN, Value1: name}
	case "group":
		members := strings.Fields(fieldValue(block, "members"))
		cfg.AddressGroups[name] = &ir.Group{Name: name, Members: ir.NewStringSet(members...)}
	case "tcp_service":
		cfg.Services[name] = &ir.Service{Name: name, Protocol: ir.ProtoTCP, Port: "eq " + fieldValue(block, "port")}
	case "udp_service":
		cfg.Services[name] = &ir.Service{Name: name, Protocol: ir.ProtoUDP, Port: "eq " + fieldValue(block, "port")}
	case "icmp_service":
		cfg.Services[name] = &ir.Service{Name: name, Protocol: ir.ProtoICMP}
	case "rpc_service", "other_service", "icmpv6_service":
		cfg.Services[name] = &ir.Service{Name: name, Protocol: ir.ProtoOther}
	case "service_group":
		members := strings.Fields(fieldValue(block, "members"))
		cfg.ServiceGroups[name] = &ir.ServiceGroup{Name: name, Members: ir.NewStringSet(members...)}
	}
}

// --- ZIP-exported object CSV (authoritative override) --------------------

func parseObjectsCSV(cfg *ir.FirewallConfig, data []byte) error {
	rows, header, err := readCSV(data)
	if err != nil {
		return err
	}
	nameIdx, typeIdx, ipIdx, maskIdx := col(header, "Name"), col(header, "Type"), col(header, "IP Address"), col(header, "Netmask")
	if nameIdx < 0 {
		return fmt.Errorf("objects_csv: missing Name column")
	}
	for _, row := range rows {
		name := rowAt(row, nameIdx)
		if name == "" {
			continue
		}
		typ := strings.ToLower(rowAt(row, typeIdx))
		ip := rowAt(row, ipIdx)
		mask := rowAt(row, maskIdx)
		switch {
		case strings.Contains(typ, "network"):
			cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressNetwork, Value1: ip, Value2: textutil.MaskToCIDR(mask)}
		case ip != "":
			cfg.Addresses[name] = &ir.Address{Name: name, Type: ir.AddressHost, Value1: ip}
		}
	}
	return nil
}

// --- CSV policy/NAT exports ------------------------------------------------

func parsePolicyCSV(cfg *ir.FirewallConfig, data []byte) error {
	rows, header, err := readCSV(data)
	if err != nil {
		return err
	}
	srcIdx, dstIdx, svcIdx, actionIdx, nameIdx, commentIdx, enabledIdx :=
		col(header, "Source"), col(header, "Destination"), col(header, "Service"),
		col(header, "Action"), col(header, "Name"), col(header, "Comments"), col(header, "Enabled")

	seq := 0
	for _, row := range rows {
		seq++
		name := rowAt(row, nameIdx)
		if name == "" {
			name = fmt.Sprintf("rule-%d", seq)
		}
		action := ir.ActionDeny
		if strings.EqualFold(rowAt(row, actionIdx), "accept") {
			action = ir.ActionAllow
		}
		rule := ir.NewRule(seq, name, action)
		rule.Remark = rowAt(row, commentIdx)
		rule.Enabled = !strings.EqualFold(rowAt(row, enabledIdx), "false")
		for _, m := range splitMembers(rowAt(row, srcIdx)) {
			rule.Source.Add(m)
		}
		for _, m := range splitMembers(rowAt(row, dstIdx)) {
			rule.Destination.Add(m)
		}
		for _, m := range splitMembers(rowAt(row, svcIdx)) {
			rule.Service.Add(m)
		}
		if len(rule.Source) == 0 {
			rule.Source.Add("any")
		}
		if len(rule.Destination) == 0 {
			rule.Destination.Add("any")
		}
		if len(rule.Service) == 0 {
			rule.Service.Add("any")
		}
		cfg.Rules = append(cfg.Rules, rule)
	}
	return nil
}

func parseNatCSV(cfg *ir.FirewallConfig, data []byte) error {
	rows, header, err := readCSV(data)
	if err != nil {
		return err
	}
	srcIdx, dstIdx, svcIdx := col(header, "Original Source"), col(header, "Original Destination"), col(header, "Original Service")
	tSrcIdx, tDstIdx, tSvcIdx := col(header, "Translated Source"), col(header, "Translated Destination"), col(header, "Translated Service")

	seq := 0
	for _, row := range rows {
		seq++
		nat := ir.NewNatRule(seq, fmt.Sprintf("nat-%d", seq))
		for _, m := range splitMembers(rowAt(row, srcIdx)) {
			nat.OriginalSource.Add(m)
		}
		for _, m := range splitMembers(rowAt(row, dstIdx)) {
			nat.OriginalDestination.Add(m)
		}
		for _, m := range splitMembers(rowAt(row, svcIdx)) {
			nat.OriginalService.Add(m)
		}
		nat.TranslatedSource = rowAt(row, tSrcIdx)
		nat.TranslatedDestination = rowAt(row, tDstIdx)
		nat.TranslatedService = rowAt(row, tSvcIdx)
		cfg.NatRules = append(cfg.NatRules, nat)
	}
	return nil
}

func splitMembers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readCSV(data []byte) (rows [][]string, header []string, err error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil && err != io.EOF {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[1:], all[0], nil
}

func col(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func rowAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// --- Gaia CLI "show configuration" (supplemented feature) -----------------

// parseShowConfiguration extracts interfaces and static routes from a Gaia
// CLI capture, the way the ASA parser extracts them from ASA CLI text.
func parseShowConfiguration(cfg *ir.FirewallConfig, text string) {
	var current *ir.Interface
	for _, raw := range strings.Split(text, "\n") {
		line := textutil.CleanCLILine(raw)
		switch {
		case strings.HasPrefix(line, "set interface "):
			parts := strings.Fields(line)
			if len(parts) < 3 {
				continue
			}
			name := parts[2]
			iface, ok := cfg.Interfaces[name]
			if !ok {
				iface = &ir.Interface{Name: name}
				cfg.Interfaces[name] = iface
			}
			current = iface
			if idx := indexOfToken(parts, "ipv4-address"); idx >= 0 && idx+1 < len(parts) {
				current.IPAddress = parts[idx+1]
			}
			if idx := indexOfToken(parts, "mask-length"); idx >= 0 && idx+1 < len(parts) {
				if v, err := strconv.Atoi(parts[idx+1]); err == nil {
					current.MaskLength = v
				}
			}
		case strings.HasPrefix(line, "set static-route "):
			parts := strings.Fields(line)
			if len(parts) < 3 {
				continue
			}
			dest := parts[2]
			nextHopIdx := indexOfToken(parts, "next-hop")
			var nextHop string
			if nextHopIdx >= 0 {
				if gwIdx := indexOfToken(parts, "gateway"); gwIdx >= 0 && gwIdx+1 < len(parts) {
					nextHop = parts[gwIdx+1]
				}
			}
			cfg.StaticRoutes = append(cfg.StaticRoutes, &ir.StaticRoute{
				Destination: dest,
				NextHop:     nextHop,
				RouteType:   ir.RouteStatic,
			})
		}
	}
	_ = current
}

func indexOfToken(parts []string, tok string) int {
	for i, p := range parts {
		if p == tok {
			return i
		}
	}
	return -1
}
