// Package checkpoint generates Check Point dbedit-style configuration
// script text from the IR: object creation commands followed by a
// policy rule base, the way Check Point management scripts are
// typically authored for bulk import.
package checkpoint

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
	generator.Register(parser.VendorCheckPoint, generator.GeneratorFunc(Generate))
}

// Generate implements generator.Generator for Check Point dbedit output.
func Generate(ctx context.Context, cfg *ir.FirewallConfig, opts generator.Options) ([]byte, []ir.Warning, error) {
	var b strings.Builder
	var warnings []ir.Warning

	for _, name := range cfg.SortedAddressNames() {
		if ctx.Err() != nil {
			return nil, warnings, ctx.Err()
		}
		addr := cfg.Addresses[name]
		switch addr.Type {
		case ir.AddressHost:
			fmt.Fprintf(&b, "create host_plain %s\nmodify network_objects %s ipaddr %s\n", addr.Name, addr.Name, addr.Value1)
		case ir.AddressNetwork:
			mask := cidrToMaskString(addr.Value2)
			fmt.Fprintf(&b, "create network %s\nmodify network_objects %s ipaddr %s\nmodify network_objects %s netmask %s\n", addr.Name, addr.Name, addr.Value1, addr.Name, mask)
		case ir.AddressRange:
			fmt.Fprintf(&b, "create address_range %s\nmodify network_objects %s ipaddr_first %s\nmodify network_objects %s ipaddr_last %s\n", addr.Name, addr.Name, addr.Value1, addr.Name, addr.Value2)
		case ir.AddressFQDN:
			fmt.Fprintf(&b, "create dns_domain %s\nmodify network_objects %s domain_name \"%s\"\n", addr.Name, addr.Name, addr.Value1)
			warnings = append(warnings, ir.Warning{
				Category: "Generator", Message: fmt.Sprintf("fqdn address %q emitted as a DNS domain object; verify wildcard semantics on the target", addr.Name),
				Severity: ir.SeverityInfo, RuleID: addr.Name,
			})
		}
		b.WriteString("update_all\n")
	}

	for _, name := range cfg.SortedAddressGroupNames() {
		grp := cfg.AddressGroups[name]
		fmt.Fprintf(&b, "create group %s\n", grp.Name)
		for _, m := range grp.Members.Sorted() {
			fmt.Fprintf(&b, "addelement network_objects %s \"\" network_objects:%s\n", grp.Name, m)
		}
		b.WriteString("update_all\n")
	}

	for _, name := range cfg.SortedServiceNames() {
		svc := cfg.Services[name]
		switch svc.Protocol {
		case ir.ProtoTCP:
			fmt.Fprintf(&b, "create tcp_service %s\nmodify services %s port %s\n", svc.Name, svc.Name, portOnly(svc.Port))
		case ir.ProtoUDP:
			fmt.Fprintf(&b, "create udp_service %s\nmodify services %s port %s\n", svc.Name, svc.Name, portOnly(svc.Port))
		case ir.ProtoICMP:
			fmt.Fprintf(&b, "create icmp_service %s\n", svc.Name)
		default:
			fmt.Fprintf(&b, "create other_service %s\n", svc.Name)
		}
		b.WriteString("update_all\n")
	}

	for _, name := range cfg.SortedServiceGroupNames() {
		grp := cfg.ServiceGroups[name]
		fmt.Fprintf(&b, "create service_group %s\n", grp.Name)
		for _, m := range grp.Members.Sorted() {
			fmt.Fprintf(&b, "addelement services %s \"\" services:%s\n", grp.Name, m)
		}
		b.WriteString("update_all\n")
	}

	ir.SortRulesBySequence(cfg.Rules)
	for i, r := range cfg.Rules {
		if !r.Enabled {
			continue
		}
		action := "drop"
		if r.Action == ir.ActionAllow {
			action = "accept"
		}
		fmt.Fprintf(&b, "# rule %d: %s\n", i+1, r.Name)
		fmt.Fprintf(&b, "addelement fw_policy rule_base \"\" rule\n")
		fmt.Fprintf(&b, "rule:%d:src:'%s'\n", i+1, strings.Join(memberList(r.Source), "','"))
		fmt.Fprintf(&b, "rule:%d:dst:'%s'\n", i+1, strings.Join(memberList(r.Destination), "','"))
		fmt.Fprintf(&b, "rule:%d:services:'%s'\n", i+1, strings.Join(memberList(r.Service), "','"))
		fmt.Fprintf(&b, "rule:%d:action:%s\n", i+1, action)
		if r.Remark != "" {
			fmt.Fprintf(&b, "rule:%d:comments:\"%s\"\n", i+1, r.Remark)
		}
	}

	return []byte(b.String()), warnings, ctx.Err()
}

func memberList(s ir.StringSet) []string {
	if len(s) == 0 {
		return []string{"any"}
	}
	return s.Sorted()
}

func portOnly(portSpec string) string {
	fields := strings.Fields(portSpec)
	if len(fields) == 0 {
		return "0"
	}
	return fields[len(fields)-1]
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
