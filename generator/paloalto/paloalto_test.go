package paloalto

import (
	"context"
	"strings"
	"testing"

	"github.com/fwconvert/fwconvert/generator"
	"github.com/fwconvert/fwconvert/ir"
)

func TestGenerateICMPServiceSplit(t *testing.T) {
	cfg := ir.New()
	cfg.Addresses["WEB"] = &ir.Address{Name: "WEB", Type: ir.AddressHost, Value1: "10.0.0.10"}

	rule := ir.NewRule(1, "mixed-rule", ir.ActionAllow)
	rule.Destination.Add("WEB")
	rule.Service.Add("tcp-8080")
	rule.Service.Add("icmp")
	cfg.Rules = []*ir.Rule{rule}

	out, _, err := Generate(context.Background(), cfg, generator.Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "rules mixed-rule-app") || !strings.Contains(text, "rules mixed-rule-svc") {
		t.Fatalf("expected ICMP/port-service split rules:\n%s", text)
	}
	if !strings.Contains(text, "mixed-rule-app application [ icmp ]") {
		t.Fatalf("expected -app rule to carry icmp as application:\n%s", text)
	}
	if !strings.Contains(text, "mixed-rule-svc service tcp-8080") {
		t.Fatalf("expected -svc rule to carry tcp-8080 as an explicit service:\n%s", text)
	}
}

func TestGenerateICMPOnlyServiceEmitsOnlyAppRule(t *testing.T) {
	cfg := ir.New()
	rule := ir.NewRule(1, "ping-rule", ir.ActionAllow)
	rule.Service.Add("icmp")
	cfg.Rules = []*ir.Rule{rule}

	out, _, err := Generate(context.Background(), cfg, generator.Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	text := string(out)
	if strings.Contains(text, "ping-rule-svc") {
		t.Fatalf("ICMP-only rule should not emit a -svc rule:\n%s", text)
	}
	if !strings.Contains(text, "rules ping-rule application [ icmp ]") {
		t.Fatalf("expected unsplit rule to carry icmp as application:\n%s", text)
	}
}

func TestGenerateWildcardFQDNRewrite(t *testing.T) {
	cfg := ir.New()
	cfg.Addresses["WildSite"] = &ir.Address{Name: "WildSite", Type: ir.AddressFQDN, Value1: "*.example.com"}

	rule := ir.NewRule(1, "web-rule", ir.ActionAllow)
	rule.Destination.Add("WildSite")
	rule.Service.Add("service-https")
	cfg.Rules = []*ir.Rule{rule}

	out, warnings, err := Generate(context.Background(), cfg, generator.Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	text := string(out)
	if !strings.Contains(text, `custom-url-category "WildSite" list [ "*.example.com" ]`) {
		t.Fatalf("expected URL category rewrite named after the object:\n%s", text)
	}
	if !strings.Contains(text, `category [ "WildSite" ]`) {
		t.Fatalf("expected the rule to reference the category:\n%s", text)
	}
	if !strings.Contains(text, "destination any") {
		t.Fatalf("expected the wildcard object stripped from destination, leaving any:\n%s", text)
	}
	if strings.Contains(text, "destination WildSite") {
		t.Fatalf("wildcard category object must not appear in a destination list:\n%s", text)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning about the wildcard fqdn rewrite")
	}
}

func TestGenerateDNATDestinationRewrite(t *testing.T) {
	cfg := ir.New()
	nat := ir.NewNatRule(1, "dnat1")
	nat.OriginalDestination.Add("EXT-IP")
	nat.TranslatedDestination = "INT-SRV"
	cfg.NatRules = []*ir.NatRule{nat}

	// The security rule is written against the translated (internal)
	// address, the way an admin reading post-NAT traffic would; the
	// generator must rewrite it to the original (external) address.
	rule := ir.NewRule(1, "inbound", ir.ActionAllow)
	rule.Destination.Add("INT-SRV")
	rule.Service.Add("service-https")
	cfg.Rules = []*ir.Rule{rule}

	out, warnings, err := Generate(context.Background(), cfg, generator.Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "destination EXT-IP") {
		t.Fatalf("expected destination rewritten to the original destination EXT-IP:\n%s", text)
	}
	if strings.Contains(text, "destination INT-SRV") {
		t.Fatalf("translated destination must not leak into the security rule:\n%s", text)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a DNAT rewrite warning")
	}
}

func TestGeneratePanoramaPrefixes(t *testing.T) {
	cfg := ir.New()
	cfg.Addresses["WEB"] = &ir.Address{Name: "WEB", Type: ir.AddressHost, Value1: "10.0.0.10"}
	rule := ir.NewRule(1, "allow-web", ir.ActionAllow)
	rule.Destination.Add("WEB")
	rule.Service.Add("service-https")
	cfg.Rules = []*ir.Rule{rule}

	out, _, err := Generate(context.Background(), cfg, generator.Options{DeviceGroup: "DG1", Template: "T1"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	text := string(out)
	if !strings.Contains(text, `set device-group "DG1" address WEB`) {
		t.Fatalf("expected device-group scoped object line:\n%s", text)
	}
	if !strings.Contains(text, `set device-group "DG1" pre-rulebase security rules allow-web`) {
		t.Fatalf("expected pre-rulebase scoped rule line:\n%s", text)
	}
}

func TestGenerateStandaloneUsesRulebase(t *testing.T) {
	cfg := ir.New()
	rule := ir.NewRule(1, "allow-any", ir.ActionAllow)
	cfg.Rules = []*ir.Rule{rule}

	out, _, err := Generate(context.Background(), cfg, generator.Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "set rulebase security rules allow-any") {
		t.Fatalf("expected standalone rulebase scoping:\n%s", text)
	}
}
