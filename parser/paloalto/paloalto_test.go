package paloalto

import (
	"context"
	"testing"

	"github.com/fwconvert/fwconvert/ir"
	"github.com/fwconvert/fwconvert/parser"
)

const sampleConfig = `
set address WEB-SRV ip-netmask 10.0.0.10/32
set service-group WEB-SVCS members [ service-http service-https ]
set zone trust network layer3 [ ethernet1/1 ]
set network interface ethernet1/1 layer3 ip 10.0.0.1/24
set rulebase security rules allow-web from trust
set rulebase security rules allow-web to untrust
set rulebase security rules allow-web source any
set rulebase security rules allow-web destination WEB-SRV
set rulebase security rules allow-web service service-http
set rulebase security rules allow-web action allow
`

func TestParseBasic(t *testing.T) {
	req := parser.Request{Inputs: []parser.Input{{Role: "config", Data: []byte(sampleConfig)}}}
	cfg, err := Parse(context.Background(), req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !cfg.HasAddress("WEB-SRV") {
		t.Fatal("missing WEB-SRV")
	}
	if _, ok := cfg.ServiceGroups["WEB-SVCS"]; !ok {
		t.Fatal("missing WEB-SVCS service group")
	}
	iface, ok := cfg.Interfaces["ethernet1/1"]
	if !ok || iface.Zone != "trust" || iface.MaskLength != 24 {
		t.Fatalf("interface = %+v", iface)
	}
	if len(cfg.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1", len(cfg.Rules))
	}
	rule := cfg.Rules[0]
	if rule.Action != ir.ActionAllow || !rule.Destination.Has("WEB-SRV") {
		t.Fatalf("rule = %+v", rule)
	}
	if !cfg.HasService("service-http") {
		t.Fatal("expected default service-http to be materialized from the fallback table")
	}
}
