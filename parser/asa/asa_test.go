package asa

import (
	"context"
	"strings"
	"testing"

	"github.com/fwconvert/fwconvert/ir"
	"github.com/fwconvert/fwconvert/parser"
)

const sampleConfig = `
interface GigabitEthernet0/0
 nameif outside
 ip address 203.0.113.1 255.255.255.248
interface GigabitEthernet0/1
 nameif inside
 ip address 10.0.0.1 255.255.255.0
object network WEB-SERVER
 host 10.0.0.10
object network WEB-SERVER
 nat (inside,outside) static 203.0.113.10
access-list inside_access_in extended permit tcp any host 10.0.0.10 eq 80
route outside 0.0.0.0 0.0.0.0 203.0.113.254 1
`

func TestParseBasic(t *testing.T) {
	req := parser.Request{Inputs: []parser.Input{{Role: "config", Data: []byte(sampleConfig)}}}
	cfg, err := Parse(context.Background(), req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(cfg.Interfaces) != 2 {
		t.Fatalf("len(Interfaces) = %d, want 2", len(cfg.Interfaces))
	}
	inside, ok := cfg.Interfaces["GigabitEthernet0/1"]
	if !ok {
		t.Fatal("missing inside interface")
	}
	if inside.Zone != "inside" || inside.MaskLength != 24 {
		t.Fatalf("inside interface = %+v", inside)
	}

	if !cfg.HasAddress("WEB-SERVER") {
		t.Fatal("missing WEB-SERVER address object")
	}

	if len(cfg.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1", len(cfg.Rules))
	}
	rule := cfg.Rules[0]
	if rule.Action != ir.ActionAllow {
		t.Fatalf("rule.Action = %v, want allow", rule.Action)
	}
	if !rule.Source.Has("any") {
		t.Fatalf("rule.Source = %v, want any", rule.Source.Sorted())
	}

	if len(cfg.NatRules) != 1 {
		t.Fatalf("len(NatRules) = %d, want 1", len(cfg.NatRules))
	}

	if len(cfg.StaticRoutes) != 1 {
		t.Fatalf("len(StaticRoutes) = %d, want 1", len(cfg.StaticRoutes))
	}
	if cfg.StaticRoutes[0].Destination != "0.0.0.0/0" {
		t.Fatalf("route destination = %q", cfg.StaticRoutes[0].Destination)
	}
}

func TestParseMissingInput(t *testing.T) {
	_, err := Parse(context.Background(), parser.Request{})
	if err == nil || !strings.Contains(err.Error(), "missing required") {
		t.Fatalf("Parse() error = %v, want missing required input error", err)
	}
}

func TestParseRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := parser.Request{Inputs: []parser.Input{{Role: "config", Data: []byte(strings.Repeat("object network X\n host 1.1.1.1\n", 300))}}}
	_, err := Parse(ctx, req)
	if err == nil {
		t.Fatal("Parse() with canceled context: want error")
	}
}
