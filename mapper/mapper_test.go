package mapper

import (
	"testing"

	"github.com/fwconvert/fwconvert/ir"
)

func TestApplyRenamesInterfacesAndRules(t *testing.T) {
	cfg := ir.New()
	cfg.Interfaces["inside"] = &ir.Interface{Name: "inside", Zone: "inside"}
	rule := ir.NewRule(1, "r1", ir.ActionAllow)
	rule.SourceInterface.Add("inside")
	rule.Source.Add("any")
	rule.Destination.Add("any")
	rule.Service.Add("any")
	cfg.Rules = []*ir.Rule{rule}

	warnings := Apply(cfg, Mapping{Interfaces: map[string]string{"inside": "port1"}, Zones: map[string]string{"inside": "trust"}})
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if _, ok := cfg.Interfaces["port1"]; !ok {
		t.Fatal("expected renamed interface port1")
	}
	if !rule.SourceInterface.Has("port1") {
		t.Fatalf("rule.SourceInterface = %v, want port1", rule.SourceInterface.Sorted())
	}
	if cfg.Interfaces["port1"].Zone != "trust" {
		t.Fatalf("zone = %q, want trust", cfg.Interfaces["port1"].Zone)
	}
}

func TestApplyWarnsOnDanglingReference(t *testing.T) {
	cfg := ir.New()
	rule := ir.NewRule(1, "r1", ir.ActionAllow)
	rule.SourceInterface.Add("unknown0")
	cfg.Rules = []*ir.Rule{rule}

	warnings := Apply(cfg, Mapping{})
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", warnings)
	}
}
