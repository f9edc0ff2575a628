package asa

import (
	"context"
	"strings"
	"testing"

	"github.com/fwconvert/fwconvert/generator"
	"github.com/fwconvert/fwconvert/ir"
)

func TestGenerateBasic(t *testing.T) {
	cfg := ir.New()
	cfg.Interfaces["GigabitEthernet0/1"] = &ir.Interface{Name: "GigabitEthernet0/1", Zone: "inside", IPAddress: "10.0.0.1", MaskLength: 24}
	cfg.Addresses["WEB"] = &ir.Address{Name: "WEB", Type: ir.AddressHost, Value1: "10.0.0.10"}

	rule := ir.NewRule(1, "r1", ir.ActionAllow)
	rule.SourceInterface.Add("inside")
	rule.Source.Add("any")
	rule.Destination.Add("WEB")
	rule.Service.Add("HTTP")
	cfg.Rules = []*ir.Rule{rule}

	out, _, err := Generate(context.Background(), cfg, generator.Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "nameif inside") {
		t.Fatalf("missing nameif in output:\n%s", text)
	}
	if !strings.Contains(text, "object network WEB") {
		t.Fatalf("missing object network WEB in output:\n%s", text)
	}
	if !strings.Contains(text, "access-list inside_access_in extended permit") {
		t.Fatalf("missing access-list in output:\n%s", text)
	}
}
