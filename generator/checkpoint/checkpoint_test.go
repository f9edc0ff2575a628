package checkpoint

import (
	"context"
	"strings"
	"testing"

	"github.com/fwconvert/fwconvert/generator"
	"github.com/fwconvert/fwconvert/ir"
)

func TestGenerateBasic(t *testing.T) {
	cfg := ir.New()
	cfg.Addresses["WEB"] = &ir.Address{Name: "WEB", Type: ir.AddressHost, Value1: "10.0.0.10"}
	cfg.Services["HTTP"] = &ir.Service{Name: "HTTP", Protocol: ir.ProtoTCP, Port: "eq 80"}
	rule := ir.NewRule(1, "r1", ir.ActionAllow)
	rule.Destination.Add("WEB")
	rule.Service.Add("HTTP")
	cfg.Rules = []*ir.Rule{rule}

	out, _, err := Generate(context.Background(), cfg, generator.Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "create host_plain WEB") {
		t.Fatalf("missing host_plain create:\n%s", text)
	}
	if !strings.Contains(text, "create tcp_service HTTP") {
		t.Fatalf("missing tcp_service create:\n%s", text)
	}
	if !strings.Contains(text, "rule:1:action:accept") {
		t.Fatalf("missing rule action:\n%s", text)
	}
}
