package fortinet

import (
	"context"
	"strings"
	"testing"

	"github.com/fwconvert/fwconvert/generator"
	"github.com/fwconvert/fwconvert/ir"
)

func TestGenerateBasic(t *testing.T) {
	cfg := ir.New()
	cfg.Interfaces["port1"] = &ir.Interface{Name: "port1", IPAddress: "10.0.0.1", MaskLength: 24}
	cfg.Addresses["WEB"] = &ir.Address{Name: "WEB", Type: ir.AddressHost, Value1: "10.0.0.10"}
	cfg.Services["HTTP"] = &ir.Service{Name: "HTTP", Protocol: ir.ProtoTCP, Port: "eq 80"}

	rule := ir.NewRule(1, "r1", ir.ActionAllow)
	rule.SourceInterface.Add("port1")
	rule.DestinationInterface.Add("port2")
	rule.Source.Add("all")
	rule.Destination.Add("WEB")
	rule.Service.Add("HTTP")
	cfg.Rules = []*ir.Rule{rule}

	out, _, err := Generate(context.Background(), cfg, generator.Options{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "config firewall policy") {
		t.Fatalf("missing policy block:\n%s", text)
	}
	if !strings.Contains(text, "set tcp-portrange 80") {
		t.Fatalf("missing tcp-portrange:\n%s", text)
	}
	if !strings.Contains(text, "set action accept") {
		t.Fatalf("missing accept action:\n%s", text)
	}
}
