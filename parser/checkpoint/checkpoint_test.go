package checkpoint

import (
	"context"
	"testing"

	"github.com/fwconvert/fwconvert/ir"
	"github.com/fwconvert/fwconvert/parser"
)

const sampleObjects = `
:network_objects (
(WebServer
	:ipaddr (10.0.0.10)
	:class_name (host)
)
(InsideNet
	:ipaddr (10.0.0.0)
	:netmask (255.255.255.0)
	:class_name (network)
)
)
:services (
(HTTP
	:port (80)
	:class_name (tcp_service)
)
)
`

func TestParseObjectsOnly(t *testing.T) {
	req := parser.Request{Inputs: []parser.Input{{Role: "objects", Data: []byte(sampleObjects)}}}
	cfg, err := Parse(context.Background(), req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !cfg.HasAddress("WebServer") {
		t.Fatal("missing WebServer")
	}
	if a := cfg.Addresses["InsideNet"]; a.Type != ir.AddressNetwork || a.Value2 != "24" {
		t.Fatalf("InsideNet = %+v", a)
	}
	if !cfg.HasService("HTTP") {
		t.Fatal("missing HTTP service")
	}
}

const samplePolicyCSV = "Name,Source,Destination,Service,Action,Enabled,Comments\n" +
	"Allow-Web,WebServer,any,HTTP,Accept,true,test rule\n"

func TestParsePolicyCSV(t *testing.T) {
	req := parser.Request{Inputs: []parser.Input{
		{Role: "objects", Data: []byte(sampleObjects)},
		{Role: "policy", Data: []byte(samplePolicyCSV)},
	}}
	cfg, err := Parse(context.Background(), req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(cfg.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1", len(cfg.Rules))
	}
	if cfg.Rules[0].Action != ir.ActionAllow {
		t.Fatalf("rule action = %v", cfg.Rules[0].Action)
	}
	if !cfg.Rules[0].Source.Has("WebServer") {
		t.Fatalf("rule source = %v", cfg.Rules[0].Source.Sorted())
	}
}

func TestParseMissingObjects(t *testing.T) {
	_, err := Parse(context.Background(), parser.Request{})
	if err == nil {
		t.Fatal("want error for missing objects input")
	}
}
