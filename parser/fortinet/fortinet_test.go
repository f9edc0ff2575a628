package fortinet

import (
	"context"
	"testing"

	"github.com/fwconvert/fwconvert/ir"
	"github.com/fwconvert/fwconvert/parser"
)

const sampleConfig = `
config system interface
    edit "port1"
        set ip 10.0.0.1 255.255.255.0
        set description "inside"
    next
end
config firewall address
    edit "WEB-SRV"
        set subnet 10.0.0.10 255.255.255.255
    next
end
config firewall service custom
    edit "WEB-MIXED"
        set tcp-portrange 80
        set udp-portrange 53
    next
end
config firewall policy
    edit 1
        set srcintf "port1"
        set dstintf "port2"
        set srcaddr "all"
        set dstaddr "WEB-SRV"
        set action accept
        set service "WEB-MIXED"
        set nat enable
    next
end
config router static
    edit 1
        set dst 0.0.0.0 0.0.0.0
        set gateway 10.0.0.254
        set device "port1"
    next
end
`

func TestParseBasic(t *testing.T) {
	req := parser.Request{Inputs: []parser.Input{{Role: "config", Data: []byte(sampleConfig)}}}
	cfg, err := Parse(context.Background(), req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if _, ok := cfg.Interfaces["port1"]; !ok {
		t.Fatal("missing port1 interface")
	}
	if !cfg.HasAddress("WEB-SRV") {
		t.Fatal("missing WEB-SRV address")
	}

	if _, ok := cfg.ServiceGroups["WEB-MIXED"]; !ok {
		t.Fatal("expected WEB-MIXED to become a service group after TCP/UDP split")
	}
	if !cfg.HasService("WEB-MIXED_TCP") || !cfg.HasService("WEB-MIXED_UDP") {
		t.Fatal("expected split TCP/UDP services")
	}

	if len(cfg.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1", len(cfg.Rules))
	}
	if cfg.Rules[0].Action != ir.ActionAllow {
		t.Fatalf("rule action = %v, want allow", cfg.Rules[0].Action)
	}

	foundPolicyNAT := false
	for _, n := range cfg.NatRules {
		if n.Name == "PolicyNAT_1" {
			foundPolicyNAT = true
		}
	}
	if !foundPolicyNAT {
		t.Fatal("expected PolicyNAT_1 from nat-enable policy")
	}

	if len(cfg.StaticRoutes) != 1 || cfg.StaticRoutes[0].Destination != "0.0.0.0/0" {
		t.Fatalf("StaticRoutes = %+v", cfg.StaticRoutes)
	}
}
