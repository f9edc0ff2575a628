package convert

import (
	"context"
	"strings"
	"testing"

	_ "github.com/fwconvert/fwconvert/generator/asa"
	_ "github.com/fwconvert/fwconvert/generator/fortinet"
	"github.com/fwconvert/fwconvert/parser"
	_ "github.com/fwconvert/fwconvert/parser/asa"
)

const sampleASAConfig = `
interface GigabitEthernet0/1
 nameif inside
 ip address 10.0.0.1 255.255.255.0
object network WEB-SERVER
 host 10.0.0.10
access-list inside_access_in extended permit tcp any host 10.0.0.10 eq 80
`

func TestRunASAToFortinet(t *testing.T) {
	req := Request{
		SourceVendor: parser.VendorASA,
		TargetVendor: parser.VendorFortinet,
		Inputs:       []parser.Input{{Role: "config", Data: []byte(sampleASAConfig)}},
	}
	res, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Config == nil || len(res.Config.Rules) != 1 {
		t.Fatalf("Config = %+v", res.Config)
	}
	if res.Analysis.OverallScore == 0 {
		t.Fatalf("Analysis = %+v, want nonzero overall score", res.Analysis)
	}
	if !strings.Contains(string(res.Output), "config firewall policy") {
		t.Fatalf("Output missing policy block:\n%s", res.Output)
	}
}

func TestRunUnknownVendor(t *testing.T) {
	_, err := Run(context.Background(), Request{SourceVendor: "nope", TargetVendor: parser.VendorFortinet})
	if err == nil {
		t.Fatal("want error for unregistered source vendor")
	}
}
