package analyzer

import (
	"testing"

	"github.com/fwconvert/fwconvert/ir"
)

func rule(seq int, name string, action ir.RuleAction, src, dst, svc string) *ir.Rule {
	r := ir.NewRule(seq, name, action)
	r.Source.Add(src)
	r.Destination.Add(dst)
	r.Service.Add(svc)
	r.Remark = "test rule"
	r.Log = true
	return r
}

func addr(cfg *ir.FirewallConfig, name string, kind ir.AddressKind, v1, v2 string) {
	cfg.Addresses[name] = &ir.Address{Name: name, Type: kind, Value1: v1, Value2: v2}
}

func svc(cfg *ir.FirewallConfig, name string, proto ir.Protocol, port string) {
	cfg.Services[name] = &ir.Service{Name: name, Protocol: proto, Port: port}
}

func TestFindDuplicateAddressObjects(t *testing.T) {
	cfg := ir.New()
	addr(cfg, "WEB1", ir.AddressHost, "10.0.0.1", "")
	addr(cfg, "WEB2", ir.AddressHost, "10.0.0.1", "")
	addr(cfg, "OTHER", ir.AddressHost, "10.0.0.2", "")

	res := Analyze(cfg)
	if len(res.Duplicates) != 1 {
		t.Fatalf("len(Duplicates) = %d, want 1", len(res.Duplicates))
	}
	d := res.Duplicates[0]
	if d.Kind != "address" || d.CanonicalKey != "host:10.0.0.1" {
		t.Fatalf("Duplicates[0] = %+v", d)
	}
	if len(d.Names) != 2 {
		t.Fatalf("Names = %v", d.Names)
	}
}

func TestFindDuplicateServiceObjects(t *testing.T) {
	cfg := ir.New()
	svc(cfg, "HTTP-A", ir.ProtoTCP, "80")
	svc(cfg, "HTTP-B", ir.ProtoTCP, "80")
	svc(cfg, "HTTPS", ir.ProtoTCP, "443")

	res := Analyze(cfg)
	if len(res.Duplicates) != 1 || res.Duplicates[0].Kind != "service" {
		t.Fatalf("Duplicates = %+v", res.Duplicates)
	}
	if res.Duplicates[0].CanonicalKey != "tcp:80" {
		t.Fatalf("CanonicalKey = %q", res.Duplicates[0].CanonicalKey)
	}
}

func TestFindShadowed(t *testing.T) {
	cfg := ir.New()
	broad := rule(1, "broad", ir.ActionDeny, "any", "any", "any")
	narrow := rule(2, "narrow", ir.ActionDeny, "A", "B", "HTTP")
	cfg.Rules = []*ir.Rule{broad, narrow}

	res := Analyze(cfg)
	if len(res.Shadowed) != 1 {
		t.Fatalf("len(Shadowed) = %d, want 1", len(res.Shadowed))
	}
	if res.Shadowed[0].ShadowerName != "broad" || res.Shadowed[0].ShadowedName != "narrow" {
		t.Fatalf("Shadowed = %+v", res.Shadowed[0])
	}
}

func TestShadowIgnoresInterfaces(t *testing.T) {
	// Both rules leave SourceInterface/DestinationInterface empty (never
	// populated by the parser for this traffic); shadow detection must not
	// depend on those fields to flag the pair.
	cfg := ir.New()
	broad := rule(1, "broad", ir.ActionDeny, "any", "any", "any")
	narrow := rule(2, "narrow", ir.ActionDeny, "A", "B", "HTTP")
	cfg.Rules = []*ir.Rule{broad, narrow}

	res := Analyze(cfg)
	if len(res.Shadowed) != 1 {
		t.Fatalf("len(Shadowed) = %d, want 1 (interface fields must not gate shadowing)", len(res.Shadowed))
	}
}

func TestAnyAnyAnyRisk(t *testing.T) {
	cfg := ir.New()
	r := rule(1, "wide-open", ir.ActionAllow, "any", "any", "any")
	cfg.Rules = []*ir.Rule{r}
	res := Analyze(cfg)

	var sevs []RiskSeverity
	for _, f := range res.Risks {
		sevs = append(sevs, f.Severity)
	}
	foundCritical, foundHigh := false, false
	for _, s := range sevs {
		if s == RiskCritical {
			foundCritical = true
		}
		if s == RiskHigh {
			foundHigh = true
		}
	}
	if !foundCritical {
		t.Fatalf("Risks = %+v, want a critical finding", res.Risks)
	}
	if !foundHigh {
		t.Fatalf("Risks = %+v, want a high finding (service any)", res.Risks)
	}
}

func TestRiskFindingsIndependent(t *testing.T) {
	cfg := ir.New()
	r := rule(1, "quiet", ir.ActionAllow, "A", "B", "HTTP")
	r.Log = false
	r.Enabled = false
	r.Remark = ""
	cfg.Rules = []*ir.Rule{r}

	res := Analyze(cfg)
	want := map[RiskSeverity]int{RiskMedium: 1, RiskLow: 2}
	got := map[RiskSeverity]int{}
	for _, f := range res.Risks {
		got[f.Severity]++
	}
	if got[RiskMedium] != want[RiskMedium] || got[RiskLow] != want[RiskLow] {
		t.Fatalf("Risks = %+v, got severities %v", res.Risks, got)
	}
}

func TestEmptyConfigScoresPerfect(t *testing.T) {
	res := Analyze(ir.New())
	if res.OverallScore != 100 {
		t.Fatalf("OverallScore = %v, want 100", res.OverallScore)
	}
}

func TestZeroHitRules(t *testing.T) {
	cfg := ir.New()
	r1 := rule(1, "unused", ir.ActionAllow, "A", "B", "HTTP")
	r1.HitCount = 0
	r2 := rule(2, "used", ir.ActionAllow, "C", "D", "HTTPS")
	r2.HitCount = 42
	cfg.Rules = []*ir.Rule{r1, r2}

	res := Analyze(cfg)
	if len(res.ZeroHit) != 1 || res.ZeroHit[0] != "unused" {
		t.Fatalf("ZeroHit = %v", res.ZeroHit)
	}
}

func TestZeroHitSkippedWithoutHitData(t *testing.T) {
	cfg := ir.New()
	r1 := rule(1, "a", ir.ActionAllow, "A", "B", "HTTP")
	r2 := rule(2, "b", ir.ActionAllow, "C", "D", "HTTPS")
	cfg.Rules = []*ir.Rule{r1, r2}

	res := Analyze(cfg)
	if len(res.ZeroHit) != 0 {
		t.Fatalf("ZeroHit = %v, want none (no rule carries hit-count data)", res.ZeroHit)
	}
}
