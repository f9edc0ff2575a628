// Package analyzer runs pre-migration static analysis over a parsed
// FirewallConfig: duplicate address/service object detection,
// shadowed/unreachable rule detection, and a weighted security risk score.
// Grounded on the original Python pre_migration_analyzer.py.
package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/fwconvert/fwconvert/ir"
)

// DuplicateFinding names a canonical object key shared by two or more
// Address or Service objects. Names[0] is the original; the rest are
// duplicates of it.
type DuplicateFinding struct {
	Kind         string // "address" or "service"
	CanonicalKey string
	Names        []string
}

// ShadowFinding records that Shadowed can never match because Shadower,
// which matches everything Shadowed would and appears earlier, already
// disposes of the traffic.
type ShadowFinding struct {
	ShadowerName string
	ShadowedName string
}

// RiskSeverity enumerates the four severities a security risk finding can
// carry, per the analyzer's own scoring scale (distinct from ir.WarningSeverity,
// which only has three levels and is not weighted the same way).
type RiskSeverity string

const (
	RiskCritical RiskSeverity = "critical"
	RiskHigh     RiskSeverity = "high"
	RiskMedium   RiskSeverity = "medium"
	RiskLow      RiskSeverity = "low"
)

// RiskFinding is one security-relevant observation about a single rule.
type RiskFinding struct {
	RuleName string
	Severity RiskSeverity
	Reason   string
}

// Result is the complete analysis output for one FirewallConfig.
type Result struct {
	Duplicates []DuplicateFinding
	Shadowed   []ShadowFinding
	Risks      []RiskFinding
	ZeroHit    []string

	OptimizationScore float64
	SecurityScore     float64
	ComplexityScore   float64
	OverallScore      float64
}

// Analyze runs every static check over cfg and returns the combined result.
func Analyze(cfg *ir.FirewallConfig) Result {
	enabled := enabledRules(cfg.Rules)

	res := Result{
		Duplicates: findDuplicateObjects(cfg),
		Shadowed:   findShadowed(enabled),
		Risks:      findRisks(cfg.Rules),
		ZeroHit:    findZeroHit(cfg.Rules),
	}

	res.OptimizationScore = optimizationScore(res.Duplicates, res.ZeroHit)
	res.SecurityScore = securityScore(res.Risks)
	res.ComplexityScore = complexityScore(cfg, res.Shadowed)
	res.OverallScore = clamp(math.Round(0.25*res.OptimizationScore + 0.50*res.SecurityScore + 0.25*res.ComplexityScore))

	return res
}

func enabledRules(rules []*ir.Rule) []*ir.Rule {
	out := make([]*ir.Rule, 0, len(rules))
	for _, r := range rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// addressCanonicalKey builds the canonical value key spec.md §4.3 defines
// for duplicate-address detection: host:IP, network:IP/CIDR, range:A-B,
// fqdn:lowercased-domain.
func addressCanonicalKey(a *ir.Address) string {
	switch a.Type {
	case ir.AddressHost:
		return "host:" + a.Value1
	case ir.AddressNetwork:
		return "network:" + a.Value1 + "/" + a.Value2
	case ir.AddressRange:
		return "range:" + a.Value1 + "-" + a.Value2
	case ir.AddressFQDN:
		return "fqdn:" + strings.ToLower(a.Value1)
	default:
		return string(a.Type) + ":" + a.Value1
	}
}

// serviceCanonicalKey builds the canonical proto:port-spec key spec.md
// §4.3 defines for duplicate-service detection.
func serviceCanonicalKey(s *ir.Service) string {
	return string(s.Protocol) + ":" + s.Port
}

// findDuplicateObjects groups Address and Service objects by canonical
// key; any key shared by more than one object is a duplicate finding with
// the first-seen name reported as the original.
func findDuplicateObjects(cfg *ir.FirewallConfig) []DuplicateFinding {
	var out []DuplicateFinding

	addrByKey := map[string][]string{}
	var addrOrder []string
	for _, name := range cfg.SortedAddressNames() {
		key := addressCanonicalKey(cfg.Addresses[name])
		if _, seen := addrByKey[key]; !seen {
			addrOrder = append(addrOrder, key)
		}
		addrByKey[key] = append(addrByKey[key], name)
	}
	for _, key := range addrOrder {
		if names := addrByKey[key]; len(names) > 1 {
			out = append(out, DuplicateFinding{Kind: "address", CanonicalKey: key, Names: names})
		}
	}

	svcByKey := map[string][]string{}
	var svcOrder []string
	for _, name := range cfg.SortedServiceNames() {
		key := serviceCanonicalKey(cfg.Services[name])
		if _, seen := svcByKey[key]; !seen {
			svcOrder = append(svcOrder, key)
		}
		svcByKey[key] = append(svcByKey[key], name)
	}
	for _, key := range svcOrder {
		if names := svcByKey[key]; len(names) > 1 {
			out = append(out, DuplicateFinding{Kind: "service", CanonicalKey: key, Names: names})
		}
	}

	return out
}

// isUniversal reports whether a rule's field, taken as a whole, matches
// "any" traffic for that dimension: either literally empty or containing
// the sentinel name "any"/"all"/"any4"/"any6".
func isUniversal(s ir.StringSet) bool {
	return len(s) == 0 || s.Has("any") || s.Has("ALL") || s.Has("all") || s.Has("any4") || s.Has("any6")
}

// isSubsetOrAny reports whether every member of sub is also a member of
// super, OR super is explicitly "any"/"all" (the broader side treated as
// universal per spec.md §4.3's shadow-detection rule).
func isSubsetOrAny(sub, super ir.StringSet) bool {
	if super.Has("any") || super.Has("ALL") || super.Has("all") {
		return true
	}
	if len(sub) == 0 {
		return false
	}
	for name := range sub {
		if !super.Has(name) {
			return false
		}
	}
	return true
}

// findShadowed runs the O(n^2) pass: for every ordered pair (earlier,
// later) of enabled rules, later is shadowed if earlier's action matches
// and later's source, destination, and service are each a subset-or-any of
// earlier's, so earlier always disposes of later's traffic first.
func findShadowed(rules []*ir.Rule) []ShadowFinding {
	var out []ShadowFinding
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			earlier, later := rules[i], rules[j]
			if earlier.Action != later.Action {
				continue
			}
			if isSubsetOrAny(later.Source, earlier.Source) &&
				isSubsetOrAny(later.Destination, earlier.Destination) &&
				isSubsetOrAny(later.Service, earlier.Service) {
				out = append(out, ShadowFinding{ShadowerName: earlier.Name, ShadowedName: later.Name})
			}
		}
	}
	return out
}

// findRisks emits the five documented risk findings per spec.md §4.3. A
// single rule can accumulate more than one finding (e.g. a disabled allow
// rule with no remark gets both "low" findings independently). Runs over
// every rule, not just enabled ones, since the disabled-rule and no-remark
// checks exist specifically to catch rules in that state.
func findRisks(rules []*ir.Rule) []RiskFinding {
	var out []RiskFinding
	for _, r := range rules {
		allow := r.Action == ir.ActionAllow
		if allow && isUniversal(r.Source) && isUniversal(r.Destination) && isUniversal(r.Service) {
			out = append(out, RiskFinding{RuleName: r.Name, Severity: RiskCritical, Reason: "allow rule with source, destination, and service all any/all"})
		}
		if allow && isUniversal(r.Service) {
			out = append(out, RiskFinding{RuleName: r.Name, Severity: RiskHigh, Reason: "allow rule with service any"})
		}
		if allow && !r.Log {
			out = append(out, RiskFinding{RuleName: r.Name, Severity: RiskMedium, Reason: "allow rule with logging disabled"})
		}
		if !r.Enabled {
			out = append(out, RiskFinding{RuleName: r.Name, Severity: RiskLow, Reason: "rule is disabled"})
		}
		if r.Remark == "" {
			out = append(out, RiskFinding{RuleName: r.Name, Severity: RiskLow, Reason: "rule has no remark"})
		}
	}
	return out
}

// findZeroHit flags enabled rules with hit_count == 0, but only when at
// least one rule in the config carries non-zero hit-count data — otherwise hit
// counters are assumed absent from the source export and every rule would
// be flagged spuriously.
func findZeroHit(rules []*ir.Rule) []string {
	hasHitData := false
	for _, r := range rules {
		if r.HitCount > 0 {
			hasHitData = true
			break
		}
	}
	if !hasHitData {
		return nil
	}
	var out []string
	for _, r := range rules {
		if r.Enabled && r.HitCount == 0 {
			out = append(out, r.Name)
		}
	}
	return out
}

// optimizationScore implements spec.md §4.3's exact formula:
// 100 − 5·|duplicates| − 2·|unused|, where |duplicates| counts every
// duplicate object beyond each group's original.
func optimizationScore(dups []DuplicateFinding, zeroHit []string) float64 {
	duplicateCount := 0
	for _, d := range dups {
		duplicateCount += len(d.Names) - 1
	}
	score := 100 - 5*float64(duplicateCount) - 2*float64(len(zeroHit))
	return clamp(score)
}

// securityScore implements spec.md §4.3's exact formula: 100 − Σ
// weight(severity), weights critical=20, high=10, medium=5, low=2.
func securityScore(risks []RiskFinding) float64 {
	score := 100.0
	for _, r := range risks {
		switch r.Severity {
		case RiskCritical:
			score -= 20
		case RiskHigh:
			score -= 10
		case RiskMedium:
			score -= 5
		case RiskLow:
			score -= 2
		}
	}
	return clamp(score)
}

// complexityScore implements spec.md §4.3's exact formula:
// 100 − 10·|shadows| − (20 if |rules|>500 else 10 if |rules|>200 else 0).
func complexityScore(cfg *ir.FirewallConfig, shadowed []ShadowFinding) float64 {
	score := 100 - 10*float64(len(shadowed))
	switch n := len(cfg.Rules); {
	case n > 500:
		score -= 20
	case n > 200:
		score -= 10
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Summary renders a short human-readable recap, used by the CLI's
// `analyze` command.
func (r Result) Summary() string {
	return fmt.Sprintf(
		"overall=%.0f optimization=%.0f security=%.0f complexity=%.0f duplicate_objects=%d shadowed=%d risks=%d zero_hit=%d",
		r.OverallScore, r.OptimizationScore, r.SecurityScore, r.ComplexityScore,
		len(r.Duplicates), len(r.Shadowed), len(r.Risks), len(r.ZeroHit),
	)
}
