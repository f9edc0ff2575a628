package ir

import "sort"

func sortStrings(s []string) {
	sort.Strings(s)
}

func sortedKeysAddr(m map[string]*Address) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortStrings(out)
	return out
}

func sortedKeysSvc(m map[string]*Service) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortStrings(out)
	return out
}

func sortedKeysGrp(m map[string]*Group) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortStrings(out)
	return out
}

func sortedKeysSvcGrp(m map[string]*ServiceGroup) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortStrings(out)
	return out
}

func sortedKeysIface(m map[string]*Interface) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortStrings(out)
	return out
}

// SortRulesBySequence sorts rules ascending by SequenceID in place.
func SortRulesBySequence(rules []*Rule) {
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].SequenceID < rules[j].SequenceID })
}

// SortNatRulesBySequence sorts NAT rules ascending by SequenceID in place.
func SortNatRulesBySequence(rules []*NatRule) {
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].SequenceID < rules[j].SequenceID })
}
