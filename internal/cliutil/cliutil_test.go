package cliutil

import "testing"

func TestDotPad(t *testing.T) {
	got := DotPad("asa", 10)
	if got != "asa ......" {
		t.Fatalf("DotPad() = %q", got)
	}
	if DotPad("a-very-long-name", 5) != "a-very-long-name" {
		t.Fatal("DotPad should return name unchanged when width is too small")
	}
}

func TestSeverityColors(t *testing.T) {
	if Severity("critical") != Red("critical") {
		t.Fatal("critical should be red")
	}
	if Severity("low") != Green("low") {
		t.Fatal("low should be green")
	}
	if Severity("unknown") != "unknown" {
		t.Fatal("unrecognized severity should pass through unchanged")
	}
}

func TestTableRendersRows(t *testing.T) {
	tbl := NewTable("RULE", "SEVERITY")
	tbl.Row("allow-any", "critical")
	out := tbl.String()
	if out == "" {
		t.Fatal("expected non-empty table output")
	}
}

func TestEmptyTableProducesNoOutput(t *testing.T) {
	tbl := NewTable("RULE", "SEVERITY")
	if tbl.String() != "" {
		t.Fatal("expected empty output for table with no rows")
	}
}
