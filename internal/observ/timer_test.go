package observ_test

import (
	"strings"
	"testing"

	"snex/internal/observ"
)

func TestTimerReport(t *testing.T) {
	tm := observ.NewTimer()
	idx := tm.Begin("declare")
	tm.End(idx, "3 namespaces")
	tm.End(42, "ignored")
	tm.Count("instantiations", 2)
	tm.Count("cache hits", 1)
	tm.Count("instantiations", 1)

	r := tm.Report()
	if len(r.Phases) != 1 || r.Phases[0].Note != "3 namespaces" {
		t.Fatalf("phases: %+v", r.Phases)
	}
	if len(r.Counters) != 2 || r.Counters[0].Name != "instantiations" || r.Counters[0].Value != 3 {
		t.Fatalf("counters: %+v", r.Counters)
	}
	s := tm.Summary()
	for _, want := range []string{"declare", "// 3 namespaces", "total", "cache hits"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary %q lacks %q", s, want)
		}
	}
}
