package policy

import (
	"strings"
	"sync"
	"testing"
)

func TestDefaultAllowsEverything(t *testing.T) {
	e := New(DefaultConfig())
	d, reason := e.Evaluate("anything")
	if d != Allow {
		t.Errorf("Evaluate(anything) = %s (%s), want allow", d, reason)
	}
}

func TestDeniedList(t *testing.T) {
	e := New(Config{DefaultAllow: true, DeniedTools: []string{"rm_rf", "send_email"}})

	if d, _ := e.Evaluate("rm_rf"); d != Deny {
		t.Error("listed tool was allowed")
	}
	if d, _ := e.Evaluate("other"); d != Allow {
		t.Error("unlisted tool was denied")
	}
	_, reason := e.Evaluate("send_email")
	if reason != `tool "send_email" is in denied_tools list` {
		t.Errorf("unexpected denial reason %q", reason)
	}
}

func TestWhitelistMode(t *testing.T) {
	e := New(Config{DefaultAllow: true, AllowedTools: []string{"search"}})

	if d, _ := e.Evaluate("search"); d != Allow {
		t.Error("whitelisted tool was denied")
	}
	d, reason := e.Evaluate("other")
	if d != Deny {
		t.Error("tool outside whitelist was allowed")
	}
	if reason != `tool "other" is not in allowed_tools list` {
		t.Errorf("unexpected denial reason %q", reason)
	}
}

func TestDenyWinsOverAllow(t *testing.T) {
	e := New(Config{
		DefaultAllow: true,
		AllowedTools: []string{"search"},
		DeniedTools:  []string{"search"},
	})
	_, reason := e.Evaluate("search")
	if !strings.Contains(reason, "denied_tools") {
		t.Errorf("deny list did not win: %q", reason)
	}
}

func TestDefaultDeny(t *testing.T) {
	e := New(Config{DefaultAllow: false})
	d, reason := e.Evaluate("anything")
	if d != Deny {
		t.Error("default-deny engine allowed a tool")
	}
	if reason != "default_allow is false and no allowed_tools specified" {
		t.Errorf("unexpected denial reason %q", reason)
	}
}

func TestBudgetChecksBeforeAllowSets(t *testing.T) {
	e := New(Config{DefaultAllow: true, AllowedTools: []string{"search"}, MaxToolCallsPerRun: 1})
	e.RecordCall()

	// Even a whitelisted tool is denied once the budget is spent.
	d, reason := e.Evaluate("search")
	if d != Deny {
		t.Error("exhausted budget did not deny")
	}
	if reason != "budget exceeded: 1/1 tool calls" {
		t.Errorf("unexpected denial reason %q", reason)
	}
}

func TestBudgetZeroMeansUnlimited(t *testing.T) {
	e := New(DefaultConfig())
	for i := 0; i < 100; i++ {
		e.RecordCall()
	}
	if d, _ := e.Evaluate("x"); d != Allow {
		t.Error("zero budget was treated as a ceiling")
	}
}

func TestResetBudget(t *testing.T) {
	e := New(Config{DefaultAllow: true, MaxToolCallsPerRun: 1})
	e.RecordCall()
	if d, _ := e.Evaluate("x"); d != Deny {
		t.Fatal("budget not enforced")
	}
	e.ResetBudget()
	if d, _ := e.Evaluate("x"); d != Allow {
		t.Error("reset did not restore the budget")
	}
	if e.Calls() != 0 {
		t.Errorf("Calls() = %d after reset", e.Calls())
	}
}

func TestConcurrentRecordCall(t *testing.T) {
	e := New(DefaultConfig())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Evaluate("x")
			e.RecordCall()
		}()
	}
	wg.Wait()
	if e.Calls() != 50 {
		t.Errorf("Calls() = %d, want 50", e.Calls())
	}
}

func FuzzEvaluate(f *testing.F) {
	f.Add("search")
	f.Add("rm_rf")
	f.Add("")
	e := New(Config{DefaultAllow: true, DeniedTools: []string{"rm_rf"}})
	f.Fuzz(func(t *testing.T, tool string) {
		d, reason := e.Evaluate(tool)
		if d != Allow && d != Deny {
			t.Errorf("Evaluate(%q) returned unknown decision %q", tool, d)
		}
		if reason == "" {
			t.Errorf("Evaluate(%q) returned empty reason", tool)
		}
	})
}

func BenchmarkEvaluate(b *testing.B) {
	e := New(Config{
		DefaultAllow: true,
		AllowedTools: []string{"search", "fetch", "summarize"},
		DeniedTools:  []string{"rm_rf"},
	})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e.Evaluate("search")
	}
}
