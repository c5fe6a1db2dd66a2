// Package policy implements the allow/deny/budget evaluator consulted
// once per tool invocation.
package policy

import (
	"fmt"
	"sync"
)

// Decision is the policy outcome for a tool call.
type Decision string

const (
	Allow Decision = "allow"
	Deny  Decision = "deny"
)

// Engine evaluates tool names against allow/deny sets and a per-run
// call budget. Safe for concurrent use.
type Engine struct {
	allowed      map[string]struct{}
	denied       map[string]struct{}
	defaultAllow bool
	maxCalls     int // 0 means unlimited

	mu    sync.Mutex
	calls int
}

// New builds an Engine from a Config.
func New(cfg Config) *Engine {
	e := &Engine{
		allowed:      make(map[string]struct{}, len(cfg.AllowedTools)),
		denied:       make(map[string]struct{}, len(cfg.DeniedTools)),
		defaultAllow: cfg.DefaultAllow,
		maxCalls:     cfg.MaxToolCallsPerRun,
	}
	for _, t := range cfg.AllowedTools {
		e.allowed[t] = struct{}{}
	}
	for _, t := range cfg.DeniedTools {
		e.denied[t] = struct{}{}
	}
	return e
}

// Evaluate checks whether a tool may be called.
//
// Evaluation order (must not be changed):
//  1. Budget ceiling
//  2. Deny-set membership (wins over allow-set)
//  3. Allow-set (whitelist mode when non-empty)
//  4. Default allow/deny
func (e *Engine) Evaluate(tool string) (Decision, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.maxCalls > 0 && e.calls >= e.maxCalls {
		return Deny, fmt.Sprintf("budget exceeded: %d/%d tool calls", e.calls, e.maxCalls)
	}
	if _, ok := e.denied[tool]; ok {
		return Deny, fmt.Sprintf("tool %q is in denied_tools list", tool)
	}
	if len(e.allowed) > 0 {
		if _, ok := e.allowed[tool]; !ok {
			return Deny, fmt.Sprintf("tool %q is not in allowed_tools list", tool)
		}
		return Allow, "allowed"
	}
	if !e.defaultAllow {
		return Deny, "default_allow is false and no allowed_tools specified"
	}
	return Allow, "allowed"
}

// RecordCall counts one completed tool call against the budget. Call
// exactly once per terminal outcome, not once per retry attempt.
func (e *Engine) RecordCall() {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
}

// ResetBudget zeroes the call counter. Called once at run entry.
func (e *Engine) ResetBudget() {
	e.mu.Lock()
	e.calls = 0
	e.mu.Unlock()
}

// Calls returns the number of completed tool calls this run.
func (e *Engine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
