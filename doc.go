// Package alm instruments an autonomous agent's lifecycle (runs, tasks,
// tool invocations, handoffs) and emits structured telemetry events
// describing what happened, when, and under which policy decision.
//
// Usage:
//
//	a, err := alm.New("agent-123",
//	    alm.WithEnv("production"),
//	    alm.WithDeniedTools("send_email"),
//	    alm.WithMaxToolCallsPerRun(100),
//	)
//	fetch := a.Tool("fetch_data", fetchData)
//	err = a.Run(ctx, "daily refresh", func(ctx context.Context) error {
//	    _, err := fetch(ctx, map[string]any{"source": "api"})
//	    return err
//	})
//
// Each tool invocation is intercepted: checked against the allow/deny
// policy and the per-run call budget, timed at policy, tool, and total
// granularity, retried on transient failures, and surrounded by
// correlated tool.request, policy.decision, and tool.response events
// sharing one tool_call_id. The wrapper preserves the original
// control-flow outcome; telemetry can never crash the host agent.
//
// Events are delivered through a batched sink: line-delimited JSON to a
// console stream by default, batched HTTP POST when an endpoint is
// configured, or a tamper-evident hash-chained capture file.
package alm
