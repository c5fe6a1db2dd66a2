package alm

import (
	"context"
	"time"

	"github.com/r3fresh/alm-go/internal/event"
	"github.com/r3fresh/alm-go/internal/policy"
	"github.com/r3fresh/alm-go/internal/redact"
)

// ToolFunc is the calling convention for wrapped tools. Arguments are a
// named-parameter mapping so telemetry can redact and search them.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// maxAttempts caps total attempts per invocation regardless of the
// configured retry ceiling.
const maxAttempts = 3

// Tool wraps fn under the given name with the interception pipeline.
// Every attempt emits a tool.request, a policy.decision, and a
// tool.response; all events of one invocation (including retries) share
// one tool_call_id. The policy budget increments exactly once, on the
// terminal outcome.
//
// Denials are terminal: fn never runs, the response carries status
// "denied" with zero tool latency, and the caller receives a
// *DeniedError. Retryable failures are retried up to the configured
// ceiling; everything else propagates after telemetry is emitted. The
// pipeline never swallows a caller-visible failure.
func (a *ALM) Tool(name string, fn ToolFunc, opts ...ToolOption) ToolFunc {
	cfg := toolConfig{maxRetries: a.maxRetries, backoff: a.backoff}
	for _, o := range opts {
		o(&cfg)
	}

	return func(ctx context.Context, args map[string]any) (any, error) {
		callID := event.NewCallID()
		attempt := 1
		retries := 0

		for {
			totalStart := time.Now()

			a.emit(a.source.New(event.ToolRequest, a.currentRunID(),
				event.ToolRequestMeta(name, callID, redact.Map(args), attempt)))

			policyStart := time.Now()
			decision, reason := a.policy.Evaluate(name)
			policyLatency := msSince(policyStart)

			a.emit(a.source.New(event.PolicyDecision, a.currentRunID(),
				event.PolicyDecisionMeta(name, callID, string(decision), reason, policyLatency, attempt)))

			if decision == policy.Deny {
				denied := &DeniedError{Tool: name, Reason: reason}
				a.emit(a.source.New(event.ToolResponse, a.currentRunID(),
					event.ToolResponseMeta(event.ToolResponseInfo{
						Tool:            name,
						CallID:          callID,
						Status:          "denied",
						PolicyLatencyMS: policyLatency,
						ToolLatencyMS:   0,
						TotalLatencyMS:  msSince(totalStart),
						Attempt:         attempt,
						Retries:         retries,
						Error:           Normalize(denied, SourcePolicy).Metadata(),
					})))
				a.recordToolCall(toolCallRecord{
					denied:          true,
					retried:         retries > 0,
					policyLatencyMS: policyLatency,
				})
				return nil, denied
			}

			toolStart := time.Now()
			result, err := fn(ctx, args)
			toolLatency := msSince(toolStart)
			totalLatency := msSince(totalStart)

			if err == nil {
				a.policy.RecordCall()
				var redacted any
				if result != nil {
					redacted = redact.Value(result)
				}
				a.emit(a.source.New(event.ToolResponse, a.currentRunID(),
					event.ToolResponseMeta(event.ToolResponseInfo{
						Tool:            name,
						CallID:          callID,
						Status:          "success",
						PolicyLatencyMS: policyLatency,
						ToolLatencyMS:   toolLatency,
						TotalLatencyMS:  totalLatency,
						Attempt:         attempt,
						Retries:         retries,
						Result:          redacted,
					})))
				a.recordToolCall(toolCallRecord{
					allowed:         true,
					retried:         retries > 0,
					toolLatencyMS:   toolLatency,
					policyLatencyMS: policyLatency,
				})
				return result, nil
			}

			serr := Normalize(err, SourceTool)
			eligible := serr.Retryable && retries < cfg.maxRetries && attempt < maxAttempts

			a.emit(a.source.New(event.ToolResponse, a.currentRunID(),
				event.ToolResponseMeta(event.ToolResponseInfo{
					Tool:            name,
					CallID:          callID,
					Status:          "error",
					PolicyLatencyMS: policyLatency,
					ToolLatencyMS:   toolLatency,
					TotalLatencyMS:  totalLatency,
					Attempt:         attempt,
					Retries:         retries,
					Error:           serr.Metadata(),
				})))

			if eligible {
				a.recordToolCall(toolCallRecord{
					allowed:         true,
					errored:         true,
					retried:         true,
					toolLatencyMS:   toolLatency,
					policyLatencyMS: policyLatency,
				})
				attempt++
				retries++
				if cfg.backoff > 0 {
					time.Sleep(cfg.backoff)
				}
				continue
			}

			a.policy.RecordCall()
			a.recordToolCall(toolCallRecord{
				allowed:         true,
				errored:         true,
				retried:         retries > 0,
				toolLatencyMS:   toolLatency,
				policyLatencyMS: policyLatency,
			})
			return nil, err
		}
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}
