// Package event defines the telemetry event envelope and the metadata
// shapes for each of the seven event kinds.
package event

// Type is one of the seven event kinds.
type Type string

const (
	RunStart       Type = "run.start"
	RunEnd         Type = "run.end"
	ToolRequest    Type = "tool.request"
	ToolResponse   Type = "tool.response"
	PolicyDecision Type = "policy.decision"
	TaskStart      Type = "task.start"
	TaskEnd        Type = "task.end"
	Handoff        Type = "handoff"
)

// SchemaVersion increments when the event structure changes.
const SchemaVersion = "1.0"

// SDKVersion is stamped on every emitted event.
const SDKVersion = "0.3.0"

// Event is one immutable telemetry record. The metadata shape is fully
// determined by the event type.
type Event struct {
	EventID       string         `json:"event_id"`
	Timestamp     string         `json:"timestamp"`
	Type          Type           `json:"event_type"`
	AgentID       string         `json:"agent_id"`
	Env           string         `json:"env"`
	RunID         string         `json:"run_id,omitempty"`
	Metadata      map[string]any `json:"metadata"`
	SchemaVersion string         `json:"schema_version"`
	SDKVersion    string         `json:"sdk_version"`
	AgentVersion  string         `json:"agent_version,omitempty"`
	PolicyVersion string         `json:"policy_version,omitempty"`
}

// Source holds the per-agent constants stamped on every event.
type Source struct {
	AgentID       string
	Env           string
	AgentVersion  string
	PolicyVersion string
}

// New builds an event of the given type with a fresh event ID and
// timestamp. runID may be empty outside a run.
func (s Source) New(t Type, runID string, metadata map[string]any) Event {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Event{
		EventID:       NewEventID(),
		Timestamp:     UTCNowISO(),
		Type:          t,
		AgentID:       s.AgentID,
		Env:           s.Env,
		RunID:         runID,
		Metadata:      metadata,
		SchemaVersion: SchemaVersion,
		SDKVersion:    SDKVersion,
		AgentVersion:  s.AgentVersion,
		PolicyVersion: s.PolicyVersion,
	}
}

// RunStartMeta builds metadata for a run.start event.
func RunStartMeta(purpose string) map[string]any {
	md := map[string]any{}
	if purpose != "" {
		md["purpose"] = purpose
	}
	return md
}

// Summary is the per-run statistics block carried by run.end.
type Summary struct {
	ToolCallsTotal     int
	ToolCallsAllowed   int
	ToolCallsDenied    int
	ToolCallsError     int
	ToolCallsRetried   int
	AvgToolLatencyMS   float64
	AvgPolicyLatencyMS float64
	TotalRunDurationMS float64
	TasksCompleted     int
	TasksFailed        int
	Handoffs           int
}

// RunEndMeta builds metadata for a run.end event. errMeta is nil when
// the run ended successfully.
func RunEndMeta(success bool, errMeta map[string]any, s Summary) map[string]any {
	md := map[string]any{
		"success": success,
		"summary": map[string]any{
			"tool_calls": map[string]any{
				"total":   s.ToolCallsTotal,
				"allowed": s.ToolCallsAllowed,
				"denied":  s.ToolCallsDenied,
				"error":   s.ToolCallsError,
				"retried": s.ToolCallsRetried,
			},
			"latencies": map[string]any{
				"avg_tool_ms":   s.AvgToolLatencyMS,
				"avg_policy_ms": s.AvgPolicyLatencyMS,
				"total_run_ms":  s.TotalRunDurationMS,
			},
			"tasks": map[string]any{
				"completed": s.TasksCompleted,
				"failed":    s.TasksFailed,
			},
			"handoffs": s.Handoffs,
		},
	}
	if errMeta != nil {
		md["error"] = errMeta
	}
	return md
}

// ToolRequestMeta builds metadata for a tool.request event. args must
// already be redacted.
func ToolRequestMeta(tool, callID string, args map[string]any, attempt int) map[string]any {
	if args == nil {
		args = map[string]any{}
	}
	return map[string]any{
		"tool_name":    tool,
		"tool_call_id": callID,
		"args":         args,
		"attempt":      attempt,
	}
}

// ToolResponseInfo describes the outcome of one tool-call attempt.
type ToolResponseInfo struct {
	Tool            string
	CallID          string
	Status          string
	PolicyLatencyMS float64
	ToolLatencyMS   float64
	TotalLatencyMS  float64
	Attempt         int
	Retries         int
	Error           map[string]any
	Result          any
}

// ToolResponseMeta builds metadata for a tool.response event.
func ToolResponseMeta(info ToolResponseInfo) map[string]any {
	md := map[string]any{
		"tool_name":         info.Tool,
		"tool_call_id":      info.CallID,
		"status":            info.Status,
		"policy_latency_ms": info.PolicyLatencyMS,
		"tool_latency_ms":   info.ToolLatencyMS,
		"total_latency_ms":  info.TotalLatencyMS,
		"attempt":           info.Attempt,
		"retries":           info.Retries,
	}
	if info.Error != nil {
		md["error"] = info.Error
	}
	if info.Result != nil {
		md["result"] = info.Result
	}
	return md
}

// PolicyDecisionMeta builds metadata for a policy.decision event.
func PolicyDecisionMeta(tool, callID, decision, reason string, latencyMS float64, attempt int) map[string]any {
	return map[string]any{
		"tool_name":    tool,
		"tool_call_id": callID,
		"decision":     decision,
		"reason":       reason,
		"latency_ms":   latencyMS,
		"attempt":      attempt,
	}
}

// TaskStartMeta builds metadata for a task.start event.
func TaskStartMeta(taskID, taskType, description string) map[string]any {
	md := map[string]any{"task_id": taskID}
	if taskType != "" {
		md["task_type"] = taskType
	}
	if description != "" {
		md["description"] = description
	}
	return md
}

// TaskEndMeta builds metadata for a task.end event.
func TaskEndMeta(taskID string, success bool, errMeta map[string]any) map[string]any {
	md := map[string]any{
		"task_id": taskID,
		"success": success,
	}
	if errMeta != nil {
		md["error"] = errMeta
	}
	return md
}

// HandoffMeta builds metadata for a handoff event.
func HandoffMeta(fromAgentID, toAgentID, reason string, context map[string]any) map[string]any {
	md := map[string]any{
		"from_agent_id": fromAgentID,
		"to_agent_id":   toAgentID,
	}
	if reason != "" {
		md["reason"] = reason
	}
	if len(context) > 0 {
		md["context"] = context
	}
	return md
}
