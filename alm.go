package alm

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/r3fresh/alm-go/internal/event"
	"github.com/r3fresh/alm-go/internal/policy"
	"github.com/r3fresh/alm-go/internal/sink"
)

// ALM instruments an agent's lifecycle: runs, tasks, tool calls, and
// handoffs. Configuration is immutable after New; only the policy
// budget counter mutates, and only at run boundaries. Safe for
// concurrent tool calls sharing one instance.
type ALM struct {
	agentID string
	env     string
	source  event.Source
	policy  *policy.Engine
	sink    sink.Sink

	maxRetries int
	backoff    time.Duration

	mu      sync.Mutex
	current *Run
}

// New creates an ALM instance for the given agent identifier.
func New(agentID string, opts ...Option) (*ALM, error) {
	if agentID == "" {
		return nil, errors.New("alm: agent_id is required")
	}

	cfg := defaultClientConfig()
	for _, o := range opts {
		o(&cfg)
	}

	pcfg, err := policy.LoadConfig(cfg.policyFile)
	if err != nil {
		return nil, fmt.Errorf("alm: %w", err)
	}
	if cfg.allowedTools != nil {
		pcfg.AllowedTools = cfg.allowedTools
	}
	if cfg.deniedTools != nil {
		pcfg.DeniedTools = cfg.deniedTools
	}
	if cfg.defaultAllowSet {
		pcfg.DefaultAllow = cfg.defaultAllow
	}
	if cfg.maxToolCalls > 0 {
		pcfg.MaxToolCallsPerRun = cfg.maxToolCalls
	}

	snk := cfg.sink
	if snk == nil {
		switch {
		case cfg.endpoint != "":
			s, err := sink.NewHTTP(cfg.endpoint, cfg.apiKey, cfg.batchSize)
			if err != nil {
				return nil, fmt.Errorf("alm: %w", err)
			}
			snk = s
		case cfg.auditFile != "":
			s, err := sink.NewFile(cfg.auditFile, cfg.batchSize)
			if err != nil {
				return nil, fmt.Errorf("alm: %w", err)
			}
			snk = s
		default:
			snk = sink.NewStdout(cfg.writer, cfg.batchSize)
		}
	}

	return &ALM{
		agentID: agentID,
		env:     cfg.env,
		source: event.Source{
			AgentID:       agentID,
			Env:           cfg.env,
			AgentVersion:  cfg.agentVersion,
			PolicyVersion: cfg.policyVersion,
		},
		policy:     policy.New(pcfg),
		sink:       snk,
		maxRetries: cfg.maxRetries,
		backoff:    cfg.backoff,
	}, nil
}

// Handoff records a transfer of control to another agent identity. The
// enclosing run's handoff counter is updated when a run is active.
func (a *ALM) Handoff(toAgentID, reason string, context map[string]any) {
	a.emit(a.source.New(event.Handoff, a.currentRunID(),
		event.HandoffMeta(a.agentID, toAgentID, reason, context)))
	if r := a.currentRun(); r != nil {
		r.recordHandoff()
	}
}

// Flush synchronously delivers all queued events.
func (a *ALM) Flush() {
	a.sink.Flush()
}

// Close flushes queued events and releases the sink.
func (a *ALM) Close() error {
	return a.sink.Close()
}

func (a *ALM) emit(ev event.Event) {
	a.sink.Emit(ev)
}

func (a *ALM) currentRun() *Run {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *ALM) currentRunID() string {
	if r := a.currentRun(); r != nil {
		return r.id
	}
	return ""
}
