package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	alm "github.com/r3fresh/alm-go"
)

type demoConfig struct {
	AgentID       string `env:"ALM_AGENT_ID, default=demo-agent"`
	Env           string `env:"ALM_ENV, default=development"`
	Endpoint      string `env:"ALM_ENDPOINT"`
	APIKey        string `env:"ALM_API_KEY"`
	AuditFile     string `env:"ALM_AUDIT_FILE"`
	AgentVersion  string `env:"ALM_AGENT_VERSION, default=1.0.0-dev"`
	PolicyVersion string `env:"ALM_POLICY_VERSION, default=policy-dev-1"`
}

// transientError simulates a recoverable upstream failure.
type transientError struct{ msg string }

func (e *transientError) Error() string   { return e.msg }
func (e *transientError) Retryable() bool { return true }

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a toy instrumented agent and emit its telemetry",
	Long:  "Exercises the full event surface: run start/end with summary, allowed, denied, retried, and failed tool calls, task scopes, and a handoff. Sink selection comes from ALM_ENDPOINT / ALM_AUDIT_FILE; default is stdout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var cfg demoConfig
		if err := envconfig.Process(ctx, &cfg); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}

		opts := []alm.Option{
			alm.WithEnv(cfg.Env),
			alm.WithAgentVersion(cfg.AgentVersion),
			alm.WithPolicyVersion(cfg.PolicyVersion),
			alm.WithDeniedTools("dangerous_tool"),
			alm.WithMaxToolCallsPerRun(50),
			alm.WithMaxRetries(2),
		}
		switch {
		case cfg.Endpoint != "":
			opts = append(opts, alm.WithEndpoint(cfg.Endpoint), alm.WithAPIKey(cfg.APIKey))
		case cfg.AuditFile != "":
			opts = append(opts, alm.WithAuditFile(cfg.AuditFile))
		}

		a, err := alm.New(cfg.AgentID, opts...)
		if err != nil {
			return err
		}
		defer a.Close()

		safeTool := a.Tool("safe_tool", func(ctx context.Context, args map[string]any) (any, error) {
			return fmt.Sprintf("Safe: %v", args["message"]), nil
		})
		dangerousTool := a.Tool("dangerous_tool", func(ctx context.Context, args map[string]any) (any, error) {
			return fmt.Sprintf("Dangerous action: %v", args["action"]), nil
		})
		flakyCalls := 0
		flakyTool := a.Tool("flaky_tool", func(ctx context.Context, args map[string]any) (any, error) {
			flakyCalls++
			if flakyCalls <= 2 {
				return nil, &transientError{msg: fmt.Sprintf("simulated timeout talking to %v", args["resource"])}
			}
			return fmt.Sprintf("Fetched %v after retries", args["resource"]), nil
		})
		failTool := a.Tool("non_retryable_fail", func(ctx context.Context, args map[string]any) (any, error) {
			return nil, errors.New("simulated non-retryable failure")
		})

		log := clog.FromContext(ctx)

		return a.Run(ctx, "Exercise the full telemetry surface", func(ctx context.Context) error {
			if err := a.Task(ctx, "demo", "Happy path task", func(ctx context.Context) error {
				res, err := safeTool(ctx, map[string]any{"message": "Hello, World!", "api_key": "sk-should-never-appear"})
				if err != nil {
					return err
				}
				log.Infof("safe_tool: %v", res)
				return nil
			}); err != nil {
				return err
			}

			if err := a.Task(ctx, "demo", "Denied tool task", func(ctx context.Context) error {
				_, err := dangerousTool(ctx, map[string]any{"action": "delete everything"})
				var denied *alm.DeniedError
				if errors.As(err, &denied) {
					log.Infof("expected deny: %v", denied)
					return nil
				}
				return err
			}); err != nil {
				return err
			}

			if err := a.Task(ctx, "demo", "Retry logic task", func(ctx context.Context) error {
				res, err := flakyTool(ctx, map[string]any{"resource": "example_resource"})
				if err != nil {
					return err
				}
				log.Infof("flaky_tool: %v", res)
				return nil
			}); err != nil {
				return err
			}

			// Task failure path: the error is recorded on the task and
			// swallowed here so the run itself still succeeds.
			_ = a.Task(ctx, "demo", "Non-retryable error task", func(ctx context.Context) error {
				_, err := failTool(ctx, nil)
				return err
			})

			a.Handoff("review-agent", "demo complete", map[string]any{"items": 4})
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
