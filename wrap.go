package alm

import (
	"context"
	"encoding/json"
	"fmt"
)

// WrapTool adapts a typed tool function to the interception pipeline.
// Arguments round-trip through JSON so telemetry sees a named-parameter
// mapping it can redact; I should be a struct or map type. Arguments
// that do not encode to a JSON object are bound under a single "input"
// key.
func WrapTool[I, O any](a *ALM, name string, fn func(ctx context.Context, in I) (O, error), opts ...ToolOption) func(context.Context, I) (O, error) {
	return func(ctx context.Context, in I) (O, error) {
		var zero O

		args, err := encodeArgs(in)
		if err != nil {
			return zero, fmt.Errorf("alm: encode args for tool %q: %w", name, err)
		}

		call := a.Tool(name, func(ctx context.Context, _ map[string]any) (any, error) {
			return fn(ctx, in)
		}, opts...)

		res, err := call(ctx, args)
		if err != nil {
			return zero, err
		}
		if res == nil {
			return zero, nil
		}
		out, ok := res.(O)
		if !ok {
			return zero, fmt.Errorf("alm: tool %q returned %T, want %T", name, res, zero)
		}
		return out, nil
	}
}

func encodeArgs(in any) (map[string]any, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err == nil {
		return m, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return map[string]any{"input": v}, nil
}
