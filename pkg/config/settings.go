// Package config loads and merges toolstep settings across layered JSON
// files and runtime overrides.
package config

import (
	"github.com/stellarlinkco/toolstep/pkg/memory"
	"github.com/stellarlinkco/toolstep/pkg/trace"
)

// Settings models the full contents of .toolstep/settings.json.
// Optional booleans use *bool so nil means "unset" and defaults apply.
type Settings struct {
	Provider            string            `json:"provider,omitempty"`            // Target provider for message conversion: "anthropic" or "openai".
	Model               string            `json:"model,omitempty"`               // Override default model id.
	RequireToolApproval *bool             `json:"requireToolApproval,omitempty"` // Run-wide gate: every tool call suspends for approval.
	StorageDir          string            `json:"storageDir,omitempty"`          // Root directory for on-disk thread storage.
	Env                 map[string]string `json:"env,omitempty"`                 // Environment variables applied to every run.
	Memory              *MemoryConfig     `json:"memory,omitempty"`              // History persistence settings.
	Trace               *trace.Config     `json:"trace,omitempty"`               // Span export settings.
}

// MemoryConfig controls how much history persists per thread.
type MemoryConfig struct {
	LastMessages *int   `json:"lastMessages,omitempty"` // Trim history to the most recent N messages. 0 keeps everything.
	Scope        string `json:"scope,omitempty"`        // "thread" (default) or "resource".
}

// GetDefaultSettings returns the built-in layer every load starts from.
func GetDefaultSettings() Settings {
	tc := trace.DefaultConfig()
	return Settings{
		Provider:   "anthropic",
		StorageDir: ".toolstep/threads",
		Trace:      &tc,
	}
}

// MemorySettings converts the persistence section into the save queue's
// config. Unset sections yield the zero config, which keeps everything.
func (s *Settings) MemorySettings() memory.Config {
	cfg := memory.Config{Scope: "thread"}
	if s == nil || s.Memory == nil {
		return cfg
	}
	if s.Memory.LastMessages != nil {
		cfg.LastMessages = *s.Memory.LastMessages
	}
	if s.Memory.Scope != "" {
		cfg.Scope = s.Memory.Scope
	}
	return cfg
}

// MergeSettings deep-merges two Settings (lower <- higher) into a new
// instance. Scalars override when non-zero, pointers when non-nil, maps per
// key. Inputs are never mutated.
func MergeSettings(lower, higher *Settings) *Settings {
	if lower == nil && higher == nil {
		return nil
	}
	if lower == nil {
		return cloneSettings(higher)
	}
	if higher == nil {
		return cloneSettings(lower)
	}

	result := cloneSettings(lower)
	if higher.Provider != "" {
		result.Provider = higher.Provider
	}
	if higher.Model != "" {
		result.Model = higher.Model
	}
	if higher.RequireToolApproval != nil {
		result.RequireToolApproval = boolPtr(*higher.RequireToolApproval)
	}
	if higher.StorageDir != "" {
		result.StorageDir = higher.StorageDir
	}
	result.Env = mergeMaps(lower.Env, higher.Env)
	result.Memory = mergeMemory(lower.Memory, higher.Memory)
	result.Trace = mergeTrace(lower.Trace, higher.Trace)
	return result
}

func mergeMemory(lower, higher *MemoryConfig) *MemoryConfig {
	if lower == nil && higher == nil {
		return nil
	}
	out := &MemoryConfig{}
	if lower != nil {
		if lower.LastMessages != nil {
			out.LastMessages = intPtr(*lower.LastMessages)
		}
		out.Scope = lower.Scope
	}
	if higher != nil {
		if higher.LastMessages != nil {
			out.LastMessages = intPtr(*higher.LastMessages)
		}
		if higher.Scope != "" {
			out.Scope = higher.Scope
		}
	}
	return out
}

func mergeTrace(lower, higher *trace.Config) *trace.Config {
	if lower == nil && higher == nil {
		return nil
	}
	out := &trace.Config{}
	if lower != nil {
		*out = *lower
		out.Headers = mergeMaps(lower.Headers, nil)
	}
	if higher != nil {
		out.Enabled = out.Enabled || higher.Enabled
		if higher.ServiceName != "" {
			out.ServiceName = higher.ServiceName
		}
		if higher.Endpoint != "" {
			out.Endpoint = higher.Endpoint
		}
		out.Headers = mergeMaps(out.Headers, higher.Headers)
		if higher.SampleRate != 0 {
			out.SampleRate = higher.SampleRate
		}
		if higher.Insecure {
			out.Insecure = true
		}
	}
	return out
}

func cloneSettings(s *Settings) *Settings {
	if s == nil {
		return nil
	}
	out := *s
	out.Env = mergeMaps(s.Env, nil)
	out.Memory = mergeMemory(s.Memory, nil)
	out.Trace = mergeTrace(s.Trace, nil)
	if s.RequireToolApproval != nil {
		out.RequireToolApproval = boolPtr(*s.RequireToolApproval)
	}
	return &out
}

func mergeMaps(lower, higher map[string]string) map[string]string {
	if lower == nil && higher == nil {
		return nil
	}
	out := make(map[string]string, len(lower)+len(higher))
	for k, v := range lower {
		out[k] = v
	}
	for k, v := range higher {
		out[k] = v
	}
	return out
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }
