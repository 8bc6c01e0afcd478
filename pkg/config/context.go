package config

import "sync"

// KeyRequireToolApproval is the runtime-context key a scheduler sets to force
// approval on every tool call in a run, independent of file settings.
const KeyRequireToolApproval = "toolstep.requireToolApproval"

// RuntimeContext carries per-run key/value state handed down by the caller.
// It outranks file settings for the flags it defines.
type RuntimeContext struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewRuntimeContext creates an empty runtime context.
func NewRuntimeContext() *RuntimeContext {
	return &RuntimeContext{values: make(map[string]any)}
}

// Set stores a value under key.
func (rc *RuntimeContext) Set(key string, value any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.values[key] = value
}

// Get returns the value for key and whether it was set.
func (rc *RuntimeContext) Get(key string) (any, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	v, ok := rc.values[key]
	return v, ok
}

// Bool returns the boolean value for key. Non-boolean or missing values
// report (false, false).
func (rc *RuntimeContext) Bool(key string) (bool, bool) {
	v, ok := rc.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// RequireToolApproval resolves the run-wide approval flag: the runtime
// context wins when it defines the key, otherwise file settings apply.
func RequireToolApproval(rc *RuntimeContext, s *Settings) bool {
	if rc != nil {
		if v, ok := rc.Bool(KeyRequireToolApproval); ok {
			return v
		}
	}
	if s != nil && s.RequireToolApproval != nil {
		return *s.RequireToolApproval
	}
	return false
}
