package tool

import "testing"

type namedTool struct {
	name string
}

func (n *namedTool) Name() string        { return n.name }
func (n *namedTool) Description() string { return "stub" }

func TestRegistryRegisterAndResolve(t *testing.T) {
	reg := NewRegistry()
	weather := &namedTool{name: "weather"}
	if err := reg.Register(weather); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, ok := reg.Resolve("weather")
	if !ok || got != Tool(weather) {
		t.Fatal("exact key lookup failed")
	}
	if _, ok := reg.Resolve("missing"); ok {
		t.Fatal("resolve must miss for unknown names")
	}
}

func TestRegistryResolveByDeclaredName(t *testing.T) {
	reg := NewRegistry()
	weather := &namedTool{name: "weather"}
	if err := reg.RegisterAs("tools/weather-v2", weather); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Key and declared name diverge; both must resolve.
	if _, ok := reg.Resolve("tools/weather-v2"); !ok {
		t.Fatal("key lookup failed")
	}
	got, ok := reg.Resolve("weather")
	if !ok || got != Tool(weather) {
		t.Fatal("fallback scan by declared name failed")
	}
}

func TestRegistryRejectsDuplicatesAndNil(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&namedTool{name: "weather"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(&namedTool{name: "weather"}); err == nil {
		t.Fatal("duplicate key must be rejected")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatal("nil tool must be rejected")
	}
	if err := reg.RegisterAs("", &namedTool{name: "x"}); err == nil {
		t.Fatal("empty key must be rejected")
	}
	if reg.Len() != 1 {
		t.Fatalf("unexpected size %d", reg.Len())
	}
}

func TestRegistryKeysSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := reg.Register(&namedTool{name: name}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	keys := reg.Keys()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
}
