package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stellarlinkco/toolstep/pkg/message"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	if _, err := s.GetThreadByID(ctx, "absent"); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("expected ErrThreadNotFound, got %v", err)
	}

	created, err := s.CreateThread(ctx, &Thread{Title: "run"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("missing generated fields: %+v", created)
	}

	got, err := s.GetThreadByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "run" {
		t.Fatalf("unexpected thread %+v", got)
	}

	if _, err := s.CreateThread(ctx, &Thread{ID: created.ID}); err == nil {
		t.Fatal("duplicate create must fail")
	}
}

func TestDiskStoreRoundTrip(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if _, err := s.CreateThread(ctx, &Thread{ID: "t1", Title: "first"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	history := []message.Message{
		{Role: message.RoleUser, Parts: []message.Part{{Type: message.PartText, Text: "hi"}}},
		{Role: message.RoleAssistant, Parts: []message.Part{{
			Type: message.PartToolInvocation, State: message.StateCall,
			ToolCallID: "c1", ToolName: "weather", Args: map[string]any{"city": "Oslo"},
		}}},
	}
	if err := s.SaveMessages("t1", history); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.LoadMessages("t1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded))
	}
	if loaded[1].Parts[0].Args["city"] != "Oslo" {
		t.Fatalf("args lost through persistence: %+v", loaded[1].Parts[0])
	}

	thread, err := s.GetThreadByID(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if thread.Title != "first" {
		t.Fatalf("thread metadata lost: %+v", thread)
	}
}

func TestDiskStoreSaveCreatesThread(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.SaveMessages("fresh", []message.Message{{Role: message.RoleUser}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.GetThreadByID(context.Background(), "fresh"); err != nil {
		t.Fatalf("thread must exist after save: %v", err)
	}
}

func TestDiskStoreMissingHistoryIsEmpty(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	msgs, err := s.LoadMessages("nothing")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty history, got %d", len(msgs))
	}
}

type flakyPersister struct {
	mu       sync.Mutex
	failures int
	saved    [][]message.Message
}

func (p *flakyPersister) SaveMessages(_ string, msgs []message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return fmt.Errorf("transient store failure")
	}
	p.saved = append(p.saved, msgs)
	return nil
}

func TestQueueRetriesTransientFailures(t *testing.T) {
	p := &flakyPersister{failures: 2}
	q := NewQueue(p, WithMaxTries(5))

	err := q.Flush(context.Background(), []message.Message{{Role: message.RoleUser}}, "t1", Config{})
	if err != nil {
		t.Fatalf("flush should have succeeded after retries: %v", err)
	}
	if len(p.saved) != 1 {
		t.Fatalf("expected exactly one durable write, got %d", len(p.saved))
	}
}

func TestQueueReportsExhaustedRetries(t *testing.T) {
	p := &flakyPersister{failures: 10}
	var reported error
	q := NewQueue(p, WithMaxTries(2), WithErrorCallback(func(_ string, err error) {
		reported = err
	}))

	if err := q.Flush(context.Background(), nil, "t1", Config{}); err == nil {
		t.Fatal("flush must fail when retries are exhausted")
	}
	if reported == nil {
		t.Fatal("error callback was not invoked")
	}
}

func TestQueueTrimsHistory(t *testing.T) {
	p := &flakyPersister{}
	q := NewQueue(p)

	history := []message.Message{
		{Role: message.RoleUser},
		{Role: message.RoleAssistant},
		{Role: message.RoleUser},
	}
	if err := q.Flush(context.Background(), history, "t1", Config{LastMessages: 2}); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := len(p.saved[0]); got != 2 {
		t.Fatalf("expected trimmed history of 2, got %d", got)
	}
	if p.saved[0][0].Role != message.RoleAssistant {
		t.Fatal("trim must keep the newest messages")
	}
}
