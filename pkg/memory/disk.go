package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stellarlinkco/toolstep/pkg/message"
)

// DiskStore persists threads and their message histories as JSON files under
// a single directory. Writes go through a temp file and rename so a crash
// mid-write never corrupts an existing history.
type DiskStore struct {
	dir string
}

type persistedThread struct {
	Version  int               `json:"version"`
	Thread   Thread            `json:"thread"`
	Messages []message.Message `json:"messages,omitempty"`
}

// NewDiskStore creates the backing directory when missing.
func NewDiskStore(dir string) (*DiskStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("memory: disk store dir is empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("memory: create store dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// GetThreadByID fetches thread metadata or ErrThreadNotFound.
func (s *DiskStore) GetThreadByID(_ context.Context, id string) (*Thread, error) {
	wrapper, err := s.read(id)
	if err != nil {
		return nil, err
	}
	thread := wrapper.Thread
	return &thread, nil
}

// CreateThread writes a fresh thread file. Creating an existing thread is an
// error; use SaveMessages to update history.
func (s *DiskStore) CreateThread(ctx context.Context, thread *Thread) (*Thread, error) {
	if thread == nil {
		return nil, fmt.Errorf("memory: thread is nil")
	}
	created := *thread
	if created.ID == "" {
		return nil, fmt.Errorf("memory: thread id is empty")
	}
	if _, err := s.GetThreadByID(ctx, created.ID); err == nil {
		return nil, fmt.Errorf("memory: thread %s already exists", created.ID)
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	if err := s.write(persistedThread{Version: 1, Thread: created}); err != nil {
		return nil, err
	}
	return &created, nil
}

// SaveMessages replaces the stored history of a thread, creating the thread
// file when it does not exist yet.
func (s *DiskStore) SaveMessages(threadID string, msgs []message.Message) error {
	if strings.TrimSpace(threadID) == "" {
		return fmt.Errorf("memory: thread id is empty")
	}
	wrapper, err := s.read(threadID)
	if err != nil {
		if !errors.Is(err, ErrThreadNotFound) {
			return err
		}
		now := time.Now().UTC()
		wrapper = persistedThread{Version: 1, Thread: Thread{ID: threadID, CreatedAt: now}}
	}
	wrapper.Thread.UpdatedAt = time.Now().UTC()
	wrapper.Messages = message.CloneMessages(msgs)
	return s.write(wrapper)
}

// LoadMessages returns the stored history of a thread. A missing thread
// yields an empty history, not an error.
func (s *DiskStore) LoadMessages(threadID string) ([]message.Message, error) {
	wrapper, err := s.read(threadID)
	if err != nil {
		if errors.Is(err, ErrThreadNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return message.CloneMessages(wrapper.Messages), nil
}

func (s *DiskStore) read(threadID string) (persistedThread, error) {
	var wrapper persistedThread
	data, err := os.ReadFile(s.path(threadID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return wrapper, fmt.Errorf("%w: %s", ErrThreadNotFound, threadID)
		}
		return wrapper, fmt.Errorf("memory: read thread: %w", err)
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return wrapper, fmt.Errorf("memory: decode thread: %w", err)
	}
	return wrapper, nil
}

func (s *DiskStore) write(wrapper persistedThread) error {
	data, err := json.Marshal(wrapper)
	if err != nil {
		return fmt.Errorf("memory: encode thread: %w", err)
	}
	return atomicWriteFile(s.path(wrapper.Thread.ID), data, 0o600)
}

func (s *DiskStore) path(threadID string) string {
	return filepath.Join(s.dir, sanitizePathComponent(threadID)+".json")
}

func sanitizePathComponent(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "thread"
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "thread"
	}
	return b.String()
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		// Windows cannot rename over an existing file.
		_ = os.Remove(path)
		if retry := os.Rename(tmpName, path); retry != nil {
			return retry
		}
	}
	return nil
}
