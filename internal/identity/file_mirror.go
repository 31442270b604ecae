package identity

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileMirror stores identity fields in a YAML file. Every write replaces
// the file atomically, so concurrent CLI sessions see either the old or
// the new document.
type FileMirror struct {
	path string
	log  *zap.Logger

	mu   sync.Mutex
	last map[string]string
}

// NewFileMirror creates a mirror backed by path.
func NewFileMirror(path string, log *zap.Logger) *FileMirror {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileMirror{path: filepath.Clean(path), log: log, last: map[string]string{}}
}

func (m *FileMirror) Load(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fields, err := m.read()
	if err != nil {
		return nil, err
	}
	m.last = copyFields(fields)
	return fields, nil
}

func (m *FileMirror) Write(ctx context.Context, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.read()
	if err != nil {
		return err
	}
	for k, v := range fields {
		current[k] = v
	}
	if err := m.replace(current); err != nil {
		return err
	}
	m.last = current
	return nil
}

func (m *FileMirror) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove identity file: %w", err)
	}
	m.last = map[string]string{}
	return nil
}

// Watch reports changes made to the file by other processes until ctx is
// done. The parent directory is watched because writes replace the file.
func (m *FileMirror) Watch(ctx context.Context) (<-chan Change, error) {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create identity directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	out := make(chan Change, 16)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != m.path {
					continue
				}
				for _, ch := range m.diff() {
					select {
					case out <- ch:
					case <-ctx.Done():
						return
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.log.Warn("Identity file watcher error", zap.Error(err))
			}
		}
	}()
	return out, nil
}

// diff re-reads the file and returns the keys that differ from the last
// state this mirror saw.
func (m *FileMirror) diff() []Change {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.read()
	if err != nil {
		m.log.Warn("Failed to re-read identity file", zap.Error(err))
		return nil
	}

	var changes []Change
	if len(current) == 0 && len(m.last) > 0 {
		changes = append(changes, Change{Cleared: true})
	} else {
		for k, v := range current {
			if prev, ok := m.last[k]; !ok || prev != v {
				changes = append(changes, Change{Key: k, Value: v})
			}
		}
	}
	m.last = current
	return changes
}

func (m *FileMirror) read() (map[string]string, error) {
	fields := map[string]string{}
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fields, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read identity file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse identity file: %w", err)
	}
	if fields == nil {
		fields = map[string]string{}
	}
	return fields, nil
}

func (m *FileMirror) replace(fields map[string]string) error {
	data, err := yaml.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".identity-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write identity: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write identity: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("failed to replace identity file: %w", err)
	}
	return nil
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
