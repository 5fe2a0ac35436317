package filestore

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Memory is an in-process Store. Directory listings come back in insertion
// order, which lets callers exercise orderings a real filesystem would not
// produce.
type Memory struct {
	mu    sync.Mutex
	dirs  map[string][]string // dir -> child names in insertion order
	files map[string][]byte
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		dirs:  make(map[string][]string),
		files: make(map[string][]byte),
	}
}

// AddFile stores data at path, creating parent directories as needed.
func (m *Memory) AddFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.mkdirAllLocked(filepath.Dir(path))
	if _, ok := m.files[path]; !ok {
		parent := filepath.Dir(path)
		m.dirs[parent] = append(m.dirs[parent], filepath.Base(path))
	}
	m.files[path] = append([]byte(nil), data...)
}

// File returns the content stored at path.
func (m *Memory) File(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[filepath.Clean(path)]
	return data, ok
}

func (m *Memory) IsDir(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.dirs[filepath.Clean(path)]
	return ok, nil
}

func (m *Memory) MkdirAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if _, ok := m.files[path]; ok {
		return fmt.Errorf("mkdir %s: not a directory", path)
	}
	m.mkdirAllLocked(path)
	return nil
}

func (m *Memory) mkdirAllLocked(path string) {
	if _, ok := m.dirs[path]; ok {
		return
	}
	m.dirs[path] = nil
	parent := filepath.Dir(path)
	if parent == path {
		return
	}
	m.mkdirAllLocked(parent)
	m.dirs[parent] = append(m.dirs[parent], filepath.Base(path))
}

func (m *Memory) List(dir string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir = filepath.Clean(dir)
	names, ok := m.dirs[dir]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", dir, ErrNotExist)
	}
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		if _, isDir := m.dirs[p]; isDir {
			entries = append(entries, Entry{Name: name, IsDir: true})
			continue
		}
		entries = append(entries, Entry{Name: name, IsRegular: true, Size: int64(len(m.files[p]))})
	}
	return entries, nil
}

func (m *Memory) ReadBytes(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) WriteText(path, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	parent := filepath.Dir(path)
	if _, ok := m.dirs[parent]; !ok {
		return fmt.Errorf("write %s: parent %w", path, ErrNotExist)
	}
	if _, ok := m.dirs[path]; ok {
		return fmt.Errorf("write %s: is a directory", path)
	}
	if _, ok := m.files[path]; !ok {
		m.dirs[parent] = append(m.dirs[parent], filepath.Base(path))
	}
	m.files[path] = []byte(text)
	return nil
}
