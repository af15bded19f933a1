package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// KV is the flat local key-value store the session token and preferences
// live in.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

type MemoryKV struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (kv *MemoryKV) Get(key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *MemoryKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = value
	return nil
}

func (kv *MemoryKV) Delete(key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.m, key)
	return nil
}

// FileKV keeps the store in a YAML file. Writes go through a temp file and
// a rename so a crash never leaves half a file behind.
type FileKV struct {
	path string
	mu   sync.Mutex
}

func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

func (kv *FileKV) Path() string { return kv.path }

func (kv *FileKV) Get(key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	m, err := kv.read()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (kv *FileKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	m, err := kv.read()
	if err != nil {
		return err
	}
	m[key] = value
	return kv.write(m)
}

func (kv *FileKV) Delete(key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	m, err := kv.read()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return kv.write(m)
}

func (kv *FileKV) read() (map[string]string, error) {
	m := make(map[string]string)
	data, err := os.ReadFile(kv.path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local store: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse local store %s: %w", kv.path, err)
	}
	if m == nil {
		m = make(map[string]string)
	}
	return m, nil
}

func (kv *FileKV) write(m map[string]string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(kv.path), 0o700); err != nil {
		return fmt.Errorf("failed to create local store directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(kv.path), ".local-*.yaml")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), kv.path)
}
