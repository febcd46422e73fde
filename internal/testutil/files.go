package testutil

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dalemusser/waffle/pantry/storage"
)

// ErrFakeStorage is returned by FakeFiles for keys marked as failing.
var ErrFakeStorage = errors.New("fake storage failure")

// FakeFiles is a waffle in-memory store that records deletes and can be
// told to fail.
type FakeFiles struct {
	*storage.Memory

	mu        sync.Mutex
	deletes   []string
	failPut   bool
	failPaths map[string]bool
	onDelete  func(key string)
}

func NewFakeFiles() *FakeFiles {
	return &FakeFiles{
		Memory:    storage.NewMemory(storage.MemoryConfig{}),
		failPaths: map[string]bool{},
	}
}

// Seed stores data under each key, as if it had been uploaded earlier.
func (f *FakeFiles) Seed(data []byte, keys ...string) {
	for _, k := range keys {
		if err := f.Memory.PutBytes(context.Background(), k, data, nil); err != nil {
			panic(err)
		}
	}
}

// FailDelete makes Delete(key) return ErrFakeStorage. The attempt is still recorded.
func (f *FakeFiles) FailDelete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPaths[key] = true
}

// FailPuts makes every Put return ErrFakeStorage.
func (f *FakeFiles) FailPuts() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPut = true
}

// OnDelete registers fn to run before each Delete.
func (f *FakeFiles) OnDelete(fn func(key string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onDelete = fn
}

func (f *FakeFiles) Put(ctx context.Context, key string, r io.Reader, opts *storage.PutOptions) error {
	f.mu.Lock()
	fail := f.failPut
	f.mu.Unlock()
	if fail {
		return ErrFakeStorage
	}
	return f.Memory.Put(ctx, key, r, opts)
}

func (f *FakeFiles) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, key)
	fail := f.failPaths[key]
	hook := f.onDelete
	f.mu.Unlock()

	if hook != nil {
		hook(key)
	}
	if fail {
		return ErrFakeStorage
	}
	return f.Memory.Delete(ctx, key)
}

// Deletes returns the keys Delete was called with, in order.
func (f *FakeFiles) Deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

// Has reports whether key is currently stored.
func (f *FakeFiles) Has(key string) bool {
	ok, err := f.Memory.Exists(context.Background(), key)
	return err == nil && ok
}

// Len returns the number of stored objects.
func (f *FakeFiles) Len() int {
	return f.Memory.Count()
}
