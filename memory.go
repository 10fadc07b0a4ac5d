package quiver

import (
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Releasable represents any resource that can be released to free memory.
//
// Quiver instances, index levels and arrow tables implement it. Always call
// Release() when done with a resource.
//
//	q, err := quiver.New(payload, nil)
//	if err != nil {
//		return err
//	}
//	defer q.Release()
type Releasable interface {
	Release()
}

// MemoryManager helps track and release multiple resources automatically.
//
// A collaborator that keeps appending incremental payloads holds one Quiver
// per AddRows step; tracking them lets the whole chain be released at once.
// The MemoryManager is safe for concurrent use from multiple goroutines.
//
//	err := quiver.WithMemoryManager(mem, func(manager *quiver.MemoryManager) error {
//		current, err := quiver.New(first, nil, quiver.WithAllocator(manager.Allocator()))
//		if err != nil {
//			return err
//		}
//		manager.Track(current)
//		for _, payload := range increments {
//			next, err := manager.Append(current, payload)
//			if err != nil {
//				return err
//			}
//			current = next
//		}
//		return render(current)
//	})
type MemoryManager struct {
	allocator memory.Allocator
	resources []Releasable
	mu        sync.Mutex // Mutex to synchronize access to resources
}

// NewMemoryManager creates a new memory manager with the given allocator
func NewMemoryManager(allocator memory.Allocator) *MemoryManager {
	return &MemoryManager{
		allocator: allocator,
		resources: make([]Releasable, 0),
	}
}

// Track adds a resource to be managed and automatically released
func (m *MemoryManager) Track(resource Releasable) {
	if resource != nil {
		m.mu.Lock()
		m.resources = append(m.resources, resource)
		m.mu.Unlock()
	}
}

// Count returns the number of tracked resources
func (m *MemoryManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resources)
}

// ReleaseAll releases all tracked resources and clears the tracking list
func (m *MemoryManager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, resource := range m.resources {
		if resource != nil {
			resource.Release()
		}
	}
	m.resources = m.resources[:0] // Clear the slice but keep capacity
}

// Allocator returns the allocator the manager was created with
func (m *MemoryManager) Allocator() memory.Allocator {
	return m.allocator
}

// Append decodes payload with the manager's allocator, appends it to current
// and tracks both the decoded increment and the result
func (m *MemoryManager) Append(current *Quiver, payload []byte, opts ...Option) (*Quiver, error) {
	opts = append([]Option{WithAllocator(m.allocator)}, opts...)
	increment, err := New(payload, nil, opts...)
	if err != nil {
		return nil, err
	}
	m.Track(increment)

	result, err := current.AddRows(increment)
	if err != nil {
		return nil, err
	}
	m.Track(result)
	return result, nil
}

// WithQuiver decodes a payload, runs fn with it and releases it afterwards
func WithQuiver(payload []byte, fn func(*Quiver) error, opts ...Option) error {
	q, err := New(payload, nil, opts...)
	if err != nil {
		return err
	}
	defer q.Release()
	return fn(q)
}

// WithMemoryManager creates a memory manager, executes a function with it, and releases all tracked resources
func WithMemoryManager(allocator memory.Allocator, fn func(*MemoryManager) error) error {
	manager := NewMemoryManager(allocator)
	defer manager.ReleaseAll()
	return fn(manager)
}
