package scene

import (
	"fmt"
	"strings"
	"sync"
)

// MemoryScene is an in-process scene graph. It backs the synthetic rig
// and the test suite; a renderer-backed Scene would replace it in a
// full deployment.
type MemoryScene struct {
	mu   sync.Mutex
	cams []*Camera // insertion order, which fixes traversal order
}

// NewMemoryScene builds a scene pre-populated with the given cameras.
func NewMemoryScene(cams ...*Camera) *MemoryScene {
	s := &MemoryScene{}
	s.cams = append(s.cams, cams...)
	return s
}

// Find returns cameras at or under root, in insertion order.
func (s *MemoryScene) Find(root string) []*Camera {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := strings.TrimSuffix(root, "/") + "/"
	var out []*Camera
	for _, c := range s.cams {
		if c.Path == root || strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Create adds a camera prim. The path must be unoccupied.
func (s *MemoryScene) Create(cam *Camera) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.cams {
		if c.Path == cam.Path {
			return fmt.Errorf("prim path %s already exists", cam.Path)
		}
	}
	s.cams = append(s.cams, cam)
	return nil
}
