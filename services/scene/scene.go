// Package scene models the scene-graph service the session depends on.
// The real renderer owns the authoritative scene; this package exposes
// the two capabilities the runner needs — finding camera prims under a
// root and creating missing ones — behind an injected interface so the
// core stays testable without a renderer.
package scene

import (
	"path"
)

// Camera is a camera prim resolved from (or created in) the scene graph.
type Camera struct {
	Path string // full prim path, e.g. /World/robot/cam0

	FocalLength        float64 // mm
	HorizontalAperture float64 // mm
	VerticalAperture   float64 // mm, resolution-derived at creation
	FStop              float64
	FocusDistance      float64 // 0 when depth of field is disabled
	ClipNear           float64
	ClipFar            float64
}

// Name returns the prim path base, which is what camera_name entries
// refer to.
func (c *Camera) Name() string {
	return path.Base(c.Path)
}

// Scene is the injected scene-graph service.
type Scene interface {
	// Find returns every camera prim at or under root, in a stable
	// traversal order.
	Find(root string) []*Camera

	// Create adds a camera prim to the scene. Fails if the path is
	// already occupied.
	Create(cam *Camera) error
}
