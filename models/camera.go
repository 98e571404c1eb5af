package models

import "math"

// Optics is the resolved optical parameter snapshot for a bound camera,
// copied out of the scene graph at binding time.
type Optics struct {
	FocalLength        float64 `json:"focal_length_mm"`
	HorizontalAperture float64 `json:"horizontal_aperture_mm"`
	FStop              float64 `json:"fstop"`
	FocusDistance      float64 `json:"focus_distance"` // 0 when fstop is 0 (no DoF)
	ClipNear           float64 `json:"clip_near"`
	ClipFar            float64 `json:"clip_far"`
}

// CameraBinding pairs one resolved camera with its capture configuration
// for a run. Bindings are built once, in camera_name order, and shared
// read-only by the capture loop and the serializer.
type CameraBinding struct {
	Name   string // camera name (scene path base)
	Path   string // full scene path
	Width  int
	Height int

	// Annotators in config order; this order fixes the per-frame
	// payload emission order within the run.
	Annotators []PayloadKind

	ImageFormat string // raster codec for rgb / ir
	AnnotFormat string // container for segmentation label maps

	Optics Optics
}

// IntrinsicsRecord is the per-camera optical metadata exported once per
// run. Vertical aperture and both FOVs are derived, never configured:
// the aspect always follows the target resolution.
type IntrinsicsRecord struct {
	Camera             string  `json:"camera"`
	Path               string  `json:"path"`
	FocalLength        float64 `json:"focal_length_mm"`
	HorizontalAperture float64 `json:"horizontal_aperture_mm"`
	VerticalAperture   float64 `json:"vertical_aperture_mm"`
	Width              int     `json:"width"`
	Height             int     `json:"height"`
	Fx                 float64 `json:"fx"`
	Fy                 float64 `json:"fy"`
	Cx                 float64 `json:"cx"`
	Cy                 float64 `json:"cy"`
	FovHDeg            float64 `json:"fov_h_deg"`
	FovVDeg            float64 `json:"fov_v_deg"`
}

// Intrinsics derives the pixel-space intrinsic matrix parameters for the
// binding. The boolean is false when the optics are incomplete (zero
// focal length or aperture); the record is still filled best-effort so
// the exporter can persist what it has.
func (b *CameraBinding) Intrinsics() (*IntrinsicsRecord, bool) {
	rec := &IntrinsicsRecord{
		Camera:             b.Name,
		Path:               b.Path,
		FocalLength:        b.Optics.FocalLength,
		HorizontalAperture: b.Optics.HorizontalAperture,
		Width:              b.Width,
		Height:             b.Height,
		Cx:                 float64(b.Width) / 2,
		Cy:                 float64(b.Height) / 2,
	}

	if b.Optics.FocalLength <= 0 || b.Optics.HorizontalAperture <= 0 || b.Width <= 0 || b.Height <= 0 {
		return rec, false
	}

	aspect := float64(b.Height) / float64(b.Width)
	rec.VerticalAperture = b.Optics.HorizontalAperture * aspect
	rec.Fx = b.Optics.FocalLength * float64(b.Width) / b.Optics.HorizontalAperture
	rec.Fy = b.Optics.FocalLength * float64(b.Height) / rec.VerticalAperture
	rec.FovHDeg = fovDeg(b.Optics.HorizontalAperture, b.Optics.FocalLength)
	rec.FovVDeg = fovDeg(rec.VerticalAperture, b.Optics.FocalLength)
	return rec, true
}

func fovDeg(aperture, focal float64) float64 {
	return 2 * math.Atan(aperture/(2*focal)) * 180 / math.Pi
}
