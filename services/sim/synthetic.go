package sim

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"path"

	"sdg-runner/models"
	"sdg-runner/services/scene"
	"sdg-runner/utils"
)

// Default optics for cameras the synthetic scene seeds itself with
// (35 mm-equivalent 24 mm lens on a standard film back).
const (
	defaultFocalLength = 24.0
	defaultHAperture   = 20.955
	defaultClipNear    = 0.01
	defaultClipFar     = 1_000_000.0
)

// NewSyntheticScene seeds an in-memory scene with one camera per
// requested name under primPath. Names covered by a camera_settings
// entry are left absent so the resolver exercises the creation path.
func NewSyntheticScene(primPath string, names []string, settings []utils.CameraSettings) *scene.MemoryScene {
	covered := make(map[string]bool, len(settings))
	for _, s := range settings {
		covered[s.Name()] = true
	}

	var cams []*scene.Camera
	for _, name := range names {
		if covered[name] {
			continue
		}
		cams = append(cams, &scene.Camera{
			Path:               path.Join(primPath, name),
			FocalLength:        defaultFocalLength,
			HorizontalAperture: defaultHAperture,
			ClipNear:           defaultClipNear,
			ClipFar:            defaultClipFar,
		})
	}
	return scene.NewMemoryScene(cams...)
}

// SyntheticRig is the in-process simulation collaborator: it advances a
// sample counter and synthesizes deterministic payloads per annotator,
// so a full run works end-to-end without a renderer. Content is a
// function of (camera resolution, frame), never of wall clock.
type SyntheticRig struct {
	res  map[string][2]int // camera name -> (w, h)
	step uint64
}

// NewSyntheticRig builds a rig serving every bound camera.
func NewSyntheticRig(bindings []models.CameraBinding) *SyntheticRig {
	res := make(map[string][2]int, len(bindings))
	for _, b := range bindings {
		res[b.Name] = [2]int{b.Width, b.Height}
	}
	return &SyntheticRig{res: res}
}

// Step advances one sample. Honors context cancellation.
func (r *SyntheticRig) Step(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	r.step++
	return nil
}

// Pull synthesizes the latest sample for camera+kind at the given frame.
func (r *SyntheticRig) Pull(camera string, kind models.PayloadKind, frame uint64) (*models.AnnotatorPayload, error) {
	wh, ok := r.res[camera]
	if !ok {
		return nil, fmt.Errorf("synthetic rig: unknown camera %q", camera)
	}
	w, h := wh[0], wh[1]

	p := &models.AnnotatorPayload{
		Kind:   kind,
		Camera: camera,
		Frame:  frame,
		Width:  w,
		Height: h,
	}

	switch kind {
	case models.KindRGB:
		p.Image = gradientRGB(w, h, frame)
	case models.KindIR:
		p.Image = gradientGray(w, h, frame)
	case models.KindDepth:
		p.Depth = depthRamp(w, h, frame)
	case models.KindPose:
		p.Pose = orbitPose(frame)
	case models.KindInstanceSeg:
		p.Labels = quadrantLabels(w, h)
	case models.KindSemanticSeg:
		p.Labels = quadrantLabels(w, h)
		p.Classes = map[uint32]string{
			0: "sky", 1: "terrain", 2: "rock", 3: "robot",
		}
	default:
		return nil, fmt.Errorf("synthetic rig: no generator for annotator %q", kind)
	}
	return p, nil
}

func gradientRGB(w, h int, frame uint64) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8(frame % 256),
				A: 255,
			})
		}
	}
	return img
}

func gradientGray(w, h int, frame uint64) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y + int(frame)) % 256)})
		}
	}
	return img
}

// depthRamp produces raw metric distances growing toward the bottom of
// the image, shifted slightly per frame.
func depthRamp(w, h int, frame uint64) []float32 {
	d := make([]float32, w*h)
	for y := 0; y < h; y++ {
		base := 1.0 + 50.0*float64(y)/float64(h) + 0.1*float64(frame)
		for x := 0; x < w; x++ {
			d[y*w+x] = float32(base)
		}
	}
	return d
}

// orbitPose walks the camera along a 10 m circle, yaw tracking the
// tangent. One revolution every 120 frames.
func orbitPose(frame uint64) *models.PoseSample {
	theta := 2 * math.Pi * float64(frame%120) / 120
	return &models.PoseSample{
		Frame:       frame,
		TimestampNs: utils.NowNano(),
		X:           10 * math.Cos(theta),
		Y:           10 * math.Sin(theta),
		Z:           1.5,
		QW:          math.Cos(theta / 2),
		QZ:          math.Sin(theta / 2),
	}
}

func quadrantLabels(w, h int) []uint32 {
	l := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var id uint32
			if x >= w/2 {
				id = 1
			}
			if y >= h/2 {
				id += 2
			}
			l[y*w+x] = id
		}
	}
	return l
}
