package scene

import (
	"errors"
	"fmt"

	"sdg-runner/utils"
)

// ErrCameraNotFound means a requested camera name matched nothing under
// the traversal root and no camera_settings entry covers it.
var ErrCameraNotFound = errors.New("camera not found in scene")

// Resolve returns one camera per requested name, preserving request
// order. Each name takes the first matching camera found under root;
// an unmatched name with a camera_settings entry triggers creation
// (mutating the scene), otherwise resolution fails.
//
// resolutions supplies the [w, h] pair per name: creation discards any
// configured vertical aperture and recomputes it from the horizontal
// aperture and the target resolution's aspect ratio.
func Resolve(sc Scene, root string, names []string, settings []utils.CameraSettings, resolutions [][]int) ([]*Camera, error) {
	found := sc.Find(root)

	out := make([]*Camera, 0, len(names))
	for i, name := range names {
		cam := firstByName(found, name)
		if cam == nil {
			spec := settingsFor(settings, name)
			if spec == nil {
				return nil, fmt.Errorf("%w: %q under %s (no camera_settings entry)", ErrCameraNotFound, name, root)
			}
			created, err := createFromSettings(sc, spec, resolutions[i])
			if err != nil {
				return nil, fmt.Errorf("create camera %q: %w", name, err)
			}
			cam = created
		}
		out = append(out, cam)
	}
	return out, nil
}

func firstByName(cams []*Camera, name string) *Camera {
	for _, c := range cams {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func settingsFor(settings []utils.CameraSettings, name string) *utils.CameraSettings {
	for i := range settings {
		if settings[i].Name() == name {
			return &settings[i]
		}
	}
	return nil
}

func createFromSettings(sc Scene, spec *utils.CameraSettings, resolution []int) (*Camera, error) {
	w, h := resolution[0], resolution[1]

	cam := &Camera{
		Path:               spec.CameraPath,
		FocalLength:        spec.FocalLength,
		HorizontalAperture: spec.HorizontalAperture,
		// Configured vertical aperture is ignored: the aspect must
		// follow the target resolution or rendered pixels would be
		// anamorphic.
		VerticalAperture: spec.HorizontalAperture * float64(h) / float64(w),
		FStop:            spec.FStop,
	}
	if spec.FStop != 0 {
		cam.FocusDistance = spec.FocusDistance
	}
	if len(spec.ClippingRange) == 2 {
		cam.ClipNear = spec.ClippingRange[0]
		cam.ClipFar = spec.ClippingRange[1]
	}

	if err := sc.Create(cam); err != nil {
		return nil, err
	}
	return cam, nil
}
