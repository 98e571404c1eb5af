package controller

import (
	"errors"
	"fmt"

	"sdg-runner/models"
	"sdg-runner/services/scene"
	"sdg-runner/utils"
	"sdg-runner/views"
)

// ErrConfigMismatch means the positional per-camera lists violate the
// equal-length invariant. Reported at session start, before any
// filesystem side effect, so a bad config never produces a partial run.
var ErrConfigMismatch = errors.New("camera configuration lists differ in length")

// BuildBindings validates the SDG configuration and produces one
// CameraBinding per requested camera, preserving request order.
//
// Validation happens strictly before camera resolution (which may
// mutate the scene) and before any directory is allocated: list
// lengths, annotator vocabulary, and output formats are all checked so
// that every pre-capture error class surfaces with zero bytes written.
func BuildBindings(cfg *utils.SDGConfig, sc scene.Scene) ([]models.CameraBinding, error) {
	n := len(cfg.CameraNames)
	if len(cfg.CameraResolutions) != n {
		return nil, lengthErr("camera_resolution", len(cfg.CameraResolutions), n)
	}
	if len(cfg.AnnotatorLists) != n {
		return nil, lengthErr("annotator_list", len(cfg.AnnotatorLists), n)
	}
	if len(cfg.ImageFormats) != n {
		return nil, lengthErr("image_format", len(cfg.ImageFormats), n)
	}
	if len(cfg.AnnotFormats) != n {
		return nil, lengthErr("annot_format", len(cfg.AnnotFormats), n)
	}

	kindLists := make([][]models.PayloadKind, n)
	for i := 0; i < n; i++ {
		res := cfg.CameraResolutions[i]
		if len(res) != 2 || res[0] < 1 || res[1] < 1 {
			return nil, fmt.Errorf("%w: camera_resolution[%d] must be a positive [w, h] pair, got %v",
				ErrConfigMismatch, i, res)
		}

		kinds := make([]models.PayloadKind, 0, len(cfg.AnnotatorLists[i]))
		for _, name := range cfg.AnnotatorLists[i] {
			k, ok := models.ParseKind(name)
			if !ok {
				return nil, fmt.Errorf("%w: annotator %q for camera %q",
					views.ErrUnsupportedFormat, name, cfg.CameraNames[i])
			}
			kinds = append(kinds, k)
		}
		kindLists[i] = kinds

		if !views.ImageFormatSupported(cfg.ImageFormats[i]) {
			return nil, fmt.Errorf("%w: image format %q for camera %q",
				views.ErrUnsupportedFormat, cfg.ImageFormats[i], cfg.CameraNames[i])
		}
		if !views.AnnotFormatSupported(cfg.AnnotFormats[i]) {
			return nil, fmt.Errorf("%w: annotation format %q for camera %q",
				views.ErrUnsupportedFormat, cfg.AnnotFormats[i], cfg.CameraNames[i])
		}
	}

	cams, err := scene.Resolve(sc, cfg.PrimPath, cfg.CameraNames, cfg.CameraSettings, cfg.CameraResolutions)
	if err != nil {
		return nil, err
	}

	bindings := make([]models.CameraBinding, n)
	for i, cam := range cams {
		bindings[i] = models.CameraBinding{
			Name:        cfg.CameraNames[i],
			Path:        cam.Path,
			Width:       cfg.CameraResolutions[i][0],
			Height:      cfg.CameraResolutions[i][1],
			Annotators:  kindLists[i],
			ImageFormat: cfg.ImageFormats[i],
			AnnotFormat: cfg.AnnotFormats[i],
			Optics: models.Optics{
				FocalLength:        cam.FocalLength,
				HorizontalAperture: cam.HorizontalAperture,
				FStop:              cam.FStop,
				FocusDistance:      cam.FocusDistance,
				ClipNear:           cam.ClipNear,
				ClipFar:            cam.ClipFar,
			},
		}
		utils.L().Info("bound camera %s  %dx%d  annotators=%v  image=%s annot=%s",
			cam.Path, bindings[i].Width, bindings[i].Height,
			cfg.AnnotatorLists[i], cfg.ImageFormats[i], cfg.AnnotFormats[i])
	}
	return bindings, nil
}

func lengthErr(field string, got, want int) error {
	return fmt.Errorf("%w: %s has %d entries, camera_name has %d", ErrConfigMismatch, field, got, want)
}
