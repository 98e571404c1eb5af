package views

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sdg-runner/models"
)

// Serializer maps annotator payloads to on-disk artifacts inside one
// run directory:
//
//	<run>/<camera>/<shard>/<kind>_<frame>.<ext>   per-frame artifacts
//	<run>/<camera>/pose.csv                       growing pose table
//	<run>/<camera>/intrinsics.json                written once
//
// It exclusively owns the run directory tree for the session's
// lifetime. Methods are safe for concurrent use across cameras; writes
// for a single camera are sequenced by the capture loop.
type Serializer struct {
	runDir string
	epf    int // element_per_folder

	mu          sync.Mutex
	poseWriters map[string]*CSVWriter
	shardsMade  map[string]bool
	intrinsics  map[string]bool
}

// NewSerializer binds a serializer to an already-allocated run dir.
func NewSerializer(runDir string, elementPerFolder int) *Serializer {
	return &Serializer{
		runDir:      runDir,
		epf:         elementPerFolder,
		poseWriters: make(map[string]*CSVWriter),
		shardsMade:  make(map[string]bool),
		intrinsics:  make(map[string]bool),
	}
}

// RunDir returns the run directory this serializer writes into.
func (s *Serializer) RunDir() string { return s.runDir }

// Write routes one payload to its encoder. The payload's frame index
// addresses the shard; the binding supplies the configured formats.
func (s *Serializer) Write(p *models.AnnotatorPayload, b *models.CameraBinding) error {
	switch p.Kind {
	case models.KindRGB, models.KindIR:
		return s.writeRaster(p, b)
	case models.KindDepth:
		return s.writeDepth(p, b)
	case models.KindPose:
		return s.writePose(p, b)
	case models.KindInstanceSeg, models.KindSemanticSeg:
		return s.writeLabels(p, b)
	default:
		return fmt.Errorf("%w: no serializer for annotator %q", ErrUnsupportedFormat, p.Kind)
	}
}

func (s *Serializer) writeRaster(p *models.AnnotatorPayload, b *models.CameraBinding) error {
	if !ImageFormatSupported(b.ImageFormat) {
		return fmt.Errorf("%w: image format %q", ErrUnsupportedFormat, b.ImageFormat)
	}
	dir, err := s.shardDir(b.Name, p.Frame)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, artifactName(p.Kind, p.Frame, ImageExt(b.ImageFormat)))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := EncodeImage(f, p.Image, b.ImageFormat); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func (s *Serializer) writeDepth(p *models.AnnotatorPayload, b *models.CameraBinding) error {
	dir, err := s.shardDir(b.Name, p.Frame)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, artifactName(p.Kind, p.Frame, "npy"))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteNPYFloat32(f, p.Depth, p.Width, p.Height); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func (s *Serializer) writeLabels(p *models.AnnotatorPayload, b *models.CameraBinding) error {
	if !AnnotFormatSupported(b.AnnotFormat) {
		return fmt.Errorf("%w: annotation format %q", ErrUnsupportedFormat, b.AnnotFormat)
	}
	dir, err := s.shardDir(b.Name, p.Frame)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, artifactName(p.Kind, p.Frame, AnnotExt(b.AnnotFormat)))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	switch b.AnnotFormat {
	case "npy":
		err = WriteNPYUint32(f, p.Labels, p.Width, p.Height)
	case "png":
		err = EncodeImage(f, LabelsToGray16(p.Labels, p.Width, p.Height), "png")
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	// Accompanying id -> class map, when the annotator supplies one.
	if len(p.Classes) > 0 {
		mapPath := filepath.Join(dir, fmt.Sprintf("%s_labels_%06d.json", p.Kind, p.Frame))
		data, err := json.MarshalIndent(p.Classes, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal label map: %w", err)
		}
		if err := os.WriteFile(mapPath, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", mapPath, err)
		}
	}
	return nil
}

// writePose appends one row to the camera's pose table. The table is a
// single growing CSV at camera granularity, deliberately not sharded.
func (s *Serializer) writePose(p *models.AnnotatorPayload, b *models.CameraBinding) error {
	w, err := s.poseWriter(b.Name)
	if err != nil {
		return err
	}
	return w.WriteRow(p.Pose.CSVRow())
}

func (s *Serializer) poseWriter(camera string) (*CSVWriter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.poseWriters[camera]; ok {
		return w, nil
	}
	dir := filepath.Join(s.runDir, camera)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create camera dir %s: %w", dir, err)
	}
	w, err := NewCSVWriter(filepath.Join(dir, "pose.csv"), 0, models.PoseSample{}.CSVHeader())
	if err != nil {
		return nil, err
	}
	s.poseWriters[camera] = w
	return w, nil
}

// shardDir resolves (camera, frame) to the shard directory, creating it
// the first time a frame lands in it. Creation is idempotent.
func (s *Serializer) shardDir(camera string, frame uint64) (string, error) {
	dir := filepath.Join(s.runDir, camera, ShardName(ShardIndex(frame, s.epf)))

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.shardsMade[dir] {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create shard dir %s: %w", dir, err)
		}
		s.shardsMade[dir] = true
	}
	return dir, nil
}

// PoseRows returns the number of pose rows written for a camera.
func (s *Serializer) PoseRows(camera string) uint64 {
	s.mu.Lock()
	w, ok := s.poseWriters[camera]
	s.mu.Unlock()
	if !ok {
		return 0
	}
	return w.Rows()
}

// Flush pushes buffered pose rows to disk without closing the tables.
func (s *Serializer) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.poseWriters {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes every pose table. Called exactly once at the
// end of the session, including the abort path, so completed frames'
// rows always reach disk.
func (s *Serializer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first error
	for _, w := range s.poseWriters {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.poseWriters = make(map[string]*CSVWriter)
	return first
}

func artifactName(kind models.PayloadKind, frame uint64, ext string) string {
	return fmt.Sprintf("%s_%06d.%s", kind, frame, ext)
}
