package views

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sdg-runner/models"
)

// intrinsicsFile is the fixed, well-known filename under each camera's
// portion of the run directory.
const intrinsicsFile = "intrinsics.json"

// ExportIntrinsics persists a camera's intrinsics record. The record is
// written at most once per camera per run: later calls are no-ops, so
// the file is never rewritten mid-run. Returns whether a write happened.
func (s *Serializer) ExportIntrinsics(rec *models.IntrinsicsRecord) (bool, error) {
	s.mu.Lock()
	if s.intrinsics[rec.Camera] {
		s.mu.Unlock()
		return false, nil
	}
	// Marked before the write: a failed export must not be retried on
	// every frame, it is logged once by the caller and skipped.
	s.intrinsics[rec.Camera] = true
	s.mu.Unlock()

	dir := filepath.Join(s.runDir, rec.Camera)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("create camera dir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshal intrinsics: %w", err)
	}
	path := filepath.Join(dir, intrinsicsFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
