package models

import "image"

// PayloadKind identifies one annotator channel attached to a camera.
type PayloadKind int

const (
	KindRGB PayloadKind = iota
	KindIR
	KindDepth
	KindPose
	KindInstanceSeg
	KindSemanticSeg
)

var kindNames = map[PayloadKind]string{
	KindRGB:         "rgb",
	KindIR:          "ir",
	KindDepth:       "depth",
	KindPose:        "pose",
	KindInstanceSeg: "instance",
	KindSemanticSeg: "semantic",
}

func (k PayloadKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKind maps an annotator_list entry to its PayloadKind.
// The second return is false for names outside the vocabulary.
func ParseKind(name string) (PayloadKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// AnnotatorPayload is one annotator sample pulled for one camera at one
// frame. Exactly one data field is populated, selected by Kind; the
// serializer treats the data as an opaque typed blob.
type AnnotatorPayload struct {
	Kind   PayloadKind
	Camera string // originating camera name
	Frame  uint64

	Image  image.Image // rgb / ir raster
	Depth  []float32   // depth, row-major Width*Height, raw metres
	Width  int         // sample width for Depth and Labels
	Height int
	Pose   *PoseSample

	Labels  []uint32          // instance / semantic label map, row-major
	Classes map[uint32]string // optional label id -> semantic class
}
