package models

// PoseSample holds one camera pose: position plus orientation quaternion.
// Rows accumulate in a single pose table per camera per run.
type PoseSample struct {
	Frame       uint64  `json:"frame"`
	TimestampNs int64   `json:"timestamp_ns"`
	X           float64 `json:"x"` // metres, world frame
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	QW          float64 `json:"qw"` // unit quaternion, scalar first
	QX          float64 `json:"qx"`
	QY          float64 `json:"qy"`
	QZ          float64 `json:"qz"`
}

func (PoseSample) CSVHeader() []string {
	return []string{
		"frame", "timestamp_ns",
		"x", "y", "z",
		"qw", "qx", "qy", "qz",
	}
}

func (p *PoseSample) CSVRow() []string {
	return []string{
		utoa64(p.Frame),
		itoa64(p.TimestampNs),
		ftoa(p.X, 6), ftoa(p.Y, 6), ftoa(p.Z, 6),
		ftoa(p.QW, 6), ftoa(p.QX, 6), ftoa(p.QY, 6), ftoa(p.QZ, 6),
	}
}
