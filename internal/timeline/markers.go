package timeline

import (
	"math"

	"github.com/rcliao/lesson-studio/internal/model"
)

// MarkerKind distinguishes the play-head from checkpoint markers.
type MarkerKind string

const (
	MarkerPlayHead   MarkerKind = "playhead"
	MarkerCheckpoint MarkerKind = "checkpoint"
)

// Marker is one item drawn on the timeline.
type Marker struct {
	Kind         MarkerKind           `json:"kind"`
	CheckpointID string               `json:"checkpoint_id,omitempty"`
	Type         model.CheckpointType `json:"type,omitempty"`
	TimeSec      float64              `json:"time_sec"`
	Fraction     float64              `json:"fraction"`
}

// Markers returns the play-head followed by one marker per checkpoint, in
// the order given.
func (c *Controller) Markers(cps []model.Checkpoint) []Marker {
	out := make([]Marker, 0, len(cps)+1)
	out = append(out, Marker{Kind: MarkerPlayHead, TimeSec: c.current, Fraction: c.PositionFraction(c.current)})
	for _, cp := range cps {
		out = append(out, Marker{
			Kind:         MarkerCheckpoint,
			CheckpointID: cp.ID,
			Type:         cp.Type(),
			TimeSec:      cp.TimeSec,
			Fraction:     c.PositionFraction(cp.TimeSec),
		})
	}
	return out
}

// Column maps a fraction onto one of width cells.
func Column(fraction float64, width int) int {
	if width <= 1 {
		return 0
	}
	return int(math.Round(Fraction(fraction, 1) * float64(width-1)))
}
