// Package tracking consumes hand-position estimates and annotated video
// frames from an out-of-process tracker.
package tracking

import "image"

// Position is a tracked hand position. X and Y are normalized to [0,1]
// across the camera frame; Z is a relative depth with unconstrained sign.
type Position struct {
	X, Y, Z float32
}

// Center is the neutral pose reported when no hand has ever been seen.
func Center() Position {
	return Position{X: 0.5, Y: 0.5}
}

// Source supplies one position estimate and one annotated frame per call.
// Poll is invoked once per frame before reading either; it must be bounded
// and never retry.
type Source interface {
	// Poll ingests any pending tracker updates.
	Poll()
	// Position returns the most recent hand position and whether a hand is
	// currently tracked. When the bool is false the caller holds its
	// previous transform.
	Position() (Position, bool)
	// Frame returns the latest annotated video frame, nil if none is
	// available this frame.
	Frame() *image.RGBA
	// Close releases the source exactly once.
	Close() error
}

// Disabled is a Source for running without a tracker: never available,
// no frames.
type Disabled struct{}

func (Disabled) Poll()                      {}
func (Disabled) Position() (Position, bool) { return Center(), false }
func (Disabled) Frame() *image.RGBA         { return nil }
func (Disabled) Close() error               { return nil }
