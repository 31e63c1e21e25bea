// Package detector extracts facial landmarks from images by calling an
// external detector service. The matching engine itself never touches
// pixels; landmark sets are its only input.
package detector

import (
	"context"
	"errors"

	"github.com/kozaktomas/facegate/internal/landmark"
)

var (
	// ErrNoFace is returned when the detector finds no face in the image.
	ErrNoFace = errors.New("no face detected")
	// ErrMultipleFaces is returned when the detector finds more than one
	// face. Verification needs exactly one subject in frame.
	ErrMultipleFaces = errors.New("multiple faces detected")
)

// Detector extracts the landmark set of the single face in an image.
type Detector interface {
	Detect(ctx context.Context, imageData []byte) (landmark.Set, error)
}
