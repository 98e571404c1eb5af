// Package sim defines the simulation collaborators the capture loop
// depends on. The renderer/physics side owns the actual sample
// generation; the loop only ever advances one sample and pulls the
// latest payload per camera+annotator pair.
package sim

import (
	"context"

	"sdg-runner/models"
)

// Stepper advances the simulation by exactly one sample. Step may block
// while the sample renders; an error aborts the run (no retries).
type Stepper interface {
	Step(ctx context.Context) error
}

// PayloadSource returns the latest sample for a camera+annotator pair.
// Pulled once per frame per binding, in the binding's annotator order.
type PayloadSource interface {
	Pull(camera string, kind models.PayloadKind, frame uint64) (*models.AnnotatorPayload, error)
}
