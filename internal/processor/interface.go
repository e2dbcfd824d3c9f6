package processor

import (
	"context"

	"github.com/nguyentantai21042004/clipnorm/internal/media"
)

// Processor defines the per-video normalization pipeline. Process never
// returns an error: every failure is captured in the Result so one bad
// source cannot stop a batch.
type Processor interface {
	Process(ctx context.Context, src media.SourceVideo) Result
}
