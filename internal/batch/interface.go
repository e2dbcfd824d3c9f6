package batch

import "context"

// Runner normalizes every source video under the input directory.
type Runner interface {
	// Run discovers the input tree and processes each source on the worker
	// pool. Only a discovery failure is returned as an error; per-source
	// failures are recorded in the Summary.
	Run(ctx context.Context) (Summary, error)
	// Handle processes a single file outside a batch, for watch mode.
	Handle(ctx context.Context, path string) error
	// Stats returns the running counters.
	Stats() Stats
}
