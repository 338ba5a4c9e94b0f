package headhunter

import (
	"errors"
	"fmt"
)

// UpstreamError reports a non-2xx answer from the job-posting API. Callers
// map it to their own degraded paths (empty enrichment, 502 at the edge)
// instead of treating it as an internal failure.
type UpstreamError struct {
	Endpoint string
	Status   int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.Endpoint, e.Status)
}

// IsUpstream reports whether err wraps an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
