package ai

import "fmt"

// UpstreamError carries a third-party API failure so callers can propagate
// the original status code.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream error: status %d", e.Status)
	}
	return fmt.Sprintf("upstream error: status %d: %s", e.Status, e.Message)
}
