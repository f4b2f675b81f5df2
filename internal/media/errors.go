package media

import (
	"fmt"
)

// ExtractionFailedError means every metadata tier was exhausted without a
// classifiable fallback.
type ExtractionFailedError struct {
	URL        string
	Diagnostic string
	Cause      error
}

func (e *ExtractionFailedError) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("media: metadata extraction failed for %s: %s", e.URL, e.Diagnostic)
	}
	return fmt.Sprintf("media: metadata extraction failed for %s", e.URL)
}

func (e *ExtractionFailedError) Unwrap() error { return e.Cause }

// LinkResolutionError means a download URL could not be obtained after the
// full retry ladder. Diagnostic carries the tool's stderr tail.
type LinkResolutionError struct {
	URL        string
	Quality    string
	Diagnostic string
	Cause      error
}

func (e *LinkResolutionError) Error() string {
	return fmt.Sprintf("media: could not resolve download link for %s (quality %q): %s", e.URL, e.Quality, e.Diagnostic)
}

func (e *LinkResolutionError) Unwrap() error { return e.Cause }

// UpstreamFetchError means the resolved media URL itself was unreachable or
// answered with a non-2xx status.
type UpstreamFetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *UpstreamFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("media: upstream fetch failed (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("media: upstream fetch failed: %v", e.Cause)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Cause }

// TranscodeError means the external tool exited non-zero while remuxing or
// extracting audio.
type TranscodeError struct {
	Diagnostic string
	Cause      error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("media: transcode failed: %s", e.Diagnostic)
}

func (e *TranscodeError) Unwrap() error { return e.Cause }

// StreamInterruptedError records a relay that broke after bytes were already
// written. It is only ever logged; by then the response status is immutable.
type StreamInterruptedError struct {
	BytesWritten int64
	Cause        error
}

func (e *StreamInterruptedError) Error() string {
	return fmt.Sprintf("media: stream interrupted after %d bytes: %v", e.BytesWritten, e.Cause)
}

func (e *StreamInterruptedError) Unwrap() error { return e.Cause }
