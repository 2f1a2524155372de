package fetch

import (
	"errors"
	"fmt"
)

// ErrFetchFailed matches every error returned by Client.Get.
var ErrFetchFailed = errors.New("fetch failed")

// FetchError describes a failed retrieval. StatusCode is set when the server
// answered with a non-2xx status; Err carries the transport-level cause
// otherwise.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("fetch %s: unexpected status: %d", e.URL, e.StatusCode)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFetchFailed) match any *FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }
