package notify

import (
	"errors"
	"fmt"
)

// ErrStatus is wrapped by every channel that receives a non-2xx response.
var ErrStatus = errors.New("notify: unexpected response status")

func statusError(channel string, code int, body string) error {
	if body != "" {
		return fmt.Errorf("%w: %s returned %d: %s", ErrStatus, channel, code, body)
	}
	return fmt.Errorf("%w: %s returned %d", ErrStatus, channel, code)
}
