package httpx

import (
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryableStatus reports whether a handshake or request status is worth
// another attempt.
func RetryableStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// RetryableDial reports whether a dial failure is transient. resp is the
// handshake response when the server answered, nil otherwise.
func RetryableDial(err error, resp *http.Response) bool {
	if err == nil {
		return false
	}
	if resp != nil {
		return RetryableStatus(resp.StatusCode)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// RetryAfter honours an integer Retry-After header, capped at max.
func RetryAfter(resp *http.Response, fallback, max time.Duration) time.Duration {
	d := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				d = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && d > max {
		d = max
	}
	return d
}

// Jitter spreads d by +/-20%.
func Jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	delta := float64(d) * 0.2
	return time.Duration(float64(d) - delta + rand.Float64()*2*delta)
}
