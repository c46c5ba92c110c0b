// Package readfile reads whole files while tolerating writers that are
// mid-save. Editors commonly truncate the target and rewrite it, so a read
// issued at the wrong instant sees a missing, empty, or partially written
// file. Instead of surfacing that noise, each read retries with backoff and
// reports only the last observed failure.
package readfile

import (
	"os"
	"time"

	lterrors "github.com/grovetools/livetune/errors"
	"github.com/grovetools/livetune/logging"
)

// RetryConfig controls how a read retries while a writer holds the file.
type RetryConfig struct {
	// MaxRetries is the number of retries beyond the first attempt.
	MaxRetries int
	// Delay is the sleep before the first retry.
	Delay time.Duration
	// Backoff multiplies the delay after each failed attempt.
	Backoff float64
}

// DefaultRetryConfig returns the standard retry policy: 3 retries, 5ms
// initial delay, 1.5x backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		Delay:      5 * time.Millisecond,
		Backoff:    1.5,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.Delay <= 0 {
		c.Delay = 5 * time.Millisecond
	}
	if c.Backoff < 1.0 {
		c.Backoff = 1.0
	}
	return c
}

// Read returns the complete contents of path, retrying per cfg. On success
// the returned error is nil. On failure the error is the last failure seen;
// earlier transient failures during an editor save are expected and not
// reported.
func Read(path string, cfg RetryConfig) ([]byte, *lterrors.Error) {
	log := logging.NewLogger("readfile")
	cfg = cfg.normalized()
	delay := cfg.Delay

	var lastErr *lterrors.Error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * cfg.Backoff)
		}

		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				lastErr = lterrors.NotFound(path)
			} else if os.IsPermission(err) {
				lastErr = lterrors.AccessDenied(path, err)
			} else {
				lastErr = lterrors.ReadFailed(path, err)
			}
			continue
		}
		if info.Size() == 0 {
			lastErr = lterrors.Empty(path)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsPermission(err) {
				lastErr = lterrors.AccessDenied(path, err)
			} else {
				lastErr = lterrors.ReadFailed(path, err)
			}
			continue
		}
		if len(data) == 0 {
			// Truncated between stat and read.
			lastErr = lterrors.Empty(path)
			continue
		}

		return data, nil
	}

	log.WithField("path", path).Debugf("read failed after %d attempts: %v", cfg.MaxRetries+1, lastErr)
	return nil, lastErr
}
