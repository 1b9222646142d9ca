package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

var (
	// ErrLaunchFailed is matched by every *LaunchError.
	ErrLaunchFailed = errors.New("browser launch failed")

	// ErrNavigation is matched by every *NavigationError.
	ErrNavigation = errors.New("navigation failed")

	// ErrPageLoadTimeout is matched by navigation errors caused by the
	// page-load timeout.
	ErrPageLoadTimeout = errors.New("page load timeout")

	ErrDriverClosed = errors.New("browser driver closed")
	ErrTabClosed    = errors.New("browser tab closed")
)

// LaunchError reports which launch stage failed.
type LaunchError struct {
	Stage string // install, run, launch or options
	Err   error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch browser (%s): %v", e.Stage, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

func (e *LaunchError) Is(target error) bool {
	return target == ErrLaunchFailed
}

// NavigationError wraps a failed Navigate.
type NavigationError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *NavigationError) Error() string {
	if isTimeout(e.Err) {
		return fmt.Sprintf("navigate %s: timed out after %s", e.URL, e.Timeout)
	}
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

func (e *NavigationError) Is(target error) bool {
	switch target {
	case ErrNavigation:
		return true
	case ErrPageLoadTimeout:
		return isTimeout(e.Err)
	}
	return false
}

// IsTimeout reports whether err was caused by a page-load or context
// timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrPageLoadTimeout) || isTimeout(err)
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, playwright.ErrTimeout) {
		return true
	}
	// Playwright reports "Timeout 30000ms exceeded." on older drivers
	msg := err.Error()
	return strings.Contains(msg, "Timeout") && strings.Contains(msg, "exceeded")
}
