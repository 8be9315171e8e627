// Package hosterr classifies accounting-host failures into a closed set of
// kinds, each carrying remedies that front ends show verbatim.
package hosterr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Markers tag an error with a kind. Use Mark to attach one while keeping the cause.
var (
	ErrSdkNotInstalled  = errors.New("request processor is not installed")
	ErrSdkNotRegistered = errors.New("request processor is not registered")
	ErrAccessDenied     = errors.New("access denied by accounting host")
	ErrFileNotFound     = errors.New("company file not found")
	ErrConnectionFailed = errors.New("connection to accounting host failed")
	ErrProtocolRejected = errors.New("request rejected by accounting host")
)

// Mark tags err with marker so Classify reports the marker's kind.
func Mark(err error, marker error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, marker)
}

// HostError is a failure reported by the request processor together with
// its HRESULT code.
type HostError struct {
	Op          string
	Code        uint32
	Description string
}

func (e *HostError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%s failed: 0x%08X", e.Op, e.Code)
	}
	return fmt.Sprintf("%s failed: 0x%08X: %s", e.Op, e.Code, e.Description)
}

func (e *HostError) HResult() uint32 {
	return e.Code
}

type coded interface {
	HResult() uint32
}
