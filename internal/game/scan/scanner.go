package scan

import (
	"context"
	"errors"
	"fmt"
)

// ErrScanCancelled is returned when the user backs out of scanning.
var ErrScanCancelled = errors.New("scan: cancelled")

// ErrScannerBusy is returned by ChannelScanner producers when an event is
// already waiting to be consumed.
var ErrScannerBusy = errors.New("scan: event already pending")

// CodeScanner yields decoded text from the device's code scanner.
type CodeScanner interface {
	// Scan blocks until a code is decoded, the user cancels, the scanner
	// fails, or ctx ends.
	Scan(ctx context.Context) (string, error)
}

// Permission is the camera permission status reported by the platform.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionPrompt  Permission = "prompt"
)

// CameraPermission requests camera access from the platform.
type CameraPermission interface {
	Request(ctx context.Context) (Permission, error)
}

// PermissionDeniedError carries the platform's opaque denial reason.
type PermissionDeniedError struct {
	Reason string
}

// Error implements error.
func (e *PermissionDeniedError) Error() string {
	if e.Reason == "" {
		return "camera permission denied"
	}
	return "camera permission denied: " + e.Reason
}

// ScannerFailure is a scanner-side error with an opaque reason.
type ScannerFailure struct {
	Reason string
}

// Error implements error.
func (e *ScannerFailure) Error() string { return "scanner failed: " + e.Reason }

// FixedPermission answers every Request with the same status.
type FixedPermission struct {
	Status Permission
	Reason string
}

// Request returns Status, or a PermissionDeniedError when Status is not granted.
func (f FixedPermission) Request(context.Context) (Permission, error) {
	if f.Status != PermissionGranted {
		return f.Status, &PermissionDeniedError{Reason: f.Reason}
	}
	return f.Status, nil
}

// ScanWithPermission requests camera access and, once granted, scans one code.
//
// Postcondition: Returns a *PermissionDeniedError without touching scanner
// when access is not granted.
func ScanWithPermission(ctx context.Context, perm CameraPermission, scanner CodeScanner) (string, error) {
	status, err := perm.Request(ctx)
	if err != nil {
		var denied *PermissionDeniedError
		if errors.As(err, &denied) {
			return "", err
		}
		return "", fmt.Errorf("requesting camera permission: %w", err)
	}
	if status != PermissionGranted {
		return "", &PermissionDeniedError{}
	}
	return scanner.Scan(ctx)
}

type eventKind int

const (
	eventDecoded eventKind = iota
	eventCancelled
	eventFailed
)

type event struct {
	kind eventKind
	text string
}

// ChannelScanner is a CodeScanner fed by events pushed from the presentation
// layer. At most one event may be pending at a time.
type ChannelScanner struct {
	events chan event
}

// NewChannelScanner creates an idle ChannelScanner.
func NewChannelScanner() *ChannelScanner {
	return &ChannelScanner{events: make(chan event, 1)}
}

// Decoded reports decoded text.
func (s *ChannelScanner) Decoded(text string) error { return s.push(event{kind: eventDecoded, text: text}) }

// Cancelled reports that the user backed out.
func (s *ChannelScanner) Cancelled() error { return s.push(event{kind: eventCancelled}) }

// Failed reports a scanner failure with an opaque reason.
func (s *ChannelScanner) Failed(reason string) error {
	return s.push(event{kind: eventFailed, text: reason})
}

func (s *ChannelScanner) push(e event) error {
	select {
	case s.events <- e:
		return nil
	default:
		return ErrScannerBusy
	}
}

// Scan blocks for the next event.
//
// Postcondition: Returns the decoded text, ErrScanCancelled, a
// *ScannerFailure, or ctx.Err().
func (s *ChannelScanner) Scan(ctx context.Context) (string, error) {
	select {
	case e := <-s.events:
		switch e.kind {
		case eventCancelled:
			return "", ErrScanCancelled
		case eventFailed:
			return "", &ScannerFailure{Reason: e.text}
		default:
			return e.text, nil
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Drain discards any pending event.
func (s *ChannelScanner) Drain() {
	select {
	case <-s.events:
	default:
	}
}
