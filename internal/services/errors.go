package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSpawn marks a missing external tool or a process that failed to
	// start. Fatal to session startup, never retried.
	ErrSpawn = errors.New("spawn error")
	// ErrTranscription marks a recognizer failure on a single chunk. The
	// chunk is discarded and the session continues.
	ErrTranscription = errors.New("transcription error")
	// ErrEncoderCrashed marks an encoder exit outside a planned restart.
	// Fatal to the session.
	ErrEncoderCrashed = errors.New("encoder crashed")
	// ErrCleanup marks a teardown failure. Logged, never propagated.
	ErrCleanup = errors.New("cleanup error")
	// ErrNotFound marks a lookup miss on the control surface.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks a rejected request.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error should move the owning session to the
// error state rather than being absorbed.
func Fatal(err error) bool {
	return errors.Is(err, ErrSpawn) || errors.Is(err, ErrEncoderCrashed)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
