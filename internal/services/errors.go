package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMetadata marks an unreadable or invalid source video. It is fatal
	// to the whole export request; nothing can proceed without metadata.
	ErrMetadata = errors.New("metadata error")
	// ErrEncodeInvocation marks a nonzero exit from the external encoder.
	ErrEncodeInvocation = errors.New("encode invocation error")
	// ErrSizeBudget marks an optimization run that exhausted its attempts
	// without meeting the platform byte budget.
	ErrSizeBudget = errors.New("size budget exceeded")
	// ErrFilesystem marks temp directory, stat, or rename failures.
	ErrFilesystem = errors.New("filesystem error")
	// ErrValidation marks rejected user input such as an out-of-bounds crop.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrFilesystem
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether the error should abort the entire export request
// rather than a single platform.
func Fatal(err error) bool {
	return errors.Is(err, ErrMetadata)
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
