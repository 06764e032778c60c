package link

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidLink matches every validation failure returned by Validate.
	ErrInvalidLink = errors.New("invalid link")

	ErrEmptyInput        = errors.New("empty link")
	ErrMalformedLink     = errors.New("malformed link")
	ErrUnsupportedFormat = errors.New("unsupported link format")
)

// EmptyInputError is returned when the input is empty or whitespace-only.
type EmptyInputError struct{}

func (EmptyInputError) Error() string {
	return "empty string: no link found"
}

func (EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput || target == ErrInvalidLink
}

// MalformedLinkError is returned when the input is not an absolute URL.
type MalformedLinkError struct {
	Link   string
	Reason string
}

func (e MalformedLinkError) Error() string {
	return fmt.Sprintf("malformed link %q: %s", truncate(e.Link, 80), e.Reason)
}

func (MalformedLinkError) Is(target error) bool {
	return target == ErrMalformedLink || target == ErrInvalidLink
}

// UnsupportedFormatError is returned for well-formed URLs that match none of
// the supported templates. Templates lists them for display.
type UnsupportedFormatError struct {
	Link      string
	Templates []string
}

func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported link %q (supported: %s)", truncate(e.Link, 80), strings.Join(e.Templates, ", "))
}

func (UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat || target == ErrInvalidLink
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
