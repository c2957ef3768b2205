package domain

import "errors"

var (
	// ErrNotFound is returned when a hierarchy node or product id is absent from the snapshot.
	ErrNotFound = errors.New("not found")

	// ErrMalformedHierarchy is returned when an ancestor walk revisits a node,
	// exceeds the depth bound or follows a dangling parent link.
	ErrMalformedHierarchy = errors.New("malformed hierarchy")

	// ErrInvalidConfiguration is returned by constructors whose parameters fail validation.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
