package pngicon

import "errors"

var (
	// ErrInvalidSize is returned when an icon size is not a positive PNG dimension.
	ErrInvalidSize = errors.New("invalid icon size")
	// ErrWriteIcon wraps the filesystem error of a failed icon write.
	ErrWriteIcon = errors.New("failed to write icon")

	ErrInvalidSignature = errors.New("invalid PNG signature")
	ErrTruncated        = errors.New("truncated PNG stream")
	ErrChecksumMismatch = errors.New("chunk checksum mismatch")
	ErrInvalidIcon      = errors.New("invalid icon")
)
