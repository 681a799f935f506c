package repository

import "errors"

var (
	// ErrImageNotFound indicates the stored upload does not exist
	ErrImageNotFound = errors.New("image not found")

	// ErrUnsupportedFormat indicates no registered decoder recognises the file
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrCorruptImage indicates the format was recognised but decoding failed
	ErrCorruptImage = errors.New("corrupt image data")
)
