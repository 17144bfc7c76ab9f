package version

import "errors"

var (
	// ErrManifestNotFound is returned when the manifest file does not exist
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrParse is returned when no strategy yields a string version
	ErrParse = errors.New("failed to parse version")
)
