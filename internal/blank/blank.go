// Package blank provides the embedded "no signal" picture served while the
// capture producer is offline.
package blank

import _ "embed"

// Data is a baseline-encoded black JPEG. It must never be mutated.
//
//go:embed blank.jpg
var Data []byte

// Dimensions of the embedded picture.
const (
	Width  = 640
	Height = 480
)
