// Package assets holds the files compiled into the viewer.
package assets

import _ "embed"

// SampleSVG is the document displayed by the viewer.
//
//go:embed sample.svg
var SampleSVG []byte

// Settings is the YAML source of the viewer settings.
//
//go:embed settings.yaml
var Settings []byte
