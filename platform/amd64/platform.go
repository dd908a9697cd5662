// Package amd64 provides the x86-64 Platform, for callers that already
// know their target rather than classifying a triple string. Grounded on
// chickadee's platform/amd64.NewPlatform constructor-returns-interface
// pattern.
package amd64

import "github.com/stabilizerproj/gostabilize/platform"

func NewPlatform() platform.Platform {
	return platform.NewWithArchitecture(platform.X86_64, 64)
}
