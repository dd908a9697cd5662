// Package x86 provides the 32-bit x86 Platform.
package x86

import "github.com/stabilizerproj/gostabilize/platform"

func NewPlatform() platform.Platform {
	return platform.NewWithArchitecture(platform.X86_32, 32)
}
