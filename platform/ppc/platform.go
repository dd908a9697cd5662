// Package ppc provides the PowerPC Platform, the only supported target
// where the float-truncate instruction is also extracted (spec.md 4.5 Step
// C) and where data addressing is not PC-relative (spec.md 4.2).
package ppc

import "github.com/stabilizerproj/gostabilize/platform"

func NewPlatform(pointerWidthBits int) platform.Platform {
	return platform.NewWithArchitecture(platform.PowerPC, pointerWidthBits)
}
