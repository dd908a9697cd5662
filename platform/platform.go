// Package platform classifies a module's target-architecture descriptor and
// answers the addressing-mode questions the Stabilizer transform needs
// (spec.md 4.2). Grounded on chickadee's platform.Platform interface
// (constructor-returns-interface pattern, one package per architecture) and
// on original_source/pass/Stabilizer.cpp's getPlatform/isDataPCRelative for
// the exact triple-substring classification rules.
package platform

import "strings"

// Architecture is the classification of a target triple into one of the
// three architectures spec.md 4.2 supports plus a catch-all "unknown".
type Architecture string

const (
	X86_64  = Architecture("x86-64")
	X86_32  = Architecture("x86-32")
	PowerPC = Architecture("powerpc")
	Unknown = Architecture("unknown")
)

// Platform answers every addressing/type question the transform needs about
// a module's target, without exposing the raw triple string to callers.
type Platform interface {
	Architecture() Architecture

	// IsDataPCRelative reports whether the target encodes data references
	// as instruction-pointer-relative offsets (spec.md 4.2, 9): true on
	// x86-64 and on Unknown (an aggressive default, kept intentionally but
	// worth reconsidering), false on x86-32 and PowerPC.
	IsDataPCRelative() bool

	// PointerWidthBits is the module data layout's pointer width, 32 or 64.
	PointerWidthBits() int

	// ExtractsFPTrunc reports whether the float-truncate instruction must
	// also be extracted by spec.md 4.5 Step C (true only on PowerPC).
	ExtractsFPTrunc() bool
}

// Classify converts a target triple (module.Target.ArchTriple) into an
// Architecture, matching original_source/pass/Stabilizer.cpp's getPlatform:
// case-insensitive substring search over a small set of known architecture
// tokens, defaulting to Unknown.
func Classify(triple string) Architecture {
	lower := strings.ToLower(triple)

	switch {
	case strings.Contains(lower, "x86_64"), strings.Contains(lower, "amd64"):
		return X86_64
	case strings.Contains(lower, "i386"),
		strings.Contains(lower, "i486"),
		strings.Contains(lower, "i586"),
		strings.Contains(lower, "i686"):
		return X86_32
	case strings.Contains(lower, "powerpc"):
		return PowerPC
	default:
		return Unknown
	}
}

// New returns the Platform for a target triple and pointer width.
func New(triple string, pointerWidthBits int) Platform {
	return NewWithArchitecture(Classify(triple), pointerWidthBits)
}

// generic implements Platform directly from an Architecture. The per-arch
// packages (platform/amd64, platform/x86, platform/ppc) are thin wrappers
// around this same implementation, matching chickadee's platform/amd64
// convention of one importable package per architecture with a
// NewPlatform constructor, for callers who already know their target and
// want to avoid the triple-string round trip.
type generic struct {
	arch             Architecture
	pointerWidthBits int
}

func (p *generic) Architecture() Architecture { return p.arch }

func (p *generic) IsDataPCRelative() bool {
	switch p.arch {
	case X86_64:
		return true
	case X86_32, PowerPC:
		return false
	default: // Unknown
		return true
	}
}

func (p *generic) PointerWidthBits() int { return p.pointerWidthBits }

func (p *generic) ExtractsFPTrunc() bool { return p.arch == PowerPC }

// NewWithArchitecture builds a Platform directly from a known Architecture,
// bypassing triple classification. Used by the per-arch packages.
func NewWithArchitecture(arch Architecture, pointerWidthBits int) Platform {
	return &generic{arch: arch, pointerWidthBits: pointerWidthBits}
}
