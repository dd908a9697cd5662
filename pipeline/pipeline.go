// Package pipeline is the pass registry a plugin host looks up pipeline
// names against (spec.md 6): "lower-intrinsics" for Intrinsic Lowering and
// "stabilize" for the Stabilizer Transform. Grounded on chickadee's own
// small-registry idiom (analyzer.Analyzer wiring named passes together in
// analyzer/analyzer.go), generalized from a fixed compiler pipeline to a
// name-keyed lookup a host can drive.
package pipeline

import (
	"fmt"

	"github.com/stabilizerproj/gostabilize/diag"
	"github.com/stabilizerproj/gostabilize/ir"
	"github.com/stabilizerproj/gostabilize/lower"
	"github.com/stabilizerproj/gostabilize/stabilizer"
)

// Pass runs one named transformation over m in place.
type Pass func(m *ir.Module, sink *diag.Sink)

// LowerIntrinsics runs Intrinsic Lowering (spec.md 4.1).
func LowerIntrinsics(m *ir.Module, sink *diag.Sink) {
	lower.Run(m, sink.Warnf)
}

// Stabilize returns a Pass that runs the Stabilizer Transform with the
// given sub-pass configuration (spec.md 4, 6).
func Stabilize(cfg stabilizer.Config) Pass {
	return func(m *ir.Module, sink *diag.Sink) {
		stabilizer.Run(m, cfg)
	}
}

// Registry maps a pipeline name to the Pass it triggers. The two names
// spec.md 6 requires ("lower-intrinsics", "stabilize") are always present;
// callers may register additional stabilize-<variant> entries for
// different Config combinations.
type Registry struct {
	passes map[string]Pass
}

// NewRegistry builds a Registry with the two required entries, "stabilize"
// configured with every sub-pass enabled.
func NewRegistry() *Registry {
	r := &Registry{passes: map[string]Pass{}}
	r.Register("lower-intrinsics", LowerIntrinsics)
	r.Register("stabilize", Stabilize(stabilizer.Config{Heap: true, Stack: true, Code: true}))
	return r
}

func (r *Registry) Register(name string, p Pass) {
	r.passes[name] = p
}

// Get returns the pass registered under name, or an error if none is.
func (r *Registry) Get(name string) (Pass, error) {
	p, ok := r.passes[name]
	if !ok {
		return nil, fmt.Errorf("pipeline: no pass registered as %q", name)
	}
	return p, nil
}

// Run looks up name and runs it against m, or returns an error if the name
// is unregistered.
func (r *Registry) Run(name string, m *ir.Module, sink *diag.Sink) error {
	p, err := r.Get(name)
	if err != nil {
		return err
	}
	p(m, sink)
	return nil
}
