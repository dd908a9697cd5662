// Command stabilize loads one or more YAML module fixtures, runs Intrinsic
// Lowering and the Stabilizer Transform over each, and prints the
// resulting module tree. It stands in for the plugin host spec.md 6
// describes as out of scope: a real host loads IR from a compiler
// front end, not YAML.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/stabilizerproj/gostabilize/diag"
	"github.com/stabilizerproj/gostabilize/ir"
	"github.com/stabilizerproj/gostabilize/pipeline"
	"github.com/stabilizerproj/gostabilize/stabilizer"
)

var (
	stabilizeHeap  = flag.Bool("stabilize-heap", false, "enable heap randomization")
	stabilizeStack = flag.Bool("stabilize-stack", false, "enable stack randomization")
	stabilizeCode  = flag.Bool("stabilize-code", false, "enable code randomization")
	lowerFirst     = flag.Bool("lower-intrinsics", true, "run intrinsic lowering before stabilizing")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: stabilize [options] <fixture.yaml>...\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	sink := diag.NewSink(os.Stderr)

	registry := pipeline.NewRegistry()
	registry.Register("stabilize", pipeline.Stabilize(stabilizer.Config{
		Heap:  *stabilizeHeap,
		Stack: *stabilizeStack,
		Code:  *stabilizeCode,
	}))

	for _, fileName := range flag.Args() {
		fmt.Println("=====================")
		fmt.Println("File name:", fileName)
		fmt.Println("---------------------")

		content, err := os.ReadFile(fileName)
		if err != nil {
			fmt.Println("ReadFile error:", err)
			continue
		}

		fx, err := LoadFixture(content)
		if err != nil {
			fmt.Println("fixture error:", err)
			continue
		}

		m, err := fx.Build()
		if err != nil {
			fmt.Println("build error:", err)
			continue
		}

		if *lowerFirst {
			if err := registry.Run("lower-intrinsics", m, sink); err != nil {
				fmt.Println("pipeline error:", err)
				continue
			}
		}

		if err := registry.Run("stabilize", m, sink); err != nil {
			fmt.Println("pipeline error:", err)
			continue
		}

		fmt.Println(ir.TreeString(m))
	}
}
