// Package main provides the etl CLI.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/etl/internal/accel"
	"github.com/born-ml/etl/internal/eval"
	"github.com/born-ml/etl/internal/expr"
	"github.com/born-ml/etl/internal/parallel"
	"github.com/born-ml/etl/internal/simd"
	"github.com/born-ml/etl/internal/tensor"
)

const version = "v0.0.1-dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	klog.InitFlags(fs)
	size := fs.Int("n", 1<<20, "number of elements for bench")
	iters := fs.Int("iters", 20, "iterations per strategy for bench")
	workers := fs.Int("workers", eval.DefaultSettings().Workers, "worker count")
	threshold := fs.Int("threshold", eval.DefaultThreshold, "minimum element count of parallel evaluations")
	if err := fs.Parse(args); err != nil {
		return err
	}
	defer klog.Flush()
	defer parallel.Shutdown()

	settings := eval.DefaultSettings()
	settings.Workers = *workers
	settings.Threshold = *threshold

	switch fs.Arg(0) {
	case "version":
		fmt.Printf("etl %s\n", version)
	case "info":
		info(settings)
	case "bench":
		return bench(settings, *size, *iters)
	default:
		usage()
	}
	return nil
}

func usage() {
	fmt.Println("etl - expression evaluation engine")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  info       Show instruction set, lane widths and tunables")
	fmt.Println("  bench      Time every evaluation strategy")
}

func info(s eval.Settings) {
	isa := simd.Detect()
	fmt.Printf("ISA:        %v\n", isa)
	fmt.Printf("Lanes:      float32=%d float64=%d int32=%d int64=%d\n",
		simd.Lanes[float32](isa), simd.Lanes[float64](isa), simd.Lanes[int32](isa), simd.Lanes[int64](isa))
	fmt.Printf("Native:     float32=%d float64=%d (hwy)\n", simd.NativeLanes[float32](), simd.NativeLanes[float64]())
	fmt.Printf("Workers:    %d\n", s.Workers)
	fmt.Printf("Threshold:  %d\n", s.Threshold)
	if err := accel.ProbeWebGPU(); err != nil {
		fmt.Printf("WebGPU:     unavailable (%v)\n", err)
		return
	}
	fmt.Println("WebGPU:     available")
}

type benchCase struct {
	want     eval.Strategy
	settings func(eval.Settings) eval.Settings
	evaluate func(*eval.Context)
}

func bench(s eval.Settings, n, iters int) error {
	const cols = 1024
	if n < cols || n%cols != 0 {
		return errors.Errorf("bench size %d must be a positive multiple of %d", n, cols)
	}
	rows := n / cols

	a, err := filled(rows, cols, 1)
	if err != nil {
		return err
	}
	b, err := filled(rows, cols, 2)
	if err != nil {
		return err
	}
	c, err := tensor.New[float32](tensor.RowMajor, rows, cols)
	if err != nil {
		return errors.Wrap(err, "allocating destination")
	}
	ct, err := tensor.New[float32](tensor.RowMajor, cols, rows)
	if err != nil {
		return errors.Wrap(err, "allocating destination")
	}
	sum := expr.Add[float32](a, b)

	serial := func(s eval.Settings) eval.Settings {
		s.Threshold = n + 1
		return s
	}
	scalarOnly := func(s eval.Settings) eval.Settings {
		s.Vectorize = false
		return s
	}
	same := func(s eval.Settings) eval.Settings { return s }

	assign := func(e tensor.Expr[float32], dst tensor.Destination[float32]) func(*eval.Context) {
		return func(ctx *eval.Context) {
			eval.Assign(ctx, e, dst)
		}
	}
	cases := []benchCase{
		{eval.Scalar, serial, assign(sum, expr.NewTranspose[float32](ct))},
		{eval.Direct, func(s eval.Settings) eval.Settings { return scalarOnly(serial(s)) }, assign(sum, c)},
		{eval.BulkCopy, serial, assign(a, c)},
		{eval.Vectorized, serial, assign(sum, c)},
		{eval.Parallel, scalarOnly, assign(sum, c)},
		{eval.ParallelVectorized, same, assign(sum, c)},
	}

	fmt.Printf("%d float32 elements, %d iterations, %d workers\n", n, iters, s.Workers)
	for _, bc := range cases {
		ctx := eval.NewContext(eval.WithSettings(bc.settings(s)))
		bc.evaluate(ctx)
		ctx.Stats().Reset()

		start := time.Now()
		for i := 0; i < iters; i++ {
			bc.evaluate(ctx)
		}
		elapsed := time.Since(start) / time.Duration(max(iters, 1))

		got := bc.want.String()
		if ctx.Stats().Strategy(bc.want) != int64(iters) {
			got += " (not selected)"
		}
		fmt.Printf("  %-30s %12v\n", got, elapsed)
	}
	return nil
}

func filled(rows, cols int, scale float32) (*tensor.Dense[float32], error) {
	d, err := tensor.New[float32](tensor.RowMajor, rows, cols)
	if err != nil {
		return nil, errors.Wrap(err, "allocating operand")
	}
	for i := 0; i < d.Size(); i++ {
		d.Set(i, float32(i%97)*scale)
	}
	return d, nil
}
