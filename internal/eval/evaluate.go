package eval

import (
	"github.com/pkg/errors"

	"github.com/born-ml/etl/internal/expr"
	"github.com/born-ml/etl/internal/simd"
	"github.com/born-ml/etl/internal/tensor"
)

// Assign evaluates dst = e.
func Assign[T tensor.Numeric](c *Context, e tensor.Expr[T], dst tensor.Destination[T]) {
	evaluate[T, assignOp[T]](c, e, dst)
}

// Add evaluates dst += e.
func Add[T tensor.Numeric](c *Context, e tensor.Expr[T], dst tensor.Destination[T]) {
	evaluate[T, addOp[T]](c, e, dst)
}

// Sub evaluates dst -= e.
func Sub[T tensor.Numeric](c *Context, e tensor.Expr[T], dst tensor.Destination[T]) {
	evaluate[T, subOp[T]](c, e, dst)
}

// Mul evaluates dst *= e elementwise.
func Mul[T tensor.Numeric](c *Context, e tensor.Expr[T], dst tensor.Destination[T]) {
	evaluate[T, mulOp[T]](c, e, dst)
}

// Div evaluates dst /= e elementwise.
func Div[T tensor.Numeric](c *Context, e tensor.Expr[T], dst tensor.Destination[T]) {
	evaluate[T, divOp[T]](c, e, dst)
}

// Mod evaluates dst %= e elementwise. It always runs the Scalar strategy.
//
// TODO: give mod a direct and a parallel kernel; the scalar-only path is
// kept for now regardless of size.
func Mod[T tensor.Numeric](c *Context, e tensor.Expr[T], dst tensor.Destination[T]) {
	evaluate[T, modOp[T]](c, e, dst)
}

// Force materializes every temporary of e without writing any destination.
func Force(c *Context, e tensor.Node) {
	if c == nil {
		c = Default()
	}
	c.stats.temporaries.Add(int64(expr.Force(e)))
}

// hostWritable is a container written on the host by an evaluation.
type hostWritable interface {
	EnsureHostCurrent()
	EnsureHostAllocated()
	InvalidateDevice()
	Region() tensor.Region
}

// containers returns the containers a destination writes to.
func containers(n tensor.Node, out []hostWritable) []hostWritable {
	if h, ok := n.(hostWritable); ok {
		return append(out, h)
	}
	for _, child := range n.Children() {
		out = containers(child, out)
	}
	return out
}

func evaluate[T tensor.Numeric, O operator[T]](c *Context, e tensor.Expr[T], dst tensor.Destination[T]) {
	var op O
	if c == nil {
		c = Default()
	}
	if !e.Traits().Generator && e.Size() != dst.Size() {
		panic(errors.Errorf("eval: %v of %d elements into a destination of %d elements",
			op.kind(), e.Size(), dst.Size()).Error())
	}

	written := containers(dst, nil)
	if w, ok := dst.(hostWritable); ok && op.kind() == KindAssign && !e.Aliases(w.Region()) {
		w.EnsureHostAllocated()
	}
	for _, w := range written {
		w.EnsureHostCurrent()
	}
	defer func() {
		for _, w := range written {
			w.InvalidateDevice()
		}
	}()

	if d, ok := e.(expr.Direct[T]); ok && op.kind() == KindAssign && e.Traits().Temporary {
		c.stats.bypasses.Add(1)
		c.logger.V(4).Info("evaluate", "op", op.kind(), "strategy", "direct-evaluate", "size", dst.Size())
		d.DirectEvaluate(dst)
		return
	}

	c.stats.temporaries.Add(int64(expr.Force(e)))
	if dst.Size() == 0 {
		return
	}

	src := expr.Reorder(e, dst.Traits().Order)
	if (!src.Traits().Linear || !dst.Traits().Linear) && src.Aliases(dst.Region()) {
		c.stats.aliases.Add(1)
		c.stats.temporaries.Add(1)

		tmp := tensor.Like[T](dst, dst.Traits().Order)
		run[T, assignOp[T]](c, src, tmp)
		run[T, O](c, tmp, dst)
		if err := tmp.Release(); err != nil {
			c.logger.Error(err, "releasing alias temporary")
		}
		return
	}
	run[T, O](c, src, dst)
}

// run selects a strategy for src and dst, which have the same size and
// storage order, and executes it.
func run[T tensor.Numeric, O operator[T]](c *Context, src tensor.Expr[T], dst tensor.Destination[T]) {
	var op O
	s := c.Settings()
	n := dst.Size()
	lanes := simd.Lanes[T](c.isa)

	strategy := Select(op.kind(), src.Traits(), dst.Traits(), n, s, lanes)
	c.stats.strategies[strategy].Add(1)
	c.logger.V(4).Info("evaluate", "op", op.kind(), "strategy", strategy, "size", n, "lanes", lanes)

	execute[T, O](c, strategy, s, src, dst)
}

func execute[T tensor.Numeric, O operator[T]](c *Context, strategy Strategy, s Settings, src tensor.Expr[T], dst tensor.Destination[T]) {
	n := dst.Size()
	if strategy == Scalar {
		standardLoop[T, O](dst, src, n)
		return
	}

	mem := dst.(tensor.Memory[T]).Memory()
	lanes := simd.Lanes[T](c.isa)
	switch strategy {
	case BulkCopy:
		copy(mem, src.(tensor.Memory[T]).Memory())
	case Direct:
		k := &scalarKernel[T, O]{dst: mem, src: src, unroll: s.Unroll}
		k.run(0, n)
	case Parallel:
		k := &scalarKernel[T, O]{dst: mem, src: src, unroll: s.Unroll}
		c.pool(s.Workers).Run(n, k.run)
	case Vectorized:
		runVector(newVectorKernel[T, O](mem, src, lanes, s.Unroll), 0, n)
	case ParallelVectorized:
		k := newVectorKernel[T, O](mem, src, lanes, s.Unroll)
		c.pool(s.Workers).Run(n, func(first, last int) {
			runVector(k, first, last)
		})
	default:
		panic(errors.Errorf("eval: unknown strategy %v", strategy).Error())
	}
}
