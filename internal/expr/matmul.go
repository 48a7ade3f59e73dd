package expr

import (
	"fmt"

	"github.com/born-ml/etl/internal/parallel"
	"github.com/born-ml/etl/internal/tensor"
)

// matMulRows is the minimum number of rows per worker of a matrix product.
const matMulRows = 8

// MatMul returns the matrix product of two 2-D expressions as a temporary.
// Rows of the result are computed in parallel. Panics when the inner
// dimensions differ.
func MatMul[T tensor.Numeric](a, b tensor.Expr[T]) *Temporary[T] {
	ad, bd := a.Dims(), b.Dims()
	if len(ad) != 2 || len(bd) != 2 || ad[1] != bd[0] {
		panic(fmt.Sprintf("expr: cannot multiply %v by %v", ad, bd))
	}
	m, k, n := ad[0], ad[1], bd[1]

	return NewTemporary[T]("mmul", tensor.Shape{m, n}, func(dst tensor.Destination[T]) {
		at, bt := reader[T](a), reader[T](b)
		ao, bo, do := a.Traits().Order, b.Traits().Order, dst.Traits().Order

		cfg := parallel.DefaultConfig()
		cfg.MinChunkSize = matMulRows
		parallel.For(m, func(i int) {
			for j := 0; j < n; j++ {
				var sum T
				for p := 0; p < k; p++ {
					sum += at(index2(ao, m, k, i, p)) * bt(index2(bo, k, n, p, j))
				}
				dst.Set(index2(do, m, n, i, j), sum)
			}
		}, cfg)
	}, a, b)
}

// reader returns flat element access to e, reading memory directly when e
// exposes it.
func reader[T tensor.Numeric](e tensor.Expr[T]) func(int) T {
	if mem, ok := e.(tensor.Memory[T]); ok && e.Traits().DMA {
		data := mem.Memory()
		return func(i int) T { return data[i] }
	}
	return e.ReadFlat
}

func index2(order tensor.Order, rows, cols, i, j int) int {
	if order == tensor.ColumnMajor {
		return i + j*rows
	}
	return i*cols + j
}
