package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/etl/internal/tensor"
)

func TestMatMul(t *testing.T) {
	a := dense(t, tensor.RowMajor, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	b := dense(t, tensor.RowMajor, []float64{7, 8, 9, 10, 11, 12}, 3, 2)

	c, err := tensor.New[float64](tensor.RowMajor, 2, 2)
	require.NoError(t, err)

	MatMul[float64](a, b).DirectEvaluate(c)
	assert.Equal(t, []float64{58, 64, 139, 154}, c.Memory())
}

func TestMatMul_MixedOrders(t *testing.T) {
	a := dense(t, tensor.ColumnMajor, []float64{1, 4, 2, 5, 3, 6}, 2, 3)
	b := dense(t, tensor.RowMajor, []float64{7, 8, 9, 10, 11, 12}, 3, 2)

	c, err := tensor.New[float64](tensor.ColumnMajor, 2, 2)
	require.NoError(t, err)

	MatMul[float64](a, b).DirectEvaluate(c)
	assert.Equal(t, []float64{58, 139, 64, 154}, c.Memory())
}

func TestMatMul_Invalid(t *testing.T) {
	a := dense(t, tensor.RowMajor, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	assert.Panics(t, func() { MatMul[float64](a, a) })
}

func TestTemporary_NestedRead(t *testing.T) {
	a := dense(t, tensor.RowMajor, []int32{1, 2, 3, 4}, 2, 2)
	id := dense(t, tensor.RowMajor, []int32{1, 0, 0, 1}, 2, 2)

	mm := MatMul[int32](a, id)
	e := Add[int32](mm, a)

	assert.True(t, mm.Traits().Temporary)
	assert.False(t, mm.Materialized())
	assert.Panics(t, func() { e.ReadFlat(0) })

	assert.Equal(t, 1, Force(e))
	assert.Equal(t, 0, Force(e))
	assert.True(t, mm.Materialized())

	tr := mm.Traits()
	assert.False(t, tr.Temporary)
	assert.True(t, tr.DMA)
	assert.True(t, tr.Vectorizable)
	assert.True(t, e.Traits().Vectorizable)
	assert.Equal(t, []int32{2, 4, 6, 8}, read[int32](e))
}

func TestTemporary_AliasedDirectEvaluate(t *testing.T) {
	a := dense(t, tensor.RowMajor, []float64{1, 2, 3, 4}, 2, 2)
	b := dense(t, tensor.RowMajor, []float64{0, 1, 1, 0}, 2, 2)

	mm := MatMul[float64](a, b)
	assert.True(t, mm.Aliases(b.Region()))

	// b = a * b
	mm.DirectEvaluate(b)
	assert.Equal(t, []float64{2, 1, 4, 3}, b.Memory())
	assert.True(t, mm.Materialized())
	assert.False(t, mm.Aliases(b.Region()))
}

func TestTemporary_Custom(t *testing.T) {
	src := dense(t, tensor.RowMajor, []float32{3, 1, 2}, 3)
	calls := 0
	rev := NewTemporary[float32]("reverse", tensor.Shape{3}, func(dst tensor.Destination[float32]) {
		calls++
		n := src.Size()
		for i := 0; i < n; i++ {
			dst.Set(i, src.ReadFlat(n-1-i))
		}
	}, src)

	assert.Equal(t, "reverse", rev.Name())
	assert.Len(t, rev.Children(), 1)

	assert.True(t, rev.Materialize())
	assert.False(t, rev.Materialize())
	assert.Equal(t, 1, calls)
	assert.Equal(t, []float32{2, 1, 3}, rev.Memory())
}

func TestNewTemporary_InvalidShape(t *testing.T) {
	assert.Panics(t, func() {
		NewTemporary[float32]("bad", tensor.Shape{-1}, func(tensor.Destination[float32]) {})
	})
}
