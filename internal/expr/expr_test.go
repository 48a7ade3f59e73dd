package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/etl/internal/tensor"
)

func dense[T tensor.Numeric](t *testing.T, order tensor.Order, data []T, dims ...int) *tensor.Dense[T] {
	t.Helper()
	d, err := tensor.FromSlice(data, order, dims...)
	require.NoError(t, err)
	return d
}

func read[T tensor.Numeric](e tensor.Expr[T]) []T {
	out := make([]T, e.Size())
	for i := range out {
		out[i] = e.ReadFlat(i)
	}
	return out
}

func TestBinary_ReadFlat(t *testing.T) {
	a := dense(t, tensor.RowMajor, []float64{1, 2, 3, 4}, 4)
	b := dense(t, tensor.RowMajor, []float64{10, 20, 30, 40}, 4)

	tests := []struct {
		name string
		e    tensor.Expr[float64]
		want []float64
	}{
		{"add", Add[float64](a, b), []float64{11, 22, 33, 44}},
		{"sub", Sub[float64](b, a), []float64{9, 18, 27, 36}},
		{"mul", Mul[float64](a, b), []float64{10, 40, 90, 160}},
		{"div", Div[float64](b, a), []float64{10, 10, 10, 10}},
		{"mod", Mod[float64](b, NewScalar(7.0)), []float64{3, 6, 2, 5}},
		{"nested", Add[float64](Mul[float64](a, NewScalar(2.0)), b), []float64{12, 24, 36, 48}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, read(tt.e)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBinary_Load(t *testing.T) {
	a := dense(t, tensor.RowMajor, []float32{1, 2, 3, 4, 5, 6, 7, 8}, 8)
	e := Add[float32](a, NewScalar[float32](1))

	v := e.Load(4, 4)
	assert.Equal(t, []float32{6, 7, 8, 9}, v.Values())
}

func TestBinary_ShapeMismatch(t *testing.T) {
	a := dense(t, tensor.RowMajor, []float32{1, 2, 3}, 3)
	b := dense(t, tensor.RowMajor, []float32{1, 2}, 2)
	assert.Panics(t, func() { Add[float32](a, b) })
}

func TestBinary_Traits(t *testing.T) {
	a := dense(t, tensor.RowMajor, []int32{1, 2}, 2)
	b := dense(t, tensor.RowMajor, []int32{3, 4}, 2)

	tr := Add[int32](a, b).Traits()
	assert.True(t, tr.Linear)
	assert.True(t, tr.Vectorizable)
	assert.False(t, tr.DMA)
	assert.False(t, tr.Generator)
	assert.Equal(t, tensor.RowMajor, tr.Order)

	assert.False(t, Mod[int32](a, b).Traits().Vectorizable)

	s := Add[int32](NewScalar[int32](1), NewScalar[int32](2))
	assert.True(t, s.Traits().Generator)
	assert.Equal(t, 0, s.Size())
	assert.Equal(t, int32(3), s.ReadFlat(99))

	m := dense(t, tensor.RowMajor, []int32{1, 2, 3, 4}, 2, 2)
	assert.False(t, Add[int32](NewTranspose[int32](m), m).Traits().Linear)
}

func TestBinary_OrderReconciliation(t *testing.T) {
	// Both hold [[1 2 3] [4 5 6]].
	row := dense(t, tensor.RowMajor, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	col := dense(t, tensor.ColumnMajor, []float64{1, 4, 2, 5, 3, 6}, 2, 3)

	e := Add[float64](row, col)
	assert.Equal(t, tensor.RowMajor, e.Traits().Order)
	assert.False(t, e.Traits().Linear)
	assert.Equal(t, []float64{2, 4, 6, 8, 10, 12}, read[float64](e))
}

func TestBinary_Aliases(t *testing.T) {
	a := dense(t, tensor.RowMajor, []float64{1, 2}, 2)
	b := dense(t, tensor.RowMajor, []float64{3, 4}, 2)
	c := dense(t, tensor.RowMajor, []float64{5, 6}, 2)

	e := Add[float64](a, Mul[float64](b, NewScalar(2.0)))
	assert.True(t, e.Aliases(a.Region()))
	assert.True(t, e.Aliases(b.Region()))
	assert.False(t, e.Aliases(c.Region()))
}

func TestRem(t *testing.T) {
	assert.Equal(t, int64(1), Rem[int64](7, 3))
	assert.Equal(t, int32(-1), Rem[int32](-7, 3))
	assert.InDelta(t, 1.5, Rem(7.5, 3.0), 1e-12)
	assert.InDelta(t, float32(0.5), Rem[float32](2.5, 1), 1e-6)
}

func TestScalar(t *testing.T) {
	s := NewScalar[int64](5)
	assert.Nil(t, s.Dims())
	assert.Equal(t, int64(5), s.ReadFlat(3))
	v := s.Load(0, 4)
	assert.Equal(t, []int64{5, 5, 5, 5}, v.Values())
	assert.False(t, s.Aliases(tensor.Region{Start: 0, End: ^uintptr(0)}))

	tr := s.Traits()
	assert.True(t, tr.Generator)
	assert.True(t, tr.Fast)
	assert.Equal(t, tensor.AnyOrder, tr.Order)
}
