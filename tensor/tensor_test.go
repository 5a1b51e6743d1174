package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestIndexing(t *testing.T) {
	a := New(2, 3, 4, 5)
	a.Set(1, 2, 3, 4, 7.5)
	assert.Equal(t, 7.5, a.At(1, 2, 3, 4))
	a.Add(1, 2, 3, 4, 0.5)
	assert.Equal(t, 8.0, a.At(1, 2, 3, 4))
	assert.Zero(t, a.At(0, 0, 0, 0))
}

func TestTransformIdentity(t *testing.T) {
	a := NewSquare(3)
	for i := 0; i < len(a.Data); i++ {
		a.Data[i] = float64(i) * 0.25
	}
	eye := mat.NewDiagDense(3, []float64{1, 1, 1})
	b := a.Transform(eye)
	assert.Equal(t, a.Dims, b.Dims)
	assert.InDeltaSlice(t, a.Data, b.Data, 1e-14)
}

func TestTransformAgainstNaive(t *testing.T) {
	const n, m = 3, 2
	a := NewSquare(n)
	vals := []float64{0.3, -1.2, 0.7, 2.0, -0.4, 1.1}
	for i := 0; i < len(a.Data); i++ {
		a.Data[i] = vals[i%len(vals)] * float64(1+i%7)
	}
	x := mat.NewDense(n, m, []float64{0.5, -0.1, 0.2, 0.8, -0.3, 0.4})

	got := a.Transform(x)
	require.Equal(t, [4]int{m, m, m, m}, got.Dims)

	for p := 0; p < m; p++ {
		for q := 0; q < m; q++ {
			for r := 0; r < m; r++ {
				for s := 0; s < m; s++ {
					want := 0.0
					for i := 0; i < n; i++ {
						for j := 0; j < n; j++ {
							for k := 0; k < n; k++ {
								for l := 0; l < n; l++ {
									want += a.At(i, j, k, l) * x.At(i, p) * x.At(j, q) * x.At(k, r) * x.At(l, s)
								}
							}
						}
					}
					assert.InDelta(t, want, got.At(p, q, r, s), 1e-12)
				}
			}
		}
	}
}

func TestClone(t *testing.T) {
	a := NewSquare(2)
	a.Set(0, 1, 0, 1, 3.0)
	b := a.Clone()
	b.Set(0, 1, 0, 1, -1.0)
	assert.Equal(t, 3.0, a.At(0, 1, 0, 1))
	assert.Equal(t, -1.0, b.At(0, 1, 0, 1))
}
