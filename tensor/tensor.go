// tensor.go --  This file is part of goBE project.
// Mirzaeva Irina, 2026
//
//	goBE is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------

// Package tensor holds the flat four-index tensor used for two-electron
// integrals and two-particle density matrices.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Tensor4 is a dense four-index tensor in row-major layout.
type Tensor4 struct {
	Dims [4]int
	Data []float64
}

// New allocates a zero tensor with the given dimensions.
func New(d0, d1, d2, d3 int) *Tensor4 {
	return &Tensor4{
		Dims: [4]int{d0, d1, d2, d3},
		Data: make([]float64, d0*d1*d2*d3),
	}
}

// NewSquare allocates a zero n*n*n*n tensor.
func NewSquare(n int) *Tensor4 { return New(n, n, n, n) }

func (t *Tensor4) idx(i, j, k, l int) int {
	return ((i*t.Dims[1]+j)*t.Dims[2]+k)*t.Dims[3] + l
}

// At returns element (i,j,k,l).
func (t *Tensor4) At(i, j, k, l int) float64 { return t.Data[t.idx(i, j, k, l)] }

// Set assigns element (i,j,k,l).
func (t *Tensor4) Set(i, j, k, l int, v float64) { t.Data[t.idx(i, j, k, l)] = v }

// Add accumulates into element (i,j,k,l).
func (t *Tensor4) Add(i, j, k, l int, v float64) { t.Data[t.idx(i, j, k, l)] += v }

// Clone returns a deep copy.
func (t *Tensor4) Clone() *Tensor4 {
	c := &Tensor4{Dims: t.Dims, Data: make([]float64, len(t.Data))}
	copy(c.Data, t.Data)
	return c
}

// Transform applies the change of basis x to all four indices:
//
//	B[p,q,r,s] = sum_{ijkl} A[i,j,k,l] x[i,p] x[j,q] x[k,r] x[l,s]
//
// x may be rectangular (n rows, m columns), projecting the tensor into an
// m-dimensional subspace. The contraction runs index by index, so the cost
// stays at four n^5-ish passes instead of one n^8 loop nest.
func (t *Tensor4) Transform(x mat.Matrix) *Tensor4 {
	cur := t
	for pass := 0; pass < 4; pass++ {
		cur = cur.contractFirst(x)
	}
	return cur
}

// contractFirst contracts the leading index with x and rotates it to the
// back: B[j,k,l,p] = sum_i A[i,j,k,l] x[i,p].
func (t *Tensor4) contractFirst(x mat.Matrix) *Tensor4 {
	rows, cols := x.Dims()
	if rows != t.Dims[0] {
		panic(fmt.Sprintf("tensor: transform matrix has %d rows, leading index is %d", rows, t.Dims[0]))
	}
	out := New(t.Dims[1], t.Dims[2], t.Dims[3], cols)
	rest := t.Dims[1] * t.Dims[2] * t.Dims[3]
	for i := 0; i < t.Dims[0]; i++ {
		block := t.Data[i*rest : (i+1)*rest]
		for p := 0; p < cols; p++ {
			xi := x.At(i, p)
			if xi == 0 {
				continue
			}
			for r := 0; r < rest; r++ {
				out.Data[r*cols+p] += block[r] * xi
			}
		}
	}
	return out
}
