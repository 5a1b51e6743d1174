// gmatrix.go --  This file is part of goBE project.
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
package scf

import (
	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/tensor"
)

// GMatrix contracts the two-electron tensor with a closed-shell density
// (occupation-2 convention): G_ij = sum_kl D_kl [ (ij|kl) - (il|kj)/2 ].
// The Fock matrix is Hcore + G[D].
func GMatrix(eri *tensor.Tensor4, d mat.Matrix) *mat.Dense {
	n, _ := d.Dims()
	res := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for k := 0; k < n; k++ {
				for l := 0; l < n; l++ {
					sum += d.At(k, l) * (eri.At(i, j, k, l) - 0.5*eri.At(i, l, k, j))
				}
			}
			res.Set(i, j, sum)
		}
	}
	return res
}

// ElectronicEnergy evaluates the closed-shell energy expression
// sum_ij D_ij (h_ij + G_ij/2) for a density in occupation-2 convention.
func ElectronicEnergy(d, h, g mat.Matrix) float64 {
	n, _ := d.Dims()
	res := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			res += d.At(i, j) * (h.At(i, j) + 0.5*g.At(i, j))
		}
	}
	return res
}
