// solver.go --  This file is part of goBE project.
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

// Package solver hosts the high-level fragment solvers. A solver receives
// the embedded Hamiltonian of one fragment plus the effective one-electron
// matrix (matching potential already folded in) and returns the fragment
// density matrices.
package solver

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/embed"
	"github.com/MirzaevaIV/goBE/tensor"
)

// ErrDivergence is returned when a fragment solve fails to converge.
var ErrDivergence = errors.New("solver: fragment solve diverged")

// Result is the outcome of one fragment solve. RDM1 and RDM2 are in the
// embedded basis; RDM2 uses the chemist index convention, so the
// two-electron energy is half its full contraction with the integrals.
type Result struct {
	ID        int
	Energy    float64 // electronic energy of the embedded problem
	RDM1      *mat.Dense
	RDM2      *tensor.Tensor4
	Converged bool
}

// Interface is the fragment solver contract. Solve must be safe for
// concurrent use: the matcher runs all fragments in parallel.
type Interface interface {
	Name() string
	Solve(ctx context.Context, ham *embed.Hamiltonian, h1 *mat.Dense) (*Result, error)
}

// New returns the solver registered under name.
func New(name string) (Interface, error) {
	switch name {
	case "hf":
		return &HF{}, nil
	case "ci2":
		return &CI2{}, nil
	}
	return nil, errors.New("solver: unknown solver " + name)
}

// HF2RDM is the mean-field two-particle density matrix generated by the
// one-particle density rho, in chemist convention.
func HF2RDM(rho *mat.Dense) *tensor.Tensor4 {
	n, _ := rho.Dims()
	g := tensor.NewSquare(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dij := rho.At(i, j)
			for k := 0; k < n; k++ {
				dkj := rho.At(k, j)
				for l := 0; l < n; l++ {
					g.Set(i, j, k, l, dij*rho.At(k, l)-0.5*rho.At(i, l)*dkj)
				}
			}
		}
	}
	return g
}
