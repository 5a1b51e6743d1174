// reference.go --  This file is part of goBE project.
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

// Package scf provides the mean-field reference contract consumed by the
// embedding pipeline, and a restricted Hartree-Fock implementation of it
// over caller-supplied integrals.
package scf

import (
	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/tensor"
)

// Reference is the converged mean-field state of the whole system. All
// matrices are in one fixed AO basis; Density carries occupation 2 per
// occupied orbital. Implementations must return matrices the caller may
// read but not modify.
type Reference interface {
	NAO() int
	NumElectrons() int
	AOPerAtom() []int

	Hcore() *mat.Dense
	Fock() *mat.Dense
	Density() *mat.Dense
	Overlap() *mat.Dense
	ERI() *tensor.Tensor4

	ElectronicEnergy() float64
	NuclearEnergy() float64

	// Converged reports whether the mean-field solve finished. A false
	// value is a fatal precondition for the whole embedding pipeline.
	Converged() bool
}

// System is the integral input of a mean-field solve: a core Hamiltonian,
// the overlap, the two-electron tensor and the electron count. Model
// Hamiltonians (Hubbard chains and the like) fit in the same box as real
// molecular integrals.
type System struct {
	Hcore         *mat.Dense
	Overlap       *mat.Dense
	ERI           *tensor.Tensor4
	NumElectrons  int
	NuclearEnergy float64
	AOPerAtom     []int
}

// NAO returns the orbital count of the system.
func (s *System) NAO() int {
	r, _ := s.Hcore.Dims()
	return r
}
