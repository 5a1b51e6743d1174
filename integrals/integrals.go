// integrals.go --  This file is part of goBE project.
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

// Package integrals computes one- and two-electron integrals over contracted
// s-type Gaussian functions. This covers hydrogen systems exactly; anything
// with higher angular momentum must arrive through precomputed matrices.
package integrals

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"

	"github.com/MirzaevaIV/goBE/chem"
	"github.com/MirzaevaIV/goBE/tensor"
)

// ErrUnsupportedElement is returned when a built-in basis is requested for
// an element it does not cover.
var ErrUnsupportedElement = errors.New("integrals: built-in bases cover s-orbital elements only")

// Primitive is a single normalized s-type Gaussian.
type Primitive struct {
	Alpha float64
	Coeff float64
}

func (p Primitive) normCoeff() float64 {
	return math.Pow(2*p.Alpha/math.Pi, 0.75)
}

// Shell is one contracted s function centered on an atom.
type Shell struct {
	Atom   int
	Center [3]float64
	Prims  []Primitive
}

// Set is a basis set laid over a molecule, one AO per shell.
type Set struct {
	mol    *chem.Molecule
	Shells []Shell
}

// STO-3G exponents and contraction coefficients for hydrogen 1s.
var sto3gH = []Primitive{
	{0.3425250914e+01, 0.1543289673e+00},
	{0.6239137298e+00, 0.5353281423e+00},
	{0.1688554040e+00, 0.4446345422e+00},
}

// 6-31G hydrogen: a contracted inner shell plus a free outer s.
var g631HInner = []Primitive{
	{0.1873113696e+02, 0.3349460434e-01},
	{0.2825394365e+01, 0.2347269535e+00},
	{0.6401216923e+00, 0.8137573261e+00},
}

var g631HOuter = []Primitive{
	{0.1612777588e+00, 1.0},
}

// STO3G builds the minimal basis. Only hydrogen is covered by the built-in
// tables.
func STO3G(mol *chem.Molecule) (*Set, error) {
	s := &Set{mol: mol}
	for i, a := range mol.Atoms {
		if a.Z != 1 {
			return nil, fmt.Errorf("%w: %s (Z=%d)", ErrUnsupportedElement, a.Name, a.Z)
		}
		s.Shells = append(s.Shells, Shell{Atom: i, Center: a.Coords, Prims: sto3gH})
	}
	return s, nil
}

// Hydrogen631G builds the split-valence 6-31G basis for hydrogen systems.
func Hydrogen631G(mol *chem.Molecule) (*Set, error) {
	s := &Set{mol: mol}
	for i, a := range mol.Atoms {
		if a.Z != 1 {
			return nil, fmt.Errorf("%w: %s (Z=%d)", ErrUnsupportedElement, a.Name, a.Z)
		}
		s.Shells = append(s.Shells,
			Shell{Atom: i, Center: a.Coords, Prims: g631HInner},
			Shell{Atom: i, Center: a.Coords, Prims: g631HOuter})
	}
	return s, nil
}

// NAO returns the number of atomic orbitals.
func (s *Set) NAO() int { return len(s.Shells) }

// AOPerAtom returns how many orbitals sit on each atom.
func (s *Set) AOPerAtom() []int {
	counts := make([]int, s.mol.NAtoms())
	for _, sh := range s.Shells {
		counts[sh.Atom]++
	}
	return counts
}

func dist2(v1, v2 [3]float64) float64 {
	res := 0.0
	for k := 0; k < 3; k++ {
		d := v1[k] - v2[k]
		res += d * d
	}
	return res
}

// gaussProduct returns the center of the product Gaussian of two primitives.
func gaussProduct(a1, a2 float64, v1, v2 [3]float64) [3]float64 {
	var res [3]float64
	p := a1 + a2
	for k := 0; k < 3; k++ {
		res[k] = (a1*v1[k] + a2*v2[k]) / p
	}
	return res
}

func boys(x float64, n int) float64 {
	nf := float64(n)
	if x == 0 {
		return 1.0 / (2.0*nf + 1)
	}
	return mathext.GammaIncReg(nf+0.5, x) * math.Gamma(nf+0.5) / (2.0 * math.Pow(x, nf+0.5))
}

// Overlap computes the AO overlap matrix.
func (s *Set) Overlap() *mat.SymDense {
	n := s.NAO()
	res := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sum := 0.0
			for _, pi := range s.Shells[i].Prims {
				for _, pj := range s.Shells[j].Prims {
					N := pi.normCoeff() * pj.normCoeff()
					p := pi.Alpha + pj.Alpha
					q := pi.Alpha * pj.Alpha / p
					Q2 := dist2(s.Shells[i].Center, s.Shells[j].Center)
					sum += N * pi.Coeff * pj.Coeff * math.Exp(-q*Q2) * math.Pow(math.Pi/p, 1.5)
				}
			}
			res.SetSym(i, j, sum)
		}
	}
	return res
}

// Kinetic computes the kinetic-energy matrix.
func (s *Set) Kinetic() *mat.SymDense {
	n := s.NAO()
	res := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sum := 0.0
			for _, pi := range s.Shells[i].Prims {
				for _, pj := range s.Shells[j].Prims {
					N := pi.normCoeff() * pj.normCoeff()
					p := pi.Alpha + pj.Alpha
					q := pi.Alpha * pj.Alpha / p
					Q2 := dist2(s.Shells[i].Center, s.Shells[j].Center)

					P := gaussProduct(pi.Alpha, pj.Alpha, s.Shells[i].Center, s.Shells[j].Center)
					PG2 := dist2(P, s.Shells[j].Center)

					ss := N * pi.Coeff * pj.Coeff * math.Exp(-q*Q2) * math.Pow(math.Pi/p, 1.5)
					sum += 3 * pj.Alpha * ss
					sum -= 2 * pj.Alpha * pj.Alpha * ss * (PG2 + 1.5/p)
				}
			}
			res.SetSym(i, j, sum)
		}
	}
	return res
}

// NuclearAttraction computes the electron-nucleus attraction matrix.
func (s *Set) NuclearAttraction() *mat.SymDense {
	n := s.NAO()
	res := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sum := 0.0
			for _, at := range s.mol.Atoms {
				for _, pi := range s.Shells[i].Prims {
					for _, pj := range s.Shells[j].Prims {
						N := pi.normCoeff() * pj.normCoeff()
						p := pi.Alpha + pj.Alpha
						q := pi.Alpha * pj.Alpha / p
						Q2 := dist2(s.Shells[i].Center, s.Shells[j].Center)

						P := gaussProduct(pi.Alpha, pj.Alpha, s.Shells[i].Center, s.Shells[j].Center)
						PG2 := dist2(P, at.Coords)

						sum += -float64(at.Z) * N * pi.Coeff * pj.Coeff *
							math.Exp(-q*Q2) * (2.0 * math.Pi / p) * boys(p*PG2, 0)
					}
				}
			}
			res.SetSym(i, j, sum)
		}
	}
	return res
}

// Hcore returns kinetic plus nuclear attraction.
func (s *Set) Hcore() *mat.SymDense {
	n := s.NAO()
	t := s.Kinetic()
	v := s.NuclearAttraction()
	res := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			res.SetSym(i, j, t.At(i, j)+v.At(i, j))
		}
	}
	return res
}

// ElectronRepulsion computes the full (ij|kl) tensor in chemist notation.
func (s *Set) ElectronRepulsion() *tensor.Tensor4 {
	n := s.NAO()
	res := tensor.NewSquare(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				for l := 0; l < n; l++ {
					res.Set(i, j, k, l, s.eriElement(i, j, k, l))
				}
			}
		}
	}
	return res
}

func (s *Set) eriElement(i, j, k, l int) float64 {
	sum := 0.0
	for _, pi := range s.Shells[i].Prims {
		for _, pj := range s.Shells[j].Prims {
			for _, pk := range s.Shells[k].Prims {
				for _, pl := range s.Shells[l].Prims {
					N := pi.normCoeff() * pj.normCoeff() * pk.normCoeff() * pl.normCoeff()
					cc := pi.Coeff * pj.Coeff * pk.Coeff * pl.Coeff

					pij := pi.Alpha + pj.Alpha
					pkl := pk.Alpha + pl.Alpha
					Pij := gaussProduct(pi.Alpha, pj.Alpha, s.Shells[i].Center, s.Shells[j].Center)
					Pkl := gaussProduct(pk.Alpha, pl.Alpha, s.Shells[k].Center, s.Shells[l].Center)
					PP2 := dist2(Pij, Pkl)
					denom := 1.0/pij + 1.0/pkl

					qij := pi.Alpha * pj.Alpha / pij
					qkl := pk.Alpha * pl.Alpha / pkl
					Q2ij := dist2(s.Shells[i].Center, s.Shells[j].Center)
					Q2kl := dist2(s.Shells[k].Center, s.Shells[l].Center)

					term := 2.0 * math.Pi * math.Pi / (pij * pkl) *
						math.Sqrt(math.Pi/(pij+pkl)) *
						math.Exp(-qij*Q2ij) * math.Exp(-qkl*Q2kl)

					sum += N * cc * term * boys(PP2/denom, 0)
				}
			}
		}
	}
	return sum
}

// NuclearRepulsion returns the nucleus-nucleus energy.
func (s *Set) NuclearRepulsion() float64 {
	res := 0.0
	for i := range s.mol.Atoms {
		for j := 0; j < i; j++ {
			res += float64(s.mol.Atoms[i].Z) * float64(s.mol.Atoms[j].Z) /
				math.Sqrt(dist2(s.mol.Atoms[i].Coords, s.mol.Atoms[j].Coords))
		}
	}
	return res
}
