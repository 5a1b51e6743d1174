// chem.go --  This file is part of goBE project.
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

// Package chem holds atoms, molecular geometry and element data.
// Coordinates are stored in bohr; xyz input is converted on read.
package chem

import (
	"fmt"
	"math"
	"strconv"
)

// Bohr radius in Angstrom.
const Bohr = 0.52917720859

// Atom is a single nucleus with its position in bohr.
type Atom struct {
	Z      int
	Name   string
	Coords [3]float64
}

// Molecule is an ordered list of atoms.
type Molecule struct {
	Atoms []Atom
}

// NAtoms returns the number of atoms.
func (m *Molecule) NAtoms() int { return len(m.Atoms) }

// NumElectrons returns the electron count of the neutral system.
func (m *Molecule) NumElectrons() int {
	result := 0
	for _, a := range m.Atoms {
		result += a.Z
	}
	return result
}

// Distance returns the interatomic distance between atoms i and j in bohr.
func (m *Molecule) Distance(i, j int) float64 {
	res := 0.0
	for k := 0; k < 3; k++ {
		d := m.Atoms[i].Coords[k] - m.Atoms[j].Coords[k]
		res += d * d
	}
	return math.Sqrt(res)
}

// AddAtom appends an atom given by element symbol and coordinates in bohr.
func (m *Molecule) AddAtom(symb string, x, y, z float64) error {
	zNum, err := AtomicNumber(symb)
	if err != nil {
		return err
	}
	m.Atoms = append(m.Atoms, Atom{
		Z:      zNum,
		Name:   symb + strconv.Itoa(len(m.Atoms)+1),
		Coords: [3]float64{x, y, z},
	})
	return nil
}

// HChain builds a linear chain of n hydrogen atoms spaced by dist bohr
// along the z axis.
func HChain(n int, dist float64) *Molecule {
	var mol Molecule
	for i := 0; i < n; i++ {
		mol.Atoms = append(mol.Atoms, Atom{
			Z:      1,
			Name:   "H" + strconv.Itoa(i+1),
			Coords: [3]float64{0, 0, float64(i) * dist},
		})
	}
	return &mol
}

func (m *Molecule) String() string {
	s := fmt.Sprintf("molecule: %d atoms, %d electrons\n", m.NAtoms(), m.NumElectrons())
	for _, a := range m.Atoms {
		s += fmt.Sprintf("  %-4s %12.6f %12.6f %12.6f\n", a.Name, a.Coords[0], a.Coords[1], a.Coords[2])
	}
	return s
}
