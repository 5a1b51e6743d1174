// xyz.go --  This file is part of goBE project.
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
package chem

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseXYZ reads a molecule from xyz-format lines. The first line carries
// the atom count, the second is a free comment, the rest are
// "Symb x y z" records with coordinates in Angstrom.
func ParseXYZ(lines []string) (*Molecule, error) {
	if len(lines) < 2 {
		return nil, fmt.Errorf("chem: xyz input too short")
	}
	natom, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return nil, fmt.Errorf("chem: bad atom count line %q: %w", lines[0], err)
	}
	if len(lines) < natom+2 {
		return nil, fmt.Errorf("chem: xyz input declares %d atoms, found %d lines", natom, len(lines)-2)
	}
	var mol Molecule
	for i := 2; i < natom+2; i++ {
		words := strings.Fields(lines[i])
		if len(words) < 4 {
			return nil, fmt.Errorf("chem: incorrect format of coordinates at line %d: %q", i+1, lines[i])
		}
		x, errX := strconv.ParseFloat(words[1], 64)
		y, errY := strconv.ParseFloat(words[2], 64)
		z, errZ := strconv.ParseFloat(words[3], 64)
		if errX != nil || errY != nil || errZ != nil {
			return nil, fmt.Errorf("chem: incorrect format of coordinates at line %d: %q", i+1, lines[i])
		}
		if err := mol.AddAtom(words[0], x/Bohr, y/Bohr, z/Bohr); err != nil {
			return nil, err
		}
	}
	return &mol, nil
}

// ReadXYZ reads a molecule from an xyz file.
func ReadXYZ(fname string) (*Molecule, error) {
	lines, err := readFileLines(fname)
	if err != nil {
		return nil, fmt.Errorf("chem: cannot read xyz file %s: %w", fname, err)
	}
	return ParseXYZ(lines)
}

func readFileLines(fname string) ([]string, error) {
	var result []string

	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		result = append(result, scanner.Text())
	}
	return result, scanner.Err()
}
