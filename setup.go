// setup.go --  This file is part of goBE project.
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
package gobe

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/chem"
	"github.com/MirzaevaIV/goBE/config"
	"github.com/MirzaevaIV/goBE/integrals"
	"github.com/MirzaevaIV/goBE/scf"
)

// MoleculeFromConfig resolves the geometry section of the configuration
// into a molecule, either a built-in hydrogen chain or an xyz file.
func MoleculeFromConfig(cfg config.Config) (*chem.Molecule, error) {
	if cfg.Chain != nil {
		return chem.HChain(cfg.Chain.Atoms, cfg.Chain.Spacing), nil
	}
	if cfg.Geometry == "" {
		return nil, errors.New("gobe: no geometry configured")
	}
	return chem.ReadXYZ(cfg.Geometry)
}

// MeanField computes the integrals in the named basis and converges a
// restricted mean field over them, giving the reference New expects.
func MeanField(mol *chem.Molecule, basis string, logger *zap.Logger) (*scf.RHF, error) {
	var set *integrals.Set
	var err error
	switch basis {
	case "sto-3g":
		set, err = integrals.STO3G(mol)
	case "6-31g":
		set, err = integrals.Hydrogen631G(mol)
	default:
		err = fmt.Errorf("gobe: unknown basis %q", basis)
	}
	if err != nil {
		return nil, err
	}
	rhf := scf.NewRHF(scf.System{
		Hcore:         mat.DenseCopyOf(set.Hcore()),
		Overlap:       mat.DenseCopyOf(set.Overlap()),
		ERI:           set.ElectronRepulsion(),
		NumElectrons:  mol.NumElectrons(),
		NuclearEnergy: set.NuclearRepulsion(),
		AOPerAtom:     set.AOPerAtom(),
	})
	if logger != nil {
		rhf.Logger = logger
	}
	if _, err := rhf.Kernel(); err != nil {
		return nil, err
	}
	return rhf, nil
}
