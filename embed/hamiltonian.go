// hamiltonian.go --  This file is part of goBE project.
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
package embed

import (
	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/frag"
	"github.com/MirzaevaIV/goBE/scf"
	"github.com/MirzaevaIV/goBE/tensor"
)

// Hamiltonian is the embedded problem of one fragment: the mean-field
// quantities projected into its Schmidt subspace.
type Hamiltonian struct {
	Subspace *Subspace

	Hcore  *mat.Dense      // core Hamiltonian in the embedded basis
	Fock   *mat.Dense      // full-system Fock matrix in the embedded basis
	ERI    *tensor.Tensor4 // two-electron integrals in the embedded basis
	DGuess *mat.Dense      // mean-field density in the embedded basis

	// centerLocal and edgeLocal are the embedded-basis positions of the
	// sites on center and edge atoms of the fragment. edgeIndex maps the
	// global index of an edge site to its embedded position.
	centerLocal []int
	edgeLocal   []int
	edgeIndex   map[int]int
}

// BuildHamiltonian projects the mean-field reference into the Schmidt
// subspace sub. The reference must be in an orthonormal basis; the ERI
// projection is fetched through cache when one is supplied, so repeated
// matching iterations do not redo the four-index transform.
func BuildHamiltonian(ref scf.Reference, sm *frag.SiteMap, sub *Subspace, cache *Cache) (*Hamiltonian, error) {
	project := func(a *mat.Dense) *mat.Dense {
		var half, p mat.Dense
		half.Mul(sub.Basis.T(), a)
		p.Mul(&half, sub.Basis)
		return mat.DenseCopyOf(&p)
	}

	eri, err := projectedERI(ref, sub, cache)
	if err != nil {
		return nil, err
	}
	h := &Hamiltonian{
		Subspace: sub,
		Hcore:    project(ref.Hcore()),
		Fock:     project(ref.Fock()),
		ERI:      eri,
		DGuess:   project(ref.Density()),
	}

	f := sub.Fragment
	for _, a := range f.CenterAtoms {
		for _, s := range sm.AtomSites(a) {
			h.centerLocal = append(h.centerLocal, f.LocalIndex(s))
		}
	}
	h.edgeIndex = make(map[int]int)
	for _, a := range f.EdgeAtoms {
		for _, s := range sm.AtomSites(a) {
			h.edgeLocal = append(h.edgeLocal, f.LocalIndex(s))
			h.edgeIndex[s] = f.LocalIndex(s)
		}
	}
	return h, nil
}

func projectedERI(ref scf.Reference, sub *Subspace, cache *Cache) (*tensor.Tensor4, error) {
	if cache == nil {
		return ref.ERI().Transform(sub.Basis), nil
	}
	return cache.Fetch(sub.Fragment.ID, func() (*tensor.Tensor4, error) {
		return ref.ERI().Transform(sub.Basis), nil
	})
}

// Dim returns the dimension of the embedded basis.
func (h *Hamiltonian) Dim() int { return h.Subspace.Dim() }

// CoreVeff is the effective potential of the environment core: the part of
// the projected Fock matrix not generated by the embedded density itself.
func (h *Hamiltonian) CoreVeff() *mat.Dense {
	var v mat.Dense
	v.Sub(h.Fock, h.Hcore)
	v.Sub(&v, scf.GMatrix(h.ERI, h.DGuess))
	return mat.DenseCopyOf(&v)
}

// Effective builds the one-electron Hamiltonian handed to the fragment
// solver: the projected Fock matrix minus the mean field of the embedded
// density, plus the matching potential. Potential entries u are keyed by
// global site pairs (p <= q) and fold only onto this fragment's edge
// sites, so the fragment owning a shared atom as center stays the
// unperturbed reference there. The chemical potential mu is subtracted on
// the diagonal of every center site.
func (h *Hamiltonian) Effective(u map[[2]int]float64, mu float64) *mat.Dense {
	var eff mat.Dense
	eff.Sub(h.Fock, scf.GMatrix(h.ERI, h.DGuess))

	for key, val := range u {
		p, pok := h.edgeIndex[key[0]]
		q, qok := h.edgeIndex[key[1]]
		if !pok || !qok {
			continue
		}
		eff.Set(p, q, eff.At(p, q)+val)
		if p != q {
			eff.Set(q, p, eff.At(q, p)+val)
		}
	}
	for _, c := range h.centerLocal {
		eff.Set(c, c, eff.At(c, c)-mu)
	}
	return mat.DenseCopyOf(&eff)
}

// CenterSites returns the embedded-basis positions of sites on center atoms.
func (h *Hamiltonian) CenterSites() []int { return h.centerLocal }

// EdgeSites returns the embedded-basis positions of sites on edge atoms.
func (h *Hamiltonian) EdgeSites() []int { return h.edgeLocal }
