// gobe.go --  This file is part of goBE project.
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

// Package gobe ties the embedding pipeline together: a mean-field
// reference is partitioned into fragments, each fragment gets a Schmidt
// subspace and an embedded Hamiltonian, and the fragment solutions are
// matched and assembled into a total energy.
package gobe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/MirzaevaIV/goBE/chem"
	"github.com/MirzaevaIV/goBE/config"
	"github.com/MirzaevaIV/goBE/embed"
	"github.com/MirzaevaIV/goBE/energy"
	"github.com/MirzaevaIV/goBE/frag"
	"github.com/MirzaevaIV/goBE/match"
	"github.com/MirzaevaIV/goBE/scf"
	"github.com/MirzaevaIV/goBE/solver"
	"github.com/MirzaevaIV/goBE/topo"
)

// BE is one embedding calculation over a fixed mean-field reference.
type BE struct {
	cfg  config.Config
	ref  scf.Reference
	part *frag.Partition
	hams []*embed.Hamiltonian
	solv solver.Interface
	log  *zap.Logger
}

// New sets up the calculation: orthogonalizes the reference, builds the
// bond graph and partition, and constructs every fragment's embedded
// Hamiltonian. The reference must hold a converged mean field.
func New(ref scf.Reference, mol *chem.Molecule, cfg config.Config, logger *zap.Logger) (*BE, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !ref.Converged() {
		return nil, errors.New("gobe: mean-field reference is not converged")
	}

	orth, err := scf.Orthogonalize(ref)
	if err != nil {
		return nil, err
	}

	g, err := topo.Build(mol, topo.Options{LongBonds: cfg.LongBonds})
	if err != nil {
		return nil, err
	}
	pr, err := frag.NewPartitioner(cfg.Strategy, cfg.Order)
	if err != nil {
		return nil, err
	}
	part, err := pr.Partition(g, frag.NewSiteMap(orth.AOPerAtom()))
	if err != nil {
		return nil, err
	}
	if err := frag.Validate(part); err != nil {
		return nil, err
	}
	logger.Info("system partitioned",
		zap.String("strategy", cfg.Strategy),
		zap.Int("order", cfg.Order),
		zap.Int("fragments", len(part.Fragments)))

	var cache *embed.Cache
	if cfg.CacheDir != "" {
		if cache, err = embed.NewCache(cfg.CacheDir); err != nil {
			return nil, err
		}
	}
	hams := make([]*embed.Hamiltonian, len(part.Fragments))
	for i := range part.Fragments {
		sub, err := embed.SchmidtDecompose(orth.Density(), &part.Fragments[i])
		if err != nil {
			return nil, fmt.Errorf("gobe: fragment %d: %w", i, err)
		}
		if hams[i], err = embed.BuildHamiltonian(orth, part.Map, sub, cache); err != nil {
			return nil, fmt.Errorf("gobe: fragment %d: %w", i, err)
		}
		logger.Debug("embedded fragment",
			zap.Int("fragment", i),
			zap.Int("sites", part.Fragments[i].NSites()),
			zap.Int("bath", sub.NBath),
			zap.Int("electrons", sub.Electrons))
	}

	solv, err := solver.New(cfg.Solver)
	if err != nil {
		return nil, err
	}
	return &BE{cfg: cfg, ref: orth, part: part, hams: hams, solv: solv, log: logger}, nil
}

// Fragments returns the partition's fragments.
func (b *BE) Fragments() []frag.Fragment { return b.part.Fragments }

// Partition returns the full partition, including edge links.
func (b *BE) Partition() *frag.Partition { return b.part }

// Basis returns fragment i's Schmidt basis in the orthogonalized site
// basis.
func (b *BE) Basis(i int) *mat.Dense { return b.hams[i].Subspace.Basis }

// Oneshot solves every fragment once at the starting potential and
// assembles the energy, skipping the matching loop.
func (b *BE) Oneshot(ctx context.Context) (*energy.Breakdown, error) {
	m, err := b.matcher()
	if err != nil {
		return nil, err
	}
	results, err := m.Oneshot(ctx)
	if err != nil {
		return nil, err
	}
	return b.assembler().Assemble(results)
}

// Optimize runs the matching loop and assembles the energy from the final
// fragment solutions. When a potential file is configured the final
// potential is written back to it.
func (b *BE) Optimize(ctx context.Context) (*energy.Breakdown, *match.Result, error) {
	m, err := b.matcher()
	if err != nil {
		return nil, nil, err
	}
	res, err := m.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	b.log.Info("matching finished",
		zap.String("state", res.State.String()),
		zap.Int("iterations", res.Iterations),
		zap.Float64("residual", res.ResidualNorm))
	if b.cfg.PotentialFile != "" {
		if err := res.Potential.Save(b.cfg.PotentialFile); err != nil {
			return nil, nil, err
		}
	}
	breakdown, err := b.assembler().Assemble(res.Fragments)
	if err != nil {
		return nil, nil, err
	}
	return breakdown, res, nil
}

func (b *BE) matcher() (*match.Matcher, error) {
	m := match.NewMatcher(b.solv, b.part, b.hams, b.ref.NumElectrons())
	if b.cfg.OnlyChem {
		m.Mode = match.OnlyChem
	}
	if b.cfg.Tol > 0 {
		m.Tol = b.cfg.Tol
	}
	m.MaxIter = b.cfg.MaxIter
	m.TrustRadius = b.cfg.TrustRadius
	m.Logger = b.log
	if b.cfg.PotentialFile != "" {
		pot, err := match.LoadPotential(b.cfg.PotentialFile)
		switch {
		case err == nil:
			b.log.Info("restarting from saved potential",
				zap.String("file", b.cfg.PotentialFile),
				zap.Int("version", pot.Version))
			m.Start = pot
		case errors.Is(err, fs.ErrNotExist):
			// First run, nothing to restart from.
		default:
			return nil, err
		}
	}
	return m, nil
}

func (b *BE) assembler() *energy.Assembler {
	a := energy.NewAssembler(b.ref, b.part, b.hams)
	if b.cfg.Expression == "noncumulant" {
		a.Expr = energy.NonCumulant
	} else {
		a.Expr = energy.Cumulant
	}
	return a
}
