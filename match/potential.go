// potential.go --  This file is part of goBE project.
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

// Package match implements the correlation-potential matching loop that
// ties the fragment solutions together.
package match

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Potential is one immutable snapshot of the matching potential. Terms are
// one-electron entries keyed by global site pairs (p <= q); Mu is the
// global chemical potential applied on center sites. Updates produce a new
// snapshot with a bumped version, so a fragment solve always sees a single
// consistent potential.
type Potential struct {
	Version int
	Mu      float64
	Terms   map[[2]int]float64
}

// ZeroPotential is the starting point of the matching loop.
func ZeroPotential() *Potential {
	return &Potential{Terms: map[[2]int]float64{}}
}

// Term returns the entry for the (unordered) site pair p,q.
func (p *Potential) Term(a, b int) float64 {
	if a > b {
		a, b = b, a
	}
	return p.Terms[[2]int{a, b}]
}

// with returns a new snapshot with delta added onto the given pair keys
// and, as the final delta entry, onto Mu.
func (p *Potential) with(keys [][2]int, delta []float64) *Potential {
	next := &Potential{
		Version: p.Version + 1,
		Mu:      p.Mu + delta[len(delta)-1],
		Terms:   make(map[[2]int]float64, len(p.Terms)),
	}
	for k, v := range p.Terms {
		next.Terms[k] = v
	}
	for i, k := range keys {
		next.Terms[k] += delta[i]
	}
	return next
}

type potentialTerm struct {
	P     int     `yaml:"p"`
	Q     int     `yaml:"q"`
	Value float64 `yaml:"value"`
}

type potentialFile struct {
	Version int             `yaml:"version"`
	Mu      float64         `yaml:"mu"`
	Terms   []potentialTerm `yaml:"terms,omitempty"`
}

// Save writes the snapshot to path so an interrupted optimization can be
// restarted from it.
func (p *Potential) Save(path string) error {
	f := potentialFile{Version: p.Version, Mu: p.Mu}
	for _, k := range sortedKeys(p.Terms) {
		f.Terms = append(f.Terms, potentialTerm{P: k[0], Q: k[1], Value: p.Terms[k]})
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("match: marshal potential: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadPotential reads a snapshot written by Save.
func LoadPotential(path string) (*Potential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f potentialFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("match: parse potential %s: %w", path, err)
	}
	p := &Potential{Version: f.Version, Mu: f.Mu, Terms: make(map[[2]int]float64, len(f.Terms))}
	for _, t := range f.Terms {
		a, b := t.P, t.Q
		if a > b {
			a, b = b, a
		}
		p.Terms[[2]int{a, b}] = t.Value
	}
	return p, nil
}

func sortedKeys(m map[[2]int]float64) [][2]int {
	keys := make([][2]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	return keys
}
