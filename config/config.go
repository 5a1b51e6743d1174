// config.go --  This file is part of goBE project.
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

// Package config holds the run configuration of an embedding calculation.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Chain describes a built-in hydrogen chain geometry, handy for quick
// runs without an xyz file.
type Chain struct {
	Atoms   int     `yaml:"atoms" validate:"min=2"`
	Spacing float64 `yaml:"spacing" validate:"gt=0"` // bohr
}

// Config is the full run configuration, normally read from a YAML file.
type Config struct {
	// Geometry is the path to an xyz file. Exactly one of Geometry and
	// Chain must be set.
	Geometry string `yaml:"geometry" validate:"required_without=Chain,excluded_with=Chain"`
	Chain    *Chain `yaml:"chain"`

	Basis    string `yaml:"basis" validate:"oneof=sto-3g 6-31g"`
	Strategy string `yaml:"strategy" validate:"oneof=autogen chain"`
	Order    int    `yaml:"order" validate:"min=1"`
	Solver   string `yaml:"solver" validate:"oneof=hf ci2"`

	// Expression selects the energy assembly: "cumulant" or
	// "noncumulant".
	Expression string `yaml:"expression" validate:"oneof=cumulant noncumulant"`

	// OnlyChem restricts matching to the chemical potential.
	OnlyChem    bool    `yaml:"only_chem"`
	Tol         float64 `yaml:"tol" validate:"gt=0"`
	MaxIter     int     `yaml:"max_iter" validate:"min=0"`
	TrustRadius float64 `yaml:"trust_radius" validate:"min=0"`

	// LongBonds relaxes the bond detection tolerance.
	LongBonds bool `yaml:"long_bonds"`

	// CacheDir enables the on-disk integral cache when set.
	CacheDir string `yaml:"cache_dir"`
	// PotentialFile, when set, is loaded as the starting potential if it
	// exists and receives the final potential after an optimization.
	PotentialFile string `yaml:"potential_file"`
}

// Default returns the configuration used when a field is left out.
func Default() Config {
	return Config{
		Basis:       "sto-3g",
		Strategy:    "chain",
		Order:       1,
		Solver:      "hf",
		Expression:  "cumulant",
		Tol:         1e-6,
		MaxIter:     50,
		TrustRadius: 0.5,
	}
}

// Load reads and validates a YAML configuration file. Missing fields keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	dec := &cfg
	if err := yaml.Unmarshal(data, dec); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration against its field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
