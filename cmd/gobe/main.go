// main.go --  This file is part of goBE project.
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
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gobe "github.com/MirzaevaIV/goBE"
	"github.com/MirzaevaIV/goBE/config"
	"github.com/MirzaevaIV/goBE/energy"
	"github.com/MirzaevaIV/goBE/match"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gobe:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		cfgPath string
		oneshot bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:           "gobe",
		Short:         "bootstrap embedding for molecular electronic structure",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger, err := buildLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return run(cmd, cfg, oneshot, logger)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "gobe.yaml", "run configuration file")
	cmd.Flags().BoolVar(&oneshot, "oneshot", false, "solve fragments once, skip potential matching")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	c := zap.NewProductionConfig()
	if verbose {
		c = zap.NewDevelopmentConfig()
	}
	return c.Build()
}

func run(cmd *cobra.Command, cfg config.Config, oneshot bool, logger *zap.Logger) error {
	mol, err := gobe.MoleculeFromConfig(cfg)
	if err != nil {
		return err
	}
	logger.Info("mean-field reference",
		zap.Int("atoms", mol.NAtoms()),
		zap.Int("electrons", mol.NumElectrons()),
		zap.String("basis", cfg.Basis))
	ref, err := gobe.MeanField(mol, cfg.Basis, logger)
	if err != nil {
		return err
	}

	be, err := gobe.New(ref, mol, cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if oneshot {
		b, err := be.Oneshot(ctx)
		if err != nil {
			return err
		}
		printBreakdown(cmd, b, nil)
		return nil
	}
	b, res, err := be.Optimize(ctx)
	if err != nil {
		return err
	}
	printBreakdown(cmd, b, res)
	return nil
}

func printBreakdown(cmd *cobra.Command, b *energy.Breakdown, res *match.Result) {
	out := cmd.OutOrStdout()
	if res != nil {
		fmt.Fprintf(out, "matching: %s after %d iterations, residual %.3e\n",
			res.State, res.Iterations, res.ResidualNorm)
	}
	fmt.Fprintf(out, "mean-field energy   %18.10f Ha\n", b.MeanField)
	fmt.Fprintf(out, "correlation energy  %18.10f Ha\n", b.Correlation)
	fmt.Fprintf(out, "nuclear repulsion   %18.10f Ha\n", b.Nuclear)
	fmt.Fprintf(out, "total energy        %18.10f Ha\n", b.Total)
	for i, e := range b.PerFragment {
		fmt.Fprintf(out, "  fragment %-3d      %18.10f Ha\n", i, e)
	}
}
