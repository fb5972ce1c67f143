package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javanhut/simplegit/internal/colors"
	"github.com/javanhut/simplegit/internal/repo"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check repository consistency",
	Long: `Cross-checks config.json against the commit directories, the branch and
tag cache files and the commit catalog. With --repair the catalog is rebuilt
from the commit directories and the cache files are rewritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			rep, err := r.Verify(verifyRepair)
			if err != nil {
				return err
			}
			if rep.OK() {
				fmt.Println(colors.SuccessText("Repository is consistent."))
				return nil
			}

			fmt.Println(colors.SectionHeader(fmt.Sprintf("%d problems found:", len(rep.Problems))))
			for _, p := range rep.Problems {
				fmt.Printf("  %s\n", colors.WarningText(p))
			}
			if rep.Repaired {
				fmt.Println("Catalog and cache files regenerated. Run verify again to confirm.")
				return nil
			}
			return fmt.Errorf("repository has %d inconsistencies; run 'simplegit verify --repair'", len(rep.Problems))
		})
	},
}

var verifyRepair bool

func init() {
	verifyCmd.Flags().BoolVar(&verifyRepair, "repair", false, "Rebuild the catalog and cache files")
}
