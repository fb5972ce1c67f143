package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javanhut/simplegit/internal/colors"
	"github.com/javanhut/simplegit/internal/repo"
)

var diffCmd = &cobra.Command{
	Use:   "diff <commit-a> <commit-b>",
	Short: "Show line differences between two commits",
	Long: `Shows a unified diff of every file of commit A against commit B.
Files missing from B are reported as removed. Files that only exist in B
are not shown. Commits are named by tag or by id prefix.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			if diffStat {
				return printDiffStat(r, args[0], args[1])
			}

			seq, err := r.Diff(args[0], args[1])
			if err != nil {
				return err
			}
			w := bufio.NewWriter(os.Stdout)
			defer w.Flush()
			for line, err := range seq {
				if err != nil {
					w.Flush()
					fmt.Fprintln(os.Stderr, colors.WarningText("Warning: "+err.Error()))
					continue
				}
				fmt.Fprintln(w, colors.DiffLine(line))
			}
			return nil
		})
	},
}

var diffStat bool

func printDiffStat(r *repo.Repository, a, b string) error {
	st, err := r.DiffStat(a, b)
	if st == nil {
		return err
	}
	for _, p := range st.Changed {
		fmt.Println(colors.ColorizeChange("modified", p))
	}
	for _, p := range st.Removed {
		fmt.Println(colors.ColorizeChange("deleted", p))
	}
	fmt.Printf("%d files changed, %d removed\n", len(st.Changed), len(st.Removed))
	return err
}

var mergeCmd = &cobra.Command{
	Use:   "merge <branch>",
	Short: "Merge a branch into the current branch",
	Long: `Copies the latest commit of <branch> over the working tree and records
a merge commit on the current branch. Directories are replaced wholesale
and there is no conflict detection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			c, err := r.Merge(args[0])
			if c == nil {
				return err
			}
			reportPartial(err)
			fmt.Printf("%s (%s)\n", colors.SuccessText(c.Title), colors.CommitID(c.ID))
			return nil
		})
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull <commit>",
	Short: "Restore the working tree to a commit of the current branch",
	Long: `Overwrites the working tree with a commit of the current branch.
Uncommitted changes to the overwritten entries are lost, so the command asks
for confirmation first unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			c, err := r.Restore(args[0], newPrompt(pullYes))
			if c == nil {
				return err
			}
			reportPartial(err)
			fmt.Printf("Restored working tree to commit %s '%s'\n", colors.CommitID(c.ID), c.Title)
			return nil
		})
	},
}

var pullYes bool

func init() {
	diffCmd.Flags().BoolVar(&diffStat, "stat", false, "Show only the list of changed and removed files")
	pullCmd.Flags().BoolVarP(&pullYes, "yes", "y", false, "Do not ask for confirmation")
}
