package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javanhut/simplegit/internal/colors"
	sgErrors "github.com/javanhut/simplegit/internal/errors"
	"github.com/javanhut/simplegit/internal/repo"
	"github.com/javanhut/simplegit/internal/snapshot"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit the current state of the working tree",
	Long: `Copies the whole working tree into a new commit on the current branch.
Nothing is committed when the tree matches the branch head.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			c, err := r.Commit(commitTitle, commitDescription)
			if sgErrors.Is(err, sgErrors.ErrNoChanges) {
				fmt.Println("No changes since the last commit.")
				return nil
			}
			if c == nil {
				return err
			}
			reportPartial(err)
			fmt.Printf("Committed changes as '%s' (%s) on branch %s.\n",
				commitTitle, colors.CommitID(c.ID), colors.Bold(c.Branch))
			return nil
		})
	},
}

var (
	commitTitle       string
	commitDescription string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show changes since the last commit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			rep, err := r.Status()
			if err != nil {
				return err
			}

			fmt.Printf("On branch %s\n", colors.Bold(rep.Branch))
			if rep.Head == nil {
				fmt.Println("No commits to compare with.")
			} else {
				fmt.Printf("Last commit: %s %s\n", colors.CommitID(rep.Head.ID), rep.Head.Title)
			}
			if len(rep.Changes) == 0 {
				fmt.Println("No changes since the last commit.")
				return nil
			}

			fmt.Println()
			fmt.Println(colors.SectionHeader("Changes since last commit:"))
			for _, c := range rep.Changes {
				fmt.Println(colors.ColorizeChange(c.Kind.String(), c.Path))
			}
			return nil
		})
	},
}

var logCmd = &cobra.Command{
	Use:   "log [branch]",
	Short: "Show commit logs",
	Long:  "Lists the commits of a branch, newest first. Defaults to the current branch.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			var commits []*snapshot.Commit
			var err error
			switch {
			case logAll:
				commits, err = r.LogAll()
			case len(args) == 1:
				commits, err = r.Log(args[0])
			default:
				commits, err = r.Log("")
			}
			if len(commits) == 0 {
				if err != nil {
					return err
				}
				fmt.Println("No commits found.")
				return nil
			}

			for _, c := range commits {
				printCommit(c)
			}
			return err
		})
	},
}

var (
	logAll     bool
	logOneline bool
)

func printCommit(c *snapshot.Commit) {
	date := c.Timestamp
	if t, err := c.Time(); err == nil {
		date = t.Format("2006-01-02 15:04:05")
	}

	if logOneline {
		fmt.Printf("%s %s %s\n", colors.CommitID(c.ID), c.Title, colors.Gray("("+c.Branch+")"))
		return
	}
	fmt.Printf("Commit: %s %s\n", colors.CommitID(c.ID), colors.Bold(c.Title))
	fmt.Printf("Branch: %s\n", c.Branch)
	fmt.Printf("Date: %s\n", date)
	fmt.Printf("Description: %s\n\n", strings.TrimSpace(c.Description))
}

func init() {
	commitCmd.Flags().StringVarP(&commitTitle, "title", "m", "", "Commit title")
	commitCmd.Flags().StringVarP(&commitDescription, "description", "d", "", "Commit description")
	commitCmd.MarkFlagRequired("title")

	logCmd.Flags().BoolVar(&logAll, "all", false, "Show every commit on disk, across branches")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "Show one line per commit")
}
