package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javanhut/simplegit/internal/colors"
	"github.com/javanhut/simplegit/internal/repo"
)

var branchCmd = &cobra.Command{
	Use:     "branch",
	Aliases: []string{"br"},
	Short:   "Manage branches",
	Long:    `Create, switch, list and delete branches. Switching does not touch the working tree.`,
}

var createBranchCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new empty branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			if err := r.CreateBranch(args[0]); err != nil {
				return err
			}
			fmt.Printf("Created branch %s\n", colors.Bold(args[0]))
			return nil
		})
	},
}

var switchBranchCmd = &cobra.Command{
	Use:   "switch <name>",
	Short: "Make another branch current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			if err := r.SwitchBranch(args[0]); err != nil {
				return err
			}
			fmt.Printf("Switched to branch %s\n", colors.Bold(args[0]))
			return nil
		})
	},
}

var listBranchCmd = &cobra.Command{
	Use:   "list",
	Short: "List branches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			for _, b := range r.Branches() {
				marker := "  "
				name := b.Name
				if b.Current {
					marker = "* "
					name = colors.Green(name)
				}
				fmt.Printf("%s%s %s\n", marker, name, colors.Gray(fmt.Sprintf("(%d commits)", len(b.Commits))))
			}
			return nil
		})
	},
}

var deleteBranchCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a branch; its commits stay on disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			if err := r.DeleteBranch(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted branch %s\n", args[0])
			return nil
		})
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
	Long:  `Tags bind a name to one commit. A tag name can only be used once.`,
}

var addTagCmd = &cobra.Command{
	Use:   "add <commit> <name>",
	Short: "Tag a commit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			c, err := r.CreateTag(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Tagged commit %s as %s\n", colors.CommitID(c.ID), colors.Bold(args[1]))
			return nil
		})
	},
}

var listTagCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			tags := r.Tags()
			if len(tags) == 0 {
				fmt.Println("No tags.")
				return nil
			}
			for _, t := range tags {
				fmt.Printf("%s -> %s\n", colors.Bold(t.Name), colors.CommitID(t.CommitID))
			}
			return nil
		})
	},
}
