package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javanhut/simplegit/internal/colors"
	sgErrors "github.com/javanhut/simplegit/internal/errors"
	"github.com/javanhut/simplegit/internal/repo"
)

var rootCmd = &cobra.Command{
	Use:   "simplegit",
	Short: "SimpleGit is a local snapshot version control system",
	Long: `SimpleGit keeps whole-directory snapshots of your working tree as
timestamped commits, organized into branches, with tags, diffs, merges,
restores and periodic automatic backups. Everything stays on this machine.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			colors.SetColorEnabled(false)
		}
	},
}

var initialCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new repository",
	Long:  "Creates the .simplegit control directory in the working directory",
	Args:  cobra.NoArgs,
	RunE:  initCommand,
}

var (
	workDirFlag string
	noColor     bool
)

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colors.ErrorText("Error: "+err.Error()))
		if sgErrors.Is(err, sgErrors.ErrNotInitialized) {
			fmt.Fprintln(os.Stderr, "Run 'simplegit init' to create a repository here.")
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workDirFlag, "dir", "C", "", "Run as if started in this directory")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Core commands
	rootCmd.AddCommand(initialCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logCmd)

	// Branches and tags
	rootCmd.AddCommand(branchCmd)
	branchCmd.AddCommand(createBranchCmd, switchBranchCmd, listBranchCmd, deleteBranchCmd)
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(addTagCmd, listTagCmd)

	// Comparing and moving between snapshots
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(pullCmd)

	// Backups
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupRunCmd, backupNowCmd, backupPushCmd, backupVerifyCmd, backupLocationCmd)
	backupLocationCmd.AddCommand(locationAddCmd, locationRemoveCmd, locationListCmd)

	// Maintenance
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(configCmd)
}

func workDir() (string, error) {
	if workDirFlag != "" {
		return workDirFlag, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return dir, nil
}

// openRepo opens the repository of the working directory and applies its
// color setting. The caller closes it.
func openRepo() (*repo.Repository, error) {
	dir, err := workDir()
	if err != nil {
		return nil, err
	}
	r, err := repo.Open(dir)
	if err != nil {
		return nil, err
	}
	if !r.Settings().ColorUI {
		colors.SetColorEnabled(false)
	}
	return r, nil
}

// withRepo runs fn against the open repository.
func withRepo(fn func(r *repo.Repository) error) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	defer r.Close()
	return fn(r)
}

func initCommand(cmd *cobra.Command, args []string) error {
	dir, err := workDir()
	if err != nil {
		return err
	}
	r, err := repo.Init(dir)
	if sgErrors.Is(err, sgErrors.ErrAlreadyExists) {
		fmt.Println("Repository already initialized.")
		return nil
	}
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Printf("Initialized empty SimpleGit repository in %s\n", colors.InfoText(r.ControlDir()))
	return nil
}

// reportPartial prints every per-entry failure of a best-effort copy.
func reportPartial(err error) {
	var pce *sgErrors.PartialCopyError
	if !sgErrors.As(err, &pce) {
		return
	}
	fmt.Println(colors.WarningText(fmt.Sprintf("Warning: %d entries could not be copied:", len(pce.Failures))))
	for _, f := range pce.Failures {
		fmt.Printf("  %s: %v\n", f.Path, f.Err)
	}
}
