package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/javanhut/simplegit/internal/archive"
	"github.com/javanhut/simplegit/internal/colors"
	"github.com/javanhut/simplegit/internal/repo"
	"github.com/javanhut/simplegit/internal/scheduler"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Automatic backups and backup locations",
	Long: `Commit the working tree periodically and copy commit archives
(.tar.zst with a BLAKE3 checksum) to backup locations.`,
}

var backupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the backup loop until interrupted",
	Long: `Waits for the backup interval, commits the working tree when it changed
and pushes the new commit to every backup location, then repeats.
Stop it with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			interval := r.Settings().BackupInterval
			if backupInterval > 0 {
				interval = backupInterval
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			loop := &scheduler.Loop{
				Interval: interval,
				Log:      r.EventLog(),
				Trigger: scheduler.TriggerFunc(func(ctx context.Context) error {
					res, err := r.Backup(ctx)
					printBackup(res)
					return err
				}),
				OnError: func(err error) {
					fmt.Println(colors.WarningText(fmt.Sprintf("Error occurred: %v", err)))
					fmt.Printf("Will retry in %s.\n", interval)
				},
			}

			fmt.Printf("Backing up %s every %s. Press Ctrl-C to stop.\n", r.Root(), interval)
			err := loop.Run(ctx)
			if errors.Is(err, context.Canceled) {
				fmt.Println("Backup loop stopped.")
				return nil
			}
			return err
		})
	},
}

var backupInterval time.Duration

var backupNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Perform one backup attempt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			res, err := r.Backup(cmd.Context())
			printBackup(res)
			return err
		})
	},
}

func printBackup(res *repo.BackupResult) {
	if res == nil {
		return
	}
	stamp := time.Now().Format("15:04:05")
	if res.Commit == nil {
		fmt.Printf("[%s] No changes to back up.\n", stamp)
		return
	}
	fmt.Printf("[%s] Committed %s '%s'\n", stamp, colors.CommitID(res.Commit.ID), res.Commit.Title)
	for _, a := range res.Archives {
		fmt.Printf("  -> %s\n", a.Path)
	}
}

var backupPushCmd = &cobra.Command{
	Use:   "push [commit]",
	Short: "Copy a commit archive to every backup location",
	Long:  "Archives a commit (default: the head of the current branch) into every backup location.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ""
		if len(args) == 1 {
			ref = args[0]
		}
		return withRepo(func(r *repo.Repository) error {
			results, err := r.Push(ref)
			for _, res := range results {
				fmt.Printf("Pushed %s %s\n", res.Path, colors.Gray(fmt.Sprintf("(%d files, %d bytes)", res.Files, res.Size)))
			}
			return err
		})
	},
}

var backupVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check every archive in every backup location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			checks, err := r.VerifyBackups()
			bad := 0
			for _, c := range checks {
				if c.Err != nil {
					bad++
					fmt.Printf("%s %s: %v\n", colors.Red("FAIL"), c.Path, c.Err)
					continue
				}
				fmt.Printf("%s %s (%d entries)\n", colors.Green("ok"), c.Path, c.Entries)
			}
			if err != nil {
				return err
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d archives failed verification", bad, len(checks))
			}
			if len(checks) == 0 {
				fmt.Printf("No %s archives found.\n", archive.Ext)
			}
			return nil
		})
	},
}

var backupLocationCmd = &cobra.Command{
	Use:     "location",
	Aliases: []string{"loc"},
	Short:   "Manage backup locations",
}

var locationAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a backup location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			abs, err := r.AddBackupLocation(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Added backup location %s\n", colors.InfoText(abs))
			return nil
		})
	},
}

var locationRemoveCmd = &cobra.Command{
	Use:   "remove <path>",
	Short: "Remove a backup location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			if err := r.RemoveBackupLocation(args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed backup location %s\n", args[0])
			return nil
		})
	},
}

var locationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			locs := r.BackupLocations()
			if len(locs) == 0 {
				fmt.Println("No backup locations configured.")
				return nil
			}
			for _, l := range locs {
				fmt.Println(l)
			}
			return nil
		})
	},
}

func init() {
	backupRunCmd.Flags().DurationVar(&backupInterval, "interval", 0, "Time between backups (default from backup.interval)")
}
