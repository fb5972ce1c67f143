package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javanhut/simplegit/internal/colors"
	"github.com/javanhut/simplegit/internal/config"
	"github.com/javanhut/simplegit/internal/repo"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get and set tool settings",
	Long: `Get and set SimpleGit settings stored in .simplegit/settings.toml.

Every key can be overridden from the environment with the SIMPLEGIT_
prefix, dots replaced by underscores (SIMPLEGIT_BACKUP_INTERVAL=30m).

Examples:
  simplegit config
  simplegit config backup.interval
  simplegit config backup.interval 30m
  simplegit config color.ui false`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	return withRepo(func(r *repo.Repository) error {
		switch len(args) {
		case 0:
			return listConfig(r.ControlDir())
		case 1:
			value, err := config.GetSetting(r.ControlDir(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		default:
			if err := config.SetSetting(r.ControlDir(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Set %s = %s\n", args[0], colors.InfoText(args[1]))
			return nil
		}
	})
}

func listConfig(controlDir string) error {
	fmt.Println(colors.SectionHeader("Settings:"))
	for _, key := range config.SettingKeys() {
		value, err := config.GetSetting(controlDir, key)
		if err != nil {
			return err
		}
		fmt.Printf("  %s = %s\n", key, colors.InfoText(value))
	}
	return nil
}
