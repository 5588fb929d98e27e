package cmd

import (
	"github.com/maxvaer/hostprobe/internal/updater"
	"github.com/spf13/cobra"
)

var updateCheck bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update hostprobe to the latest release",
	Long: `Downloads the latest release binary for this platform and replaces
the running executable in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if updateCheck {
			return updater.Check()
		}
		return updater.Update()
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, "Only report whether a newer release exists")
	updateCmd.SetHelpFunc(groupedHelp([]flagGroup{{"OPTIONS", []string{"check"}}}))
	rootCmd.AddCommand(updateCmd)
}
