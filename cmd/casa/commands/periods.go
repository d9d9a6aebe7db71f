package commands

import (
	"os"

	"github.com/moolen/casa/internal/api"
	"github.com/moolen/casa/internal/period"
	"github.com/moolen/casa/internal/report"
	"github.com/moolen/casa/internal/service"
	"github.com/spf13/cobra"
)

var periodsSource source

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List the half-year periods covered by the data",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := periodsSource.newService(cmd.Context(), service.Options{})
		if err != nil {
			return err
		}
		periods, err := svc.Periods()
		if err != nil {
			return err
		}
		if periodsSource.jsonOutput {
			return api.WriteJSON(cmd.OutOrStdout(), map[string][]string{"periods": period.Labels(periods)})
		}
		return report.NewTextRenderer(cmd.OutOrStdout(), report.IsTerminal(os.Stdout)).Periods(periods)
	},
}

func init() {
	periodsSource.register(periodsCmd)
}
