package commands

import (
	"os"
	"strings"

	"github.com/moolen/casa/internal/api"
	"github.com/moolen/casa/internal/report"
	"github.com/moolen/casa/internal/service"
	"github.com/spf13/cobra"
)

var (
	historicSource  source
	historicPeriods []string
	systemicSource  source
	systemicPeriods []string
)

var historicCmd = &cobra.Command{
	Use:   "historic",
	Short: "Compare flagged route counts across periods",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := historicSource.newService(cmd.Context(), service.Options{})
		if err != nil {
			return err
		}
		hist, err := svc.Historic(cmd.Context(), trimLabels(historicPeriods))
		if err != nil {
			return err
		}
		if historicSource.jsonOutput {
			return api.WriteJSON(cmd.OutOrStdout(), hist)
		}
		return report.NewTextRenderer(cmd.OutOrStdout(), report.IsTerminal(os.Stdout)).Historic(hist)
	},
}

var systemicCmd = &cobra.Command{
	Use:   "systemic",
	Short: "List routes flagged in several periods",
	Long: `Analyse a series of periods and list every route flagged HIGH_PRIORITY or
WATCH_LIST in at least systemic_periods of them, with its density trend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := systemicSource.newService(cmd.Context(), service.Options{})
		if err != nil {
			return err
		}
		sys, err := svc.Systemic(cmd.Context(), trimLabels(systemicPeriods))
		if err != nil {
			return err
		}
		if systemicSource.jsonOutput {
			return api.WriteJSON(cmd.OutOrStdout(), sys)
		}
		return report.NewTextRenderer(cmd.OutOrStdout(), report.IsTerminal(os.Stdout)).Systemic(sys)
	},
}

func init() {
	historicSource.register(historicCmd)
	historicCmd.Flags().StringSliceVar(&historicPeriods, "periods", nil, "Comma separated period labels (default: all available)")

	systemicSource.register(systemicCmd)
	systemicCmd.Flags().StringSliceVar(&systemicPeriods, "periods", nil, "Comma separated period labels (default: all available)")
}

func trimLabels(labels []string) []string {
	var out []string
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
