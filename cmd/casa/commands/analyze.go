package commands

import (
	"fmt"
	"os"

	"github.com/moolen/casa/internal/api"
	"github.com/moolen/casa/internal/report"
	"github.com/moolen/casa/internal/service"
	"github.com/spf13/cobra"
)

var (
	analyzeSource source
	analyzePeriod string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify the routes of one period",
	Long: `Run the three-step funnel for one half-year period: airlines above the case
threshold, their routes, and density based classification of every route.
Without --period the most recent available period is analysed.`,
	RunE: runAnalyze,
}

func init() {
	analyzeSource.register(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzePeriod, "period", "", "Period label such as 2024-H1 (default: latest available)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := analyzeSource.newService(ctx, service.Options{})
	if err != nil {
		return err
	}

	label := analyzePeriod
	if label == "" {
		periods, err := svc.Periods()
		if err != nil {
			return err
		}
		if len(periods) == 0 {
			return fmt.Errorf("dataset covers no complete half-year")
		}
		label = periods[len(periods)-1].Label()
	}

	res, err := svc.Analyze(ctx, label)
	if err != nil {
		return err
	}
	if analyzeSource.jsonOutput {
		return api.WriteJSON(cmd.OutOrStdout(), res)
	}
	return report.NewTextRenderer(cmd.OutOrStdout(), report.IsTerminal(os.Stdout)).Period(res)
}
