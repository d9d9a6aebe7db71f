package commands

import (
	"fmt"

	"github.com/moolen/casa/internal/report"
	"github.com/moolen/casa/internal/service"
	"github.com/spf13/cobra"
)

var (
	exportSource sourceFlags
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write JSON reports for every available period",
	Long: `Write analysis_<period>.json for every available period plus historic.json and
systemic.json into the output directory, ready to be served as static files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := exportSource.newService(cmd.Context(), service.Options{})
		if err != nil {
			return err
		}
		written, err := report.Export(cmd.Context(), svc, exportDir)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}

func init() {
	exportSource.register(exportCmd)
	exportCmd.Flags().StringVar(&exportDir, "out", "public/data", "Output directory")
}
