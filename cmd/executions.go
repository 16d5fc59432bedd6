package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func executionsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "executions",
		Short: "List recorded workflow executions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := setup(cmd)
			if err != nil {
				return err
			}
			store, err := s.openExecStore()
			if err != nil {
				return err
			}
			execs, err := store.List(s.ctx, limit)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Execution", "Flow", "Status", "Nodes", "Started"})
			for _, e := range execs {
				t.AppendRow(table.Row{
					e.ID, e.FlowID, string(e.Status), len(e.Results),
					e.StartedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 30, "maximum number of executions to show")
	return cmd
}
