package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/termai/termai/internal/flow"
	"github.com/termai/termai/internal/flow/engine"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run FLOW_ID",
		Short: "Execute a saved workflow",
		Long: `Execute a saved workflow. Shell nodes run as detached child
processes; attach a session through the API to run them in a PTY.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(cmd)
			if err != nil {
				return err
			}
			flowStore, err := s.openFlowStore()
			if err != nil {
				return err
			}
			execStore, err := s.openExecStore()
			if err != nil {
				return err
			}

			f, err := flowStore.Load(s.ctx, args[0])
			if err != nil {
				return err
			}

			eng := engine.New(engine.WithExecutionSaver(execStore))
			exec, err := eng.Execute(s.ctx, f, engine.ExecuteOptions{})
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Node", "Status", "Duration", "Error"})
			for _, n := range f.Nodes {
				res := exec.Results[n.ID]
				t.AppendRow(table.Row{
					n.ID, string(res.Status),
					fmt.Sprintf("%dms", res.DurationMS), res.Error,
				})
			}
			t.Render()

			fmt.Printf("Execution %s finished: %s\n", exec.ID, exec.Status)
			if exec.Status == flow.ExecutionFailed {
				return fmt.Errorf("execution failed: %s", exec.Error)
			}
			return nil
		},
	}
}
