package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/termai/termai/internal/flow"
)

func flowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flows",
		Short: "Manage saved workflows",
	}
	cmd.AddCommand(flowsListCmd())
	cmd.AddCommand(flowsImportCmd())
	cmd.AddCommand(flowsDeleteCmd())
	return cmd
}

func flowsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved workflows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := setup(cmd)
			if err != nil {
				return err
			}
			store, err := s.openFlowStore()
			if err != nil {
				return err
			}
			flows, err := store.List(s.ctx)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"ID", "Name", "Folder", "Nodes", "Updated"})
			for _, f := range flows {
				t.AppendRow(table.Row{
					f.ID, f.Name, f.Folder, len(f.Nodes),
					f.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			t.Render()
			return nil
		},
	}
}

func flowsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Validate and save a workflow from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(cmd)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var f flow.Flow
			if err := json.Unmarshal(raw, &f); err != nil {
				return fmt.Errorf("failed to decode flow file: %w", err)
			}
			store, err := s.openFlowStore()
			if err != nil {
				return err
			}
			if err := store.Save(s.ctx, &f); err != nil {
				return err
			}
			fmt.Printf("Saved flow %s (%d nodes)\n", f.ID, len(f.Nodes))
			return nil
		},
	}
}

func flowsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete FLOW_ID",
		Short: "Delete a saved workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(cmd)
			if err != nil {
				return err
			}
			store, err := s.openFlowStore()
			if err != nil {
				return err
			}
			return store.Delete(s.ctx, args[0])
		},
	}
}
