package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termai/termai/internal/probe"
)

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe [DIR]",
		Short: "Print the context snapshot for a directory as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(cmd)
			if err != nil {
				return err
			}
			dir := s.cfg.Global.LaunchCwd
			if len(args) == 1 {
				dir = args[0]
			}

			snap, err := probe.New().Probe(s.ctx, dir, nil, nil)
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(raw))
			return nil
		},
	}
}
