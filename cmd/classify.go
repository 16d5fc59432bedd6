package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/termai/termai/internal/intent"
	"github.com/termai/termai/internal/probe"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify UTTERANCE...",
		Short: "Classify an utterance against the current directory context",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(cmd)
			if err != nil {
				return err
			}
			utterance := strings.Join(args, " ")

			snap, err := probe.New().Probe(s.ctx, s.cfg.Global.LaunchCwd, nil, nil)
			if err != nil {
				return err
			}

			label := intent.NewClassifier().Classify(s.ctx, utterance, snap)
			plan := intent.SelectStrategy(label)

			fmt.Printf("category:   %s\n", label.Category)
			fmt.Printf("confidence: %.2f\n", label.Confidence)
			if len(label.Signals) > 0 {
				fmt.Printf("signals:    %s\n", strings.Join(label.Signals, ", "))
			}
			fmt.Printf("mode:       %s\n", plan.Mode)
			if plan.Question != "" {
				fmt.Printf("question:   %s\n", plan.Question)
			}
			for _, a := range plan.Assumptions {
				fmt.Printf("assuming:   %s\n", a)
			}
			return nil
		},
	}
}
