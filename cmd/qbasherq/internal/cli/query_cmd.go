package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryOptionsOverlay string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [words...]",
		Short: "Run a single query against the index and print results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			idx, opts, err := openIndex(log)
			if err != nil {
				return err
			}
			defer idx.Close()

			if queryOptionsOverlay != "" {
				opts, err = opts.Overlay(queryOptionsOverlay)
				if err != nil {
					return err
				}
			}

			line := strings.Join(args, " ")
			results, err := RunOneQuery(context.Background(), idx, opts, line)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Println(r)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&queryOptionsOverlay, "options", "", "per-query options overlay, e.g. \"-max_to_show=5 -relaxation_level=2\"")
	return cmd
}
