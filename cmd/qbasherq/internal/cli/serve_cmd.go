package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	qbasher "github.com/qbasher/qbasherq"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Read newline-delimited queries from stdin and print results to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			idx, opts, err := openIndex(log)
			if err != nil {
				return err
			}
			defer idx.Close()

			pool := qbasher.NewPool(idx, opts, log, RunOneQuery)
			return pool.Run(context.Background(), os.Stdin, os.Stdout)
		},
	}
}
