// Command qbasherq serves autosuggest/classification queries over a
// memory-mapped static index.
package main

import (
	"fmt"
	"os"

	"github.com/qbasher/qbasherq/cmd/qbasherq/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
