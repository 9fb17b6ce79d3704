// Command tus-upload is a CLI wrapper around pkg/tusclient: it uploads a
// single local file to a tus endpoint, resuming automatically if a prior
// run was interrupted and --store-dir points at the same directory.
package main

import (
	"fmt"
	"os"

	"github.com/tus/tus-client-go/cmd/tus-upload/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tus-upload:", err)
		os.Exit(1)
	}
}
