// Command coordinatord runs the crawler coordinator's HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/crawlctl/coordinator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
