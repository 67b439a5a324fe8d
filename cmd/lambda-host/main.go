// Command lambda-host loads bridge modules compiled to WASM and invokes their
// handlers, either once from the command line or as an AWS Lambda custom
// runtime.
package main

import (
	"os"

	"github.com/reglet-dev/lambda-bridge/cmd/lambda-host/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
