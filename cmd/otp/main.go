// Command otp is the OpenTrust Protocol CLI: fuse neutrosophic
// judgments under sealed operators, verify conformance seals, assign
// content-addressed identities, and journal decisions against
// real-world outcomes.
package main

import (
	"fmt"
	"os"

	"github.com/opentrustprotocol/otp-go/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
