// Package main provides edictl, the operator command line for generating,
// decoding and inspecting X12 traffic and for preparing the gateway's
// database and topics.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
