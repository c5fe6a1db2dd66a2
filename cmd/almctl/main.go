// almctl is the command-line companion to the alm SDK: a demo
// instrumented agent and a capture-file chain verifier.
package main

import "github.com/r3fresh/alm-go/internal/cli"

func main() {
	cli.Execute()
}
