// steward — autonomous decision governance from the command line.
// Evaluates proposed action plans against per-organization policy,
// manages the human approval queue, and feeds outcomes back into the
// trust model.
package main

import "github.com/stewardhq/steward/internal/cli"

func main() {
	cli.Execute()
}
