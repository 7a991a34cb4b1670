// Command ninja is the ApplyNinja command-line client.
package main

import "github.com/applyninja/ninja/internal/cli"

func main() {
	cli.Execute()
}
