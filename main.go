// main.go
//
// Entry point; the commands live in cmd/.

package main

import (
	"github.com/pdevs-sim/pdevs-sim/cmd"
)

func main() {
	cmd.Execute()
}
