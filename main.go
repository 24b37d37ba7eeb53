// The main package for the vacantes executable.
package main

import (
	"github.com/JakeFAU/occ-vacantes/cmd"
)

func main() {
	cmd.Execute()
}
