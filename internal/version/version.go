// Package version provides version information for linetap.
package version

import (
	"fmt"
	"os"
)

const (
	// Name of the tool.
	Name string = "linetap"
	// Version of the tool.
	Version string = "1.0.0"
)

// String returns a plain text representation of the version.
func String() string {
	return fmt.Sprintf("%s %v", Name, Version)
}

// Print the version.
func Print() {
	fmt.Println(String())
}

// PrintAndExit prints the program version and exits.
func PrintAndExit() {
	Print()
	os.Exit(0)
}
