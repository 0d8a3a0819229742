// Command cnutil exposes the block template operations of the library on
// the command line. Blobs are passed and printed as hex.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cnutil:", err)
		os.Exit(1)
	}
}
