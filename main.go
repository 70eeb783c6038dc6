// file: main.go
// version: 2.0.0
// guid: 86af7280-0b08-478a-99c7-999ec5fa9236

package main

import (
	"fmt"
	"os"

	"github.com/jdfalk/library-catalog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
