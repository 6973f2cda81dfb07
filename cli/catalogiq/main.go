package main

import (
	"os"

	catalogiqcmder "github.com/pedalworks/catalogiq/cmd/catalogiq"
)

func main() {
	cmd := catalogiqcmder.NewCatalogIQCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
