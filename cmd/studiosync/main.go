package main

import (
	"flag"
	"fmt"
	"os"
	"studiosync/internal/di"
	"studiosync/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "c", "config.yaml", "path to the config file")
	flag.BoolVar(&flags.DebugMode, "d", false, "duplicate logs to stdout")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "studiosync: %s\n", err)
		os.Exit(1)
	}
}
