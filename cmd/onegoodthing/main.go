package main

import (
	"flag"
	"fmt"
	"onegoodthing/internal/di"
	"onegoodthing/internal/structures"
	"os"
	_ "time/tzdata"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config/config.yaml", "path to the yaml config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "log to the console as well")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "onegoodthing: %s\n", err)
		os.Exit(1)
	}
}
