package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/avstrong/campusnest/internal/app"
	"github.com/avstrong/campusnest/internal/config"
	"github.com/avstrong/campusnest/internal/logger"
)

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file (or CAMPUSNEST_CONFIG)")
	pflag.Parse()

	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	var exitCode int

	if err := app.Run(l, cfg); err != nil {
		l.LogErrorf("Failed to run app: %v", err.Error())

		exitCode = 1
	}

	l.Sync()
	os.Exit(exitCode)
}
