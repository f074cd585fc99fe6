package main

import (
	"flag"
	"fmt"
	"os"

	"catchup/internal/daemon"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func main() {
	configFlag := flag.String("config", "", "path to optional TOML config file")
	envFlag := flag.String("env-file", "", "path to optional .env file")
	flag.Parse()

	if *envFlag != "" {
		if err := godotenv.Load(*envFlag); err != nil {
			fmt.Fprintf(os.Stderr, "error: load env file: %v\n", err)
			os.Exit(1)
		}
	} else {
		// A .env in the working directory is a convenience, not a requirement.
		_ = godotenv.Load()
	}

	app := fx.New(
		daemon.Module(daemon.Params{ConfigPath: *configFlag}),
	)

	app.Run()
}
