package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/ithesk/qraxer/internal/qraxer/app"
)

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "", "path to a YAML config file (default: $QRAXER_CONFIG)")
		port        = pflag.IntP("port", "p", 0, "listen port, overrides PORT")
		showVersion = pflag.BoolP("version", "v", false, "print the version and exit")
	)
	pflag.Parse()

	if *showVersion {
		fmt.Println(app.BuildVersion)
		os.Exit(0)
	}

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *port > 0 {
		cfg.Port = *port
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
