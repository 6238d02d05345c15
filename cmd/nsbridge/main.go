package main

import (
	"context"
	"embed"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/nsbridge/internal/app"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/config"
)

//go:embed modules
var embedded embed.FS

func main() {
	modulesDir := flag.String("modules", "", "Namespace source directory (default: embedded modules)")
	replAddr := flag.String("repl", "", "Remote evaluation address (overrides REPL_ADDR)")
	dev := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *modulesDir != "" {
		cfg.Engine.ModuleRoot = *modulesDir
	}
	if *replAddr != "" {
		cfg.REPL.Addr = *replAddr
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	modules, err := fs.Sub(embedded, "modules")
	if err != nil {
		log.Fatalf("Failed to open embedded modules: %v", err)
	}

	h, err := app.New(cfg, modules)
	if err != nil {
		log.Fatalf("Failed to create host: %v", err)
	}

	if _, err := h.Start(); err != nil {
		log.Fatalf("Failed to launch: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.Close(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
