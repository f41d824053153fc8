// Package main is the entry point for the dtx2ssc API server
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/james-see/dtx2ssc/internal/config"
	"github.com/james-see/dtx2ssc/pkg/api"
)

func main() {
	cfg := config.Load()

	port := flag.Int("port", 0, "Server port (default $PORT or 8080)")
	flag.Parse()
	if *port != 0 {
		cfg.Port = strconv.Itoa(*port)
	}

	fmt.Printf("Starting dtx2ssc API server on port %s...\n", cfg.Port)
	fmt.Printf("Swagger docs available at http://localhost:%s/swagger/index.html\n", cfg.Port)

	if err := api.StartServer(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
