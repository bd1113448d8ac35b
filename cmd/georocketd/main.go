// Command georocketd runs the chunk ingest and retrieval HTTP server.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/georocket/georocket-go/config"
	"github.com/georocket/georocket-go/janitor"
	"github.com/georocket/georocket-go/server/http"
	"github.com/georocket/georocket-go/store"
	"github.com/yaoapp/kun/log"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file (defaults to built-in defaults)")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		printHelp()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	st, err := store.New(cfg.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open store backend %q: %v\n", cfg.Store.Backend, err)
		os.Exit(1)
	}
	defer st.Close()

	j, err := janitor.New("@every 5m", st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to schedule janitor: %v\n", err)
		os.Exit(1)
	}
	j.Start()
	defer j.Stop()

	router := http.Router(st)
	server := http.New(router, http.Option{Host: cfg.Host, Port: cfg.Port})

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-interrupt
		log.Info("[georocketd] shutting down")
		server.Stop()
	}()

	fmt.Printf("georocketd listening on %s\n", cfg.Addr())
	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: server stopped: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("georocketd: chunk ingest and retrieval server")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  georocketd -config <path>")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -config string   Path to a YAML config file")
	fmt.Println("  -help            Show this help message")
}
