package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// A stand-in for the ollama executable supporting the `serve` and `pull`
// subcommands. FAKE_OLLAMA_MODELS lists installed models (comma separated),
// FAKE_OLLAMA_PULL_EXIT sets the pull exit code.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: fake_ollama serve|pull <model>")
		os.Exit(2)
	}
	switch os.Args[1] {
	case "serve":
		serve()
	case "pull":
		pull()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}
}

func serve() {
	addr := os.Getenv("OLLAMA_HOST")
	if addr == "" {
		addr = "127.0.0.1:11434"
	}
	var models []map[string]string
	for _, m := range strings.Split(os.Getenv("FAKE_OLLAMA_MODELS"), ",") {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, map[string]string{"name": m, "model": m})
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"models": models})
	})
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	fmt.Println("Listening on", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

func pull() {
	model := ""
	if len(os.Args) > 2 {
		model = os.Args[2]
	}
	fmt.Println("pulling manifest")
	fmt.Print("pulling 96c415656d37... 10%\rpulling 96c415656d37... 100%\n")
	code, _ := strconv.Atoi(os.Getenv("FAKE_OLLAMA_PULL_EXIT"))
	if code != 0 {
		fmt.Fprintf(os.Stderr, "Error: pull model manifest: file does not exist: %s\n", model)
		os.Exit(code)
	}
	fmt.Println("success")
}
