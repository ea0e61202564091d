// Command genui-agent is a demo agent for local development: it serves the
// gateway invoke procedure and answers with canned two-phase responses
// (an immediate UI fragment, then a terminal event).
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/nmirabets/gen-ui-app/gateway"
)

func main() {
	addr := flag.String("addr", "localhost:8090", "Listen address")
	delay := flag.Duration("delay", 300*time.Millisecond, "Simulated thinking time before the terminal event")
	flag.Parse()

	responder := &responder{delay: *delay}

	mux := http.NewServeMux()
	pattern, handler := gateway.NewInvokeHandler(responder.respond)
	mux.Handle(pattern, handler)

	server := &http.Server{Addr: *addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("genui-agent listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
