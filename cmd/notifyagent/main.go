package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"entrecoiffeur-notify-backend/internal/agent"
	"entrecoiffeur-notify-backend/internal/client"
)

// notifyagent is the background delivery dispatcher as a standalone
// process: it polls the server's pending queue for one user, renders each
// undelivered notification and acknowledges it. It may run alongside the
// in-app reconciler; the two coordinate only through the store.
func main() {
	var (
		serverURL  = flag.String("server", "http://localhost:8080", "base URL of the notification backend")
		userID     = flag.String("user", "", "id of the user whose queue to drain")
		interval   = flag.Duration("interval", 30*time.Second, "poll interval")
		reconciler = flag.Bool("reconciler", false, "run as the foreground reconciler instead of the dispatcher")
	)
	flag.Parse()

	if *userID == "" {
		log.Fatal("the -user flag is required")
	}

	queue := client.New(*serverURL)
	renderer := agent.NewConsoleRenderer()

	var a *agent.Agent
	if *reconciler {
		a = agent.NewReconciler(*userID, *interval, queue, renderer)
	} else {
		a = agent.NewDispatcher(*userID, *interval, queue, renderer)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("Shutdown signal received, stopping agent...")
	cancel()
}
