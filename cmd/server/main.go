package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/Tyrowin/chatroom/internal/chat"
	"github.com/Tyrowin/chatroom/internal/server"
)

func main() {
	log.Println("Starting chatroom server...")

	// Create configuration
	config := server.NewConfigFromEnv().Sanitize()

	// Build the hub and the transport around it
	hub := chat.NewHub(chat.NewRegistry())
	chatServer := server.New(config, hub)

	// Create and start server
	httpServer := server.CreateServer(config.Port, chatServer.SetupRoutes())
	go func() {
		if err := server.StartServer(httpServer); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		config.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				if err := server.ShutdownServer(ctx, httpServer); err != nil {
					return err
				}
				return chatServer.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}
