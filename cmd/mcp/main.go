package main

import (
	"flag"
	"io"
	"log"

	"github.com/AnishMulay/blockfs/internal/config"
	"github.com/AnishMulay/blockfs/internal/log_service"
	"github.com/AnishMulay/blockfs/internal/mcp_service"
	"github.com/AnishMulay/blockfs/servers/simple"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	configPath := flag.String("config", "./run/blockfs.yaml", "Config file (created with defaults if missing)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// stdout carries the protocol; each session logs to its own file.
	sessionID := "mcp-" + uuid.NewString()
	node, err := simple.Build(simple.Options{
		Config:   cfg,
		NodeID:   sessionID,
		AutoInit: true,
		Out:      io.Discard,
	})
	if err != nil {
		log.Fatalf("Failed to start filesystem: %v", err)
	}
	defer node.Close()

	s := mcp_service.NewMCPServer(node.Server, node.Log)
	node.Log.Info(log_service.LogEvent{
		Message:  "Serving MCP on stdio",
		Metadata: map[string]any{"session": sessionID, "tools": len(mcp_service.ToolNames())},
	})

	if err := server.ServeStdio(s); err != nil {
		log.Printf("Server error: %v", err)
	}
}
