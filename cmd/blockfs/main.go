package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/AnishMulay/blockfs/internal/config"
	"github.com/AnishMulay/blockfs/servers/simple"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run opens every input before building the node, so a bad flag never
// leaves a log file open.
func run(args []string, stdin io.Reader, stdout io.Writer) error {
	flags := flag.NewFlagSet("blockfs", flag.ContinueOnError)
	var (
		configPath = flags.String("config", "./run/blockfs.yaml", "Config file (created with defaults if missing)")
		script     = flags.String("script", "", "Read commands from this file instead of stdin")
		logLevel   = flags.String("log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
		echo       = flags.Bool("echo", false, "Echo each command before its output")
		verbose    = flags.Bool("verbose", false, "Show the reason for failed commands")
		autoInit   = flags.Bool("init", false, "Format the filesystem before reading commands")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	cfg.Shell.Echo = cfg.Shell.Echo || *echo
	cfg.Shell.Verbose = cfg.Shell.Verbose || *verbose

	in := stdin
	if *script != "" {
		f, err := os.Open(*script)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	node, err := simple.Build(simple.Options{Config: cfg, AutoInit: *autoInit, Out: stdout})
	if err != nil {
		return fmt.Errorf("failed to start filesystem: %w", err)
	}
	defer node.Close()

	if err := node.Run(in); err != nil {
		log.Printf("Shell stopped: %v", err)
	}
	return nil
}
