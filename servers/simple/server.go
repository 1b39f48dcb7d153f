package simple

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/AnishMulay/blockfs/internal/alloc_service/bitmap"
	"github.com/AnishMulay/blockfs/internal/block_service/inmemory"
	"github.com/AnishMulay/blockfs/internal/config"
	"github.com/AnishMulay/blockfs/internal/fs_service/blockfs"
	"github.com/AnishMulay/blockfs/internal/log_service"
	"github.com/AnishMulay/blockfs/internal/log_service/localdisc"
	"github.com/AnishMulay/blockfs/internal/server"
	"github.com/AnishMulay/blockfs/internal/shell"
)

type Options struct {
	Config *config.Config
	// NodeID overrides Config.Log.NodeID when set.
	NodeID string
	// AutoInit formats the filesystem before the first command.
	AutoInit bool
	Out      io.Writer
}

// Node is one filesystem session with its services wired together.
type Node struct {
	Server *server.CommandServer
	FS     *blockfs.BlockFileSystem
	Log    log_service.LogService

	cfg     *config.Config
	out     io.Writer
	logFile *localdisc.LocalDiscLogService
}

func Build(opts Options) (*Node, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	nodeID := cfg.Log.NodeID
	if opts.NodeID != "" {
		nodeID = opts.NodeID
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	ls, err := localdisc.NewLocalDiscLogService(cfg.Log.Dir, nodeID, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	bs, err := inmemory.NewInMemoryBlockService(cfg.FileSystem.BlockSize, cfg.FileSystem.TotalBlocks, ls)
	if err != nil {
		_ = ls.Close()
		return nil, fmt.Errorf("allocate arena: %w", err)
	}
	alloc := bitmap.NewBitmapAllocService(bs, ls)
	fs, err := blockfs.NewBlockFileSystem(bs, alloc, ls)
	if err != nil {
		_ = ls.Close()
		return nil, err
	}
	if opts.AutoInit {
		if err := fs.Init(); err != nil {
			_ = ls.Close()
			return nil, err
		}
	}

	return &Node{
		Server:  server.NewCommandServer(fs, ls),
		FS:      fs,
		Log:     ls,
		cfg:     cfg,
		out:     out,
		logFile: ls,
	}, nil
}

// Run feeds in to a shell until end of input, "exit", or SIGINT/SIGTERM.
func (n *Node) Run(in io.Reader) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sh := shell.NewShell(n.Server, n.cfg.Shell, n.out, n.Log)
	return sh.Run(ctx, in)
}

func (n *Node) Close() error {
	return n.logFile.Close()
}
