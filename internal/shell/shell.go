package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AnishMulay/blockfs/internal/config"
	"github.com/AnishMulay/blockfs/internal/fs_service"
	"github.com/AnishMulay/blockfs/internal/log_service"
	"github.com/AnishMulay/blockfs/internal/server"
)

const (
	CmdExit = "exit"
	CmdHelp = "help"
)

type Shell struct {
	srv *server.CommandServer
	ls  log_service.LogService
	cfg config.ShellConfig
	out io.Writer
}

func NewShell(srv *server.CommandServer, cfg config.ShellConfig, out io.Writer, ls log_service.LogService) *Shell {
	return &Shell{srv: srv, ls: ls, cfg: cfg, out: out}
}

// Run executes commands from in until EOF, "exit", or ctx is done.
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	sh.ls.Info(log_service.LogEvent{Message: "Shell started"})

	scanner := bufio.NewScanner(in)
	for {
		if sh.cfg.Prompt != "" {
			fmt.Fprint(sh.out, sh.cfg.Prompt)
		}
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, ok := Parse(scanner.Text())
		if !ok {
			continue
		}
		if cmd.Name == CmdExit {
			sh.ls.Info(log_service.LogEvent{Message: "Shell exiting on command"})
			return nil
		}
		sh.RunCommand(ctx, cmd)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	sh.ls.Info(log_service.LogEvent{Message: "Shell reached end of input"})
	return nil
}

// RunCommand executes one parsed command and writes its output.
func (sh *Shell) RunCommand(ctx context.Context, cmd Command) {
	if sh.cfg.Echo {
		fmt.Fprintln(sh.out, strings.TrimSpace(strings.Join([]string{cmd.Name, cmd.Arg1, cmd.Arg2}, " ")))
	}
	if cmd.Name == CmdHelp {
		fmt.Fprintf(sh.out, "commands: %s %s\n", strings.Join(server.Operations, " "), CmdExit)
		return
	}

	resp := sh.srv.Execute(ctx, cmd.Name, cmd.Arg1, cmd.Arg2)
	if !resp.OK() {
		if errors.Is(resp.Err, server.ErrUnknownOperation) {
			fmt.Fprintf(sh.out, "command not found: %s\n", cmd.Name)
			return
		}
		line := fmt.Sprintf("  %s %s %s: failed", cmd.Name, cmd.Arg1, cmd.Arg2)
		if sh.cfg.Verbose {
			line += fmt.Sprintf(" (%s: %v)", resp.Code, resp.Err)
		}
		fmt.Fprintln(sh.out, line)
		return
	}

	switch {
	case resp.Listings != nil:
		WriteListings(sh.out, resp.Listings)
	case resp.Stats != nil:
		WriteStats(sh.out, resp.Stats)
	case resp.Text != "":
		fmt.Fprintln(sh.out, resp.Text)
	}
}

// WriteListings prints each directory as a header followed by its
// children, indented by depth.
func WriteListings(w io.Writer, listings []fs_service.Listing) {
	for _, l := range listings {
		indent := strings.Repeat("  ", l.Depth)
		fmt.Fprintf(w, "%s%s:\n", indent, l.Path)
		for _, e := range l.Entries {
			switch e.Kind {
			case fs_service.KindDirectory:
				fmt.Fprintf(w, "%s  %s/  %d entries  [%d]\n", indent, e.Name, e.Entries, e.BID)
			default:
				fmt.Fprintf(w, "%s  %s  %d bytes  %d blocks  [%d]\n", indent, e.Name, e.Size, e.DataBlocks, e.BID)
			}
		}
	}
}

func WriteStats(w io.Writer, st *fs_service.FileSystemStats) {
	fmt.Fprintf(w, "fs id:        %s\n", st.FsID)
	fmt.Fprintf(w, "block size:   %d\n", st.BlockSize)
	fmt.Fprintf(w, "blocks:       %d total, %d used, %d free, %d reserved\n", st.TotalBlocks, st.UsedBlocks, st.FreeBlocks, st.ReservedBlocks)
	fmt.Fprintf(w, "directories:  %d\n", st.Directories)
	fmt.Fprintf(w, "files:        %d (%d data blocks)\n", st.Files, st.DataBlocks)
}
