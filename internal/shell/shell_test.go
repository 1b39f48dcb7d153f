package shell

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/AnishMulay/blockfs/internal/alloc_service/bitmap"
	"github.com/AnishMulay/blockfs/internal/block_service/inmemory"
	"github.com/AnishMulay/blockfs/internal/config"
	"github.com/AnishMulay/blockfs/internal/fs_service/blockfs"
	"github.com/AnishMulay/blockfs/internal/log_service/localdisc"
	"github.com/AnishMulay/blockfs/internal/server"
	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line   string
		want   Command
		wantOk bool
	}{
		{line: "", wantOk: false},
		{line: "   \t ", wantOk: false},
		{line: "print", want: Command{Name: "print"}, wantOk: true},
		{line: "  mkdir   docs ", want: Command{Name: "mkdir", Arg1: "docs"}, wantOk: true},
		{line: "mkfil f 2500", want: Command{Name: "mkfil", Arg1: "f", Arg2: "2500"}, wantOk: true},
		{line: "mvfil a b c d", want: Command{Name: "mvfil", Arg1: "a", Arg2: "b"}, wantOk: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := Parse(tt.line)
			if ok != tt.wantOk {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.line, ok, tt.wantOk)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func newTestShell(t *testing.T, cfg config.ShellConfig) (*Shell, *bytes.Buffer) {
	t.Helper()
	ls := localdisc.NewWriterLogService(io.Discard, "test", "ERROR")
	bs, err := inmemory.NewInMemoryBlockService(1024, 64, ls)
	if err != nil {
		t.Fatalf("NewInMemoryBlockService() error = %v", err)
	}
	fs, err := blockfs.NewBlockFileSystem(bs, bitmap.NewBitmapAllocService(bs, ls), ls)
	if err != nil {
		t.Fatalf("NewBlockFileSystem() error = %v", err)
	}
	var out bytes.Buffer
	return NewShell(server.NewCommandServer(fs, ls), cfg, &out, ls), &out
}

func TestRun_Script(t *testing.T) {
	sh, out := newTestShell(t, config.ShellConfig{})
	script := strings.Join([]string{
		"init",
		"mkdir a",
		"",
		"chdir nowhere",
		"bogus x",
		"pwd",
		"mkfil f 2500",
		"print",
		"exit",
		"mkdir never",
	}, "\n")

	if err := sh.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := strings.Join([]string{
		"  chdir nowhere : failed",
		"command not found: bogus",
		"/",
		"/:",
		"  a/  0 entries  [3]",
		"  f  2500 bytes  3 blocks  [4]",
		"  /a:",
		"",
	}, "\n")
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_EchoAndVerbose(t *testing.T) {
	sh, out := newTestShell(t, config.ShellConfig{Echo: true, Verbose: true, Prompt: "> "})

	if err := sh.Run(context.Background(), strings.NewReader("init\nchdir nowhere\n")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"> init\n", "> chdir nowhere\n", "  chdir nowhere : failed (NOT_FOUND: "} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestRun_CanceledContext(t *testing.T) {
	sh, out := newTestShell(t, config.ShellConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sh.Run(ctx, strings.NewReader("init\n")); err == nil {
		t.Error("Run() on canceled context returned nil")
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want none", out.String())
	}
}

func TestRunCommand_Help(t *testing.T) {
	sh, out := newTestShell(t, config.ShellConfig{})
	sh.RunCommand(context.Background(), Command{Name: CmdHelp})

	for _, op := range append(server.Operations, CmdExit) {
		if !strings.Contains(out.String(), op) {
			t.Errorf("help output %q does not mention %s", out.String(), op)
		}
	}
}
