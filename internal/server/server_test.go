package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/AnishMulay/blockfs/internal/alloc_service/bitmap"
	"github.com/AnishMulay/blockfs/internal/block_service/inmemory"
	"github.com/AnishMulay/blockfs/internal/fs_service"
	"github.com/AnishMulay/blockfs/internal/fs_service/blockfs"
	"github.com/AnishMulay/blockfs/internal/log_service/localdisc"
)

func newTestServer(t *testing.T) *CommandServer {
	t.Helper()
	ls := localdisc.NewWriterLogService(io.Discard, "test", "DEBUG")
	bs, err := inmemory.NewInMemoryBlockService(1024, 64, ls)
	if err != nil {
		t.Fatalf("NewInMemoryBlockService() error = %v", err)
	}
	fs, err := blockfs.NewBlockFileSystem(bs, bitmap.NewBitmapAllocService(bs, ls), ls)
	if err != nil {
		t.Fatalf("NewBlockFileSystem() error = %v", err)
	}
	return NewCommandServer(fs, ls)
}

func run(t *testing.T, s *CommandServer, op, arg1, arg2 string) *Response {
	t.Helper()
	return s.Execute(context.Background(), op, arg1, arg2)
}

func TestExecute_Codes(t *testing.T) {
	tests := []struct {
		name  string
		setup [][3]string
		op    [3]string
		want  Code
	}{
		{name: "before init", op: [3]string{OpMkdir, "a", ""}, want: CodeNotInitialized},
		{name: "init", op: [3]string{OpInit, "", ""}, want: CodeOK},
		{name: "root is init", op: [3]string{OpRoot, "", ""}, want: CodeOK},
		{name: "mkdir", setup: [][3]string{{OpInit}}, op: [3]string{OpMkdir, "a", ""}, want: CodeOK},
		{name: "mkdir twice", setup: [][3]string{{OpInit}, {OpMkdir, "a"}}, op: [3]string{OpMkdir, "a", ""}, want: CodeOK},
		{name: "mkfil beside same-named dir", setup: [][3]string{{OpInit}, {OpMkdir, "a"}}, op: [3]string{OpMkfil, "a", "10"}, want: CodeOK},
		{name: "mkdir remove-all marker", setup: [][3]string{{OpInit}}, op: [3]string{OpMkdir, RemoveAllName, ""}, want: CodeBadRequest},
		{name: "chdir missing", setup: [][3]string{{OpInit}}, op: [3]string{OpChdir, "x", ""}, want: CodeNotFound},
		{name: "mkfil", setup: [][3]string{{OpInit}}, op: [3]string{OpMkfil, "f", "2500"}, want: CodeOK},
		{name: "mkfil without size", setup: [][3]string{{OpInit}}, op: [3]string{OpMkfil, "f", ""}, want: CodeOK},
		{name: "mkfil bad size", setup: [][3]string{{OpInit}}, op: [3]string{OpMkfil, "f", "12kb"}, want: CodeBadRequest},
		{name: "mkfil too large", setup: [][3]string{{OpInit}}, op: [3]string{OpMkfil, "f", "1000000"}, want: CodeTooLarge},
		{name: "mkfil disk full", setup: [][3]string{{OpInit}}, op: [3]string{OpMkfil, "f", "200000"}, want: CodeFull},
		{name: "szfil same size", setup: [][3]string{{OpInit}, {OpMkfil, "f", "10"}}, op: [3]string{OpSzfil, "f", "10"}, want: CodeNoOp},
		{name: "szfil negative", setup: [][3]string{{OpInit}, {OpMkfil, "f", "10"}}, op: [3]string{OpSzfil, "f", "-1"}, want: CodeBadRequest},
		{name: "mvfil missing", setup: [][3]string{{OpInit}}, op: [3]string{OpMvfil, "f", "g"}, want: CodeNotFound},
		{name: "invalid name", setup: [][3]string{{OpInit}}, op: [3]string{OpMkdir, "a/b", ""}, want: CodeBadRequest},
		{name: "rmdir all on empty", setup: [][3]string{{OpInit}}, op: [3]string{OpRmdir, RemoveAllName, ""}, want: CodeOK},
		{name: "unknown operation", setup: [][3]string{{OpInit}}, op: [3]string{"format", "", ""}, want: CodeBadRequest},
		{name: "check", setup: [][3]string{{OpInit}, {OpMkdir, "a"}}, op: [3]string{OpCheck, "", ""}, want: CodeOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			for _, step := range tt.setup {
				if resp := run(t, s, step[0], step[1], step[2]); !resp.OK() {
					t.Fatalf("setup %v: %s %v", step, resp.Code, resp.Err)
				}
			}

			resp := run(t, s, tt.op[0], tt.op[1], tt.op[2])
			if resp.Code != tt.want {
				t.Errorf("Execute(%v) code = %s (%v), want %s", tt.op, resp.Code, resp.Err, tt.want)
			}
			if !resp.OK() && resp.Err == nil {
				t.Errorf("Execute(%v) failed without an error", tt.op)
			}
		})
	}
}

func TestExecute_RemoveAll(t *testing.T) {
	s := newTestServer(t)
	for _, step := range [][3]string{{OpInit}, {OpMkdir, "a"}, {OpMkfil, "f", "3000"}, {OpChdir, "a"}, {OpMkdir, "b"}, {OpChdir, ".."}} {
		if resp := run(t, s, step[0], step[1], step[2]); !resp.OK() {
			t.Fatalf("setup %v: %s %v", step, resp.Code, resp.Err)
		}
	}

	if resp := run(t, s, OpRmdir, RemoveAllName, ""); !resp.OK() {
		t.Fatalf("rmdir -all: %s %v", resp.Code, resp.Err)
	}

	resp := run(t, s, OpStat, "", "")
	if !resp.OK() || resp.Stats == nil {
		t.Fatalf("stat: %s %v", resp.Code, resp.Err)
	}
	if resp.Stats.UsedBlocks != 3 || resp.Stats.Directories != 1 || resp.Stats.Files != 0 {
		t.Errorf("stats after rmdir -all = %+v", resp.Stats)
	}
}

func TestExecute_PrintAndPwd(t *testing.T) {
	s := newTestServer(t)
	for _, step := range [][3]string{{OpInit}, {OpMkdir, "a"}, {OpChdir, "a"}, {OpMkfil, "f", "1"}} {
		if resp := run(t, s, step[0], step[1], step[2]); !resp.OK() {
			t.Fatalf("setup %v: %s %v", step, resp.Code, resp.Err)
		}
	}

	if resp := run(t, s, OpPwd, "", ""); resp.Text != "/a" {
		t.Errorf("pwd = %q, want /a", resp.Text)
	}
	resp := run(t, s, OpPrint, "", "")
	if !resp.OK() || len(resp.Listings) != 1 || resp.Listings[0].Path != "/a" {
		t.Fatalf("print = %+v", resp)
	}
	if e := resp.Listings[0].Entries; len(e) != 1 || e[0].Name != "f" || e[0].Kind != fs_service.KindFile {
		t.Errorf("print entries = %+v", e)
	}
}

func TestExecute_Canceled(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := s.Handle(ctx, Request{Op: OpInit})
	if resp.Code != CodeCanceled || !errors.Is(resp.Err, context.Canceled) {
		t.Errorf("Handle() on canceled context = %s %v", resp.Code, resp.Err)
	}
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{nil, CodeOK},
		{fmt.Errorf("wrap: %w", fs_service.ErrFull), CodeFull},
		{fs_service.ErrDirectoryFull, CodeDirectoryFull},
		{fs_service.ErrFileTooLarge, CodeTooLarge},
		{fs_service.ErrNotFound, CodeNotFound},
		{fs_service.ErrNoOp, CodeNoOp},
		{fs_service.ErrCorrupt, CodeCorrupt},
		{fmt.Errorf("%w: %v", fs_service.ErrCorrupt, fs_service.ErrNotFound), CodeCorrupt},
		{fs_service.ErrInvalidName, CodeBadRequest},
		{fs_service.ErrInvalidSize, CodeBadRequest},
		{ErrUnknownOperation, CodeBadRequest},
		{fs_service.ErrNotInitialized, CodeNotInitialized},
		{context.DeadlineExceeded, CodeCanceled},
		{errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			if got := CodeFor(tt.err); got != tt.want {
				t.Errorf("CodeFor(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}
