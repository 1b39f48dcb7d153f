package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AnishMulay/blockfs/internal/fs_service"
	"github.com/AnishMulay/blockfs/internal/log_service"
)

// CommandServer maps operation names onto a FileSystemService. Calls are
// serialised; the filesystem has a single current directory.
type CommandServer struct {
	mu sync.Mutex
	fs fs_service.FileSystemService
	ls log_service.LogService
}

func NewCommandServer(fs fs_service.FileSystemService, ls log_service.LogService) *CommandServer {
	return &CommandServer{fs: fs, ls: ls}
}

func (s *CommandServer) Handle(ctx context.Context, req Request) *Response {
	return s.Execute(ctx, req.Op, req.Arg1, req.Arg2)
}

// Execute runs one operation. arg1 is a name; arg2 is a new name or a
// decimal size depending on op.
func (s *CommandServer) Execute(ctx context.Context, op, arg1, arg2 string) *Response {
	if err := ctx.Err(); err != nil {
		return &Response{Code: CodeCanceled, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp := s.route(op, arg1, arg2)
	if resp.OK() {
		s.ls.Debug(log_service.LogEvent{
			Message:  "Operation succeeded",
			Metadata: map[string]any{"op": op, "arg1": arg1, "arg2": arg2},
		})
	} else {
		s.ls.Warn(log_service.LogEvent{
			Message:  "Operation failed",
			Metadata: map[string]any{"op": op, "arg1": arg1, "arg2": arg2, "code": resp.Code, "error": resp.Err.Error()},
		})
	}
	return resp
}

// Central router for all operations
func (s *CommandServer) route(op, arg1, arg2 string) *Response {
	switch op {
	case OpInit, OpRoot:
		return s.respond(s.fs.Init())

	case OpPrint:
		var listings []fs_service.Listing
		for l, err := range s.fs.Print() {
			if err != nil {
				return s.respond(err)
			}
			listings = append(listings, l)
		}
		return &Response{Code: CodeOK, Listings: listings}

	case OpChdir:
		return s.respond(s.fs.Chdir(arg1))

	case OpMkdir:
		return s.respond(s.fs.Mkdir(arg1))

	case OpRmdir:
		if arg1 == RemoveAllName {
			return s.respond(s.fs.RemoveAll())
		}
		return s.respond(s.fs.Rmdir(arg1))

	case OpMvdir:
		return s.respond(s.fs.Mvdir(arg1, arg2))

	case OpMkfil:
		size, err := fs_service.ParseSize(arg2)
		if err != nil {
			return s.respond(fmt.Errorf("%w: %q", err, arg2))
		}
		return s.respond(s.fs.Mkfil(arg1, size))

	case OpRmfil:
		return s.respond(s.fs.Rmfil(arg1))

	case OpMvfil:
		return s.respond(s.fs.Mvfil(arg1, arg2))

	case OpSzfil:
		size, err := fs_service.ParseSize(arg2)
		if err != nil {
			return s.respond(fmt.Errorf("%w: %q", err, arg2))
		}
		return s.respond(s.fs.Szfil(arg1, size))

	case OpPwd:
		path, err := s.fs.Pwd()
		if err != nil {
			return s.respond(err)
		}
		return &Response{Code: CodeOK, Text: path}

	case OpStat:
		stats, err := s.fs.Stat()
		if err != nil {
			return s.respond(err)
		}
		return &Response{Code: CodeOK, Stats: stats}

	case OpCheck:
		return s.respond(s.fs.Check())

	default:
		return s.respond(fmt.Errorf("%w: %q", ErrUnknownOperation, op))
	}
}

// respond turns an engine error into a typed response code.
func (s *CommandServer) respond(err error) *Response {
	if err == nil {
		return &Response{Code: CodeOK}
	}
	return &Response{Code: CodeFor(err), Err: err}
}

// CodeFor classifies err. Order matters only for errors that wrap more
// than one sentinel.
func CodeFor(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, fs_service.ErrCorrupt):
		return CodeCorrupt
	case errors.Is(err, fs_service.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, fs_service.ErrFull):
		return CodeFull
	case errors.Is(err, fs_service.ErrDirectoryFull):
		return CodeDirectoryFull
	case errors.Is(err, fs_service.ErrFileTooLarge):
		return CodeTooLarge
	case errors.Is(err, fs_service.ErrNoOp):
		return CodeNoOp
	case errors.Is(err, fs_service.ErrNotInitialized):
		return CodeNotInitialized
	case errors.Is(err, fs_service.ErrInvalidName),
		errors.Is(err, fs_service.ErrInvalidSize),
		errors.Is(err, ErrUnknownOperation):
		return CodeBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	default:
		return CodeInternal
	}
}
