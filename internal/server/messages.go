package server

import "github.com/AnishMulay/blockfs/internal/fs_service"

// Operation names accepted by Execute.
const (
	OpInit  = "init"
	OpPrint = "print"
	OpChdir = "chdir"
	OpMkdir = "mkdir"
	OpRmdir = "rmdir"
	OpMvdir = "mvdir"
	OpMkfil = "mkfil"
	OpRmfil = "rmfil"
	OpMvfil = "mvfil"
	OpSzfil = "szfil"
	OpPwd   = "pwd"
	OpStat  = "stat"
	OpCheck = "check"

	// OpRoot is the historical name of OpInit.
	OpRoot = "root"

	RemoveAllName = fs_service.RemoveAllName
)

// Operations lists the names Execute understands, in display order.
var Operations = []string{
	OpInit, OpPrint, OpChdir, OpMkdir, OpRmdir, OpMvdir,
	OpMkfil, OpRmfil, OpMvfil, OpSzfil, OpPwd, OpStat, OpCheck,
}

type Code string

const (
	CodeOK             Code = "OK"
	CodeNotFound       Code = "NOT_FOUND"
	CodeFull           Code = "FULL"
	CodeDirectoryFull  Code = "DIRECTORY_FULL"
	CodeTooLarge       Code = "TOO_LARGE"
	CodeNoOp           Code = "NO_OP"
	CodeBadRequest     Code = "BAD_REQUEST"
	CodeNotInitialized Code = "NOT_INITIALIZED"
	CodeCorrupt        Code = "CORRUPT"
	CodeCanceled       Code = "CANCELED"
	CodeInternal       Code = "INTERNAL"
)

type Request struct {
	Op   string `json:"op"`
	Arg1 string `json:"arg1,omitempty"`
	Arg2 string `json:"arg2,omitempty"`
}

type Response struct {
	Code     Code                        `json:"code"`
	Text     string                      `json:"text,omitempty"`
	Listings []fs_service.Listing        `json:"listings,omitempty"`
	Stats    *fs_service.FileSystemStats `json:"stats,omitempty"`
	Err      error                       `json:"-"`
}

func (r *Response) OK() bool { return r.Code == CodeOK }
