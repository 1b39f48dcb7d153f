package fs_service

import (
	"errors"

	"github.com/AnishMulay/blockfs/internal/alloc_service"
	"github.com/AnishMulay/blockfs/internal/descriptor"
)

var (
	ErrFull          = alloc_service.ErrFull
	ErrDirectoryFull = descriptor.ErrDirectoryFull
	ErrFileTooLarge  = descriptor.ErrFileTooLarge
	ErrInvalidName   = descriptor.ErrInvalidName
	ErrCorrupt       = descriptor.ErrCorrupt

	ErrNotFound       = errors.New("no such file or directory")
	ErrNoOp           = errors.New("size unchanged")
	ErrInvalidSize    = errors.New("invalid size")
	ErrNotInitialized = errors.New("filesystem not initialized")
)
