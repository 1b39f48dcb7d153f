package descriptor

import "errors"

var (
	ErrCorrupt       = errors.New("corrupt descriptor")
	ErrDirectoryFull = errors.New("directory entry table full")
	ErrFileTooLarge  = errors.New("file block list full")
	ErrInvalidName   = errors.New("invalid name")
	ErrBlockTooSmall = errors.New("block size too small for descriptors")
)
