// Package descriptor encodes the fixed-size metadata records stored in
// blocks: the superblock, directory descriptors and file descriptors.
//
// All integers are little-endian. Names are NUL-terminated inside a
// NameSize-byte field.
//
//	directory: name[256] count:u32 parent:u16 pad:u16 entries[cap]{bid:u16 kind:u8 pad:u8}
//	file:      name[256] size:u32 blocks[cap]{bid:u16}
package descriptor

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	NameSize   = 256
	MaxNameLen = NameSize - 1

	// MinBlockSize leaves room for a useful number of entries per table.
	MinBlockSize = 512

	dirHeaderSize  = NameSize + 4 + 2 + 2
	dirEntrySize   = 4
	fileHeaderSize = NameSize + 4
	fileSlotSize   = 2
)

type Kind uint8

const (
	KindDirectory Kind = 0
	KindFile      Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Layout holds the capacities that follow from a block size.
type Layout struct {
	BlockSize    int
	DirCapacity  int
	FileCapacity int
}

func NewLayout(blockSize int) (Layout, error) {
	if blockSize < MinBlockSize {
		return Layout{}, fmt.Errorf("%w: %d < %d", ErrBlockTooSmall, blockSize, MinBlockSize)
	}
	return Layout{
		BlockSize:    blockSize,
		DirCapacity:  (blockSize - dirHeaderSize) / dirEntrySize,
		FileCapacity: (blockSize - fileHeaderSize) / fileSlotSize,
	}, nil
}

// MaxFileSize is the largest size a file descriptor can describe.
func (l Layout) MaxFileSize() int64 {
	return int64(l.FileCapacity) * int64(l.BlockSize)
}

// ValidateName rejects names that cannot be stored or would shadow the
// parent reference.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case len(name) > MaxNameLen:
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidName, len(name), MaxNameLen)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func putName(dst []byte, name string) {
	field := dst[:NameSize]
	clear(field)
	copy(field, name)
}

func getName(src []byte) (string, error) {
	field := src[:NameSize]
	n := bytes.IndexByte(field, 0)
	if n < 0 {
		return "", fmt.Errorf("%w: unterminated name", ErrCorrupt)
	}
	return string(field[:n]), nil
}

// DecodeName reads the name field shared by directory and file descriptors.
func DecodeName(b []byte) (string, error) {
	return getName(b)
}
