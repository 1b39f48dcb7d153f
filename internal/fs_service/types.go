package fs_service

import (
	"strconv"
	"strings"

	"github.com/AnishMulay/blockfs/internal/block_service"
	"github.com/AnishMulay/blockfs/internal/descriptor"
)

type Kind = descriptor.Kind

// RemoveAllName passed to rmdir removes every child of the current
// directory. It cannot be used as an entry name.
const RemoveAllName = "-all"

const (
	KindDirectory = descriptor.KindDirectory
	KindFile      = descriptor.KindFile
)

// DirEntry describes one child as seen from its parent.
type DirEntry struct {
	Name string
	Kind Kind
	BID  block_service.BlockID

	// Files only.
	Size       int64
	DataBlocks int

	// Directories only.
	Entries int
}

// Listing is one directory visited by Print.
type Listing struct {
	Path    string
	Depth   int
	BID     block_service.BlockID
	Entries []DirEntry
}

type FileSystemStats struct {
	FsID           string
	BlockSize      int
	TotalBlocks    int
	UsedBlocks     int
	FreeBlocks     int
	ReservedBlocks int
	Directories    int
	Files          int
	DataBlocks     int
}

// ParseSize reads a decimal byte count. An empty string is zero.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, ErrInvalidSize
	}
	return n, nil
}
