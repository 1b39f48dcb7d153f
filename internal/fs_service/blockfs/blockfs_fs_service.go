package blockfs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AnishMulay/blockfs/internal/alloc_service"
	"github.com/AnishMulay/blockfs/internal/block_service"
	"github.com/AnishMulay/blockfs/internal/descriptor"
	"github.com/AnishMulay/blockfs/internal/fs_service"
	"github.com/AnishMulay/blockfs/internal/log_service"
	"github.com/google/uuid"
)

const superblockBID block_service.BlockID = 0

// BlockFileSystem keeps a directory tree in the blocks of a BlockService.
// Every descriptor lives in its own block; the only state held outside the
// arena is the current directory and the root's id.
type BlockFileSystem struct {
	// Dependencies
	bs     block_service.BlockService
	alloc  alloc_service.AllocService
	ls     log_service.LogService
	layout descriptor.Layout

	// Session
	sb          descriptor.Superblock
	root        block_service.BlockID
	cwd         block_service.BlockID
	initialized bool
}

func NewBlockFileSystem(
	bs block_service.BlockService,
	alloc alloc_service.AllocService,
	ls log_service.LogService,
) (*BlockFileSystem, error) {
	layout, err := descriptor.NewLayout(bs.BlockSize())
	if err != nil {
		return nil, err
	}
	return &BlockFileSystem{
		bs:     bs,
		alloc:  alloc,
		ls:     ls,
		layout: layout,
	}, nil
}

func (fs *BlockFileSystem) Layout() descriptor.Layout { return fs.layout }

// Root and Cwd expose the session pointers for callers that reason about
// block ids directly.
func (fs *BlockFileSystem) Root() block_service.BlockID { return fs.root }

func (fs *BlockFileSystem) Cwd() block_service.BlockID { return fs.cwd }

// --- Lifecycle ---

func (fs *BlockFileSystem) Init() error {
	fs.initialized = false
	fs.bs.Reset()

	if err := fs.alloc.Format(); err != nil {
		return fmt.Errorf("format bitmap: %w", err)
	}
	root, err := fs.alloc.Allocate()
	if err != nil {
		return fmt.Errorf("allocate root: %w", err)
	}

	fs.sb = descriptor.Superblock{
		FsID:         uuid.New(),
		FsSize:       uint64(fs.bs.BlockSize()) * uint64(fs.bs.NumBlocks()),
		BlockSize:    uint32(fs.bs.BlockSize()),
		TotalBlocks:  uint32(fs.bs.NumBlocks()),
		BitmapStart:  superblockBID + 1,
		BitmapBlocks: uint16(fs.alloc.Reserved() - 1),
		RootBID:      root,
	}
	fs.bs.WriteBlock(superblockBID, fs.layout.EncodeSuperblock(fs.sb))

	// The root is its own parent.
	fs.writeDir(root, fs.layout.NewDirectory("/", root))

	fs.root = root
	fs.cwd = root
	fs.initialized = true

	fs.ls.Info(log_service.LogEvent{
		Message: "Filesystem initialized",
		Metadata: map[string]any{
			"fsID":        fs.sb.FsID.String(),
			"root":        root,
			"blockSize":   fs.sb.BlockSize,
			"totalBlocks": fs.sb.TotalBlocks,
		},
	})
	return nil
}

func (fs *BlockFileSystem) ready() error {
	if !fs.initialized {
		return fs_service.ErrNotInitialized
	}
	return nil
}

// --- Descriptor I/O ---

func (fs *BlockFileSystem) readDir(bid block_service.BlockID) (*descriptor.Directory, error) {
	d, err := fs.layout.DecodeDirectory(fs.bs.ReadBlock(bid))
	if err != nil {
		fs.ls.Error(log_service.LogEvent{
			Message:  "Failed to decode directory",
			Metadata: map[string]any{"bid": bid, "error": err.Error()},
		})
		return nil, fmt.Errorf("directory block %d: %w", bid, err)
	}
	return d, nil
}

func (fs *BlockFileSystem) writeDir(bid block_service.BlockID, d *descriptor.Directory) {
	fs.bs.WriteBlock(bid, fs.layout.EncodeDirectory(d))
}

func (fs *BlockFileSystem) readFile(bid block_service.BlockID) (*descriptor.File, error) {
	f, err := fs.layout.DecodeFile(fs.bs.ReadBlock(bid))
	if err != nil {
		fs.ls.Error(log_service.LogEvent{
			Message:  "Failed to decode file",
			Metadata: map[string]any{"bid": bid, "error": err.Error()},
		})
		return nil, fmt.Errorf("file block %d: %w", bid, err)
	}
	return f, nil
}

func (fs *BlockFileSystem) writeFile(bid block_service.BlockID, f *descriptor.File) {
	fs.bs.WriteBlock(bid, fs.layout.EncodeFile(f))
}

func (fs *BlockFileSystem) nameOf(bid block_service.BlockID) (string, error) {
	name, err := descriptor.DecodeName(fs.bs.ReadBlock(bid))
	if err != nil {
		return "", fmt.Errorf("block %d: %w", bid, err)
	}
	return name, nil
}

// lookup finds the first child of the given kind named name.
func (fs *BlockFileSystem) lookup(d *descriptor.Directory, kind descriptor.Kind, name string) (int, descriptor.Entry, error) {
	for slot, e := range d.Live() {
		if e.Kind != kind {
			continue
		}
		childName, err := fs.nameOf(e.BID)
		if err != nil {
			return -1, descriptor.Entry{}, err
		}
		if childName == name {
			return slot, e, nil
		}
	}
	return -1, descriptor.Entry{}, fmt.Errorf("%w: %s %q", fs_service.ErrNotFound, kind, name)
}

// validateName also rejects the name rmdir reserves for removing every
// child.
func validateName(name string) error {
	if name == fs_service.RemoveAllName {
		return fmt.Errorf("%w: %q is reserved", fs_service.ErrInvalidName, name)
	}
	return descriptor.ValidateName(name)
}

// --- Allocation ---

func (fs *BlockFileSystem) free(bid block_service.BlockID) error {
	if err := fs.alloc.Free(bid); err != nil {
		return fmt.Errorf("%w: %v", fs_service.ErrCorrupt, err)
	}
	return nil
}

// release undoes allocations made by an operation that is failing.
func (fs *BlockFileSystem) release(bids []block_service.BlockID) {
	for _, bid := range bids {
		if err := fs.alloc.Free(bid); err != nil {
			fs.ls.Error(log_service.LogEvent{
				Message:  "Failed to release block during rollback",
				Metadata: map[string]any{"bid": bid, "error": err.Error()},
			})
		}
	}
	if len(bids) > 0 {
		fs.ls.Debug(log_service.LogEvent{
			Message:  "Rolled back allocation",
			Metadata: map[string]any{"blocks": len(bids)},
		})
	}
}

// dataBlocksFor is the number of data blocks a file of size bytes owns.
// Every file owns at least one.
func (fs *BlockFileSystem) dataBlocksFor(size int64) int {
	return int(max(1, block_service.CeilDiv(size, int64(fs.layout.BlockSize))))
}

// --- Navigation ---

func (fs *BlockFileSystem) Chdir(name string) error {
	if err := fs.ready(); err != nil {
		return err
	}
	d, err := fs.readDir(fs.cwd)
	if err != nil {
		return err
	}

	switch name {
	case ".":
		return nil
	case "..":
		fs.cwd = d.Parent
	default:
		_, e, err := fs.lookup(d, descriptor.KindDirectory, name)
		if err != nil {
			return err
		}
		fs.cwd = e.BID
	}

	fs.ls.Debug(log_service.LogEvent{
		Message:  "Changed directory",
		Metadata: map[string]any{"name": name, "cwd": fs.cwd},
	})
	return nil
}

// ancestry returns the directory ids from bid up to and including the root.
func (fs *BlockFileSystem) ancestry(bid block_service.BlockID) ([]block_service.BlockID, []string, error) {
	var ids []block_service.BlockID
	var names []string
	for range fs.bs.NumBlocks() {
		d, err := fs.readDir(bid)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, bid)
		if bid == fs.root {
			return ids, names, nil
		}
		names = append(names, d.Name)
		bid = d.Parent
	}
	return nil, nil, fmt.Errorf("%w: parent chain from %d never reaches root", fs_service.ErrCorrupt, ids[0])
}

func (fs *BlockFileSystem) Pwd() (string, error) {
	if err := fs.ready(); err != nil {
		return "", err
	}
	_, names, err := fs.ancestry(fs.cwd)
	if err != nil {
		return "", err
	}
	slices.Reverse(names)
	return "/" + strings.Join(names, "/"), nil
}

// --- Directories ---

func (fs *BlockFileSystem) Mkdir(name string) error {
	if err := fs.ready(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	parent, err := fs.readDir(fs.cwd)
	if err != nil {
		return err
	}

	bid, err := fs.alloc.Allocate()
	if err != nil {
		return fmt.Errorf("mkdir %q: %w", name, err)
	}
	if _, err := parent.Add(descriptor.Entry{BID: bid, Kind: descriptor.KindDirectory}); err != nil {
		fs.release([]block_service.BlockID{bid})
		return fmt.Errorf("mkdir %q: %w", name, err)
	}

	fs.writeDir(bid, fs.layout.NewDirectory(name, fs.cwd))
	fs.writeDir(fs.cwd, parent)

	fs.ls.Info(log_service.LogEvent{
		Message:  "Directory created",
		Metadata: map[string]any{"name": name, "bid": bid, "parent": fs.cwd},
	})
	return nil
}

func (fs *BlockFileSystem) Mvdir(oldName, newName string) error {
	return fs.rename(descriptor.KindDirectory, oldName, newName)
}

func (fs *BlockFileSystem) Mvfil(oldName, newName string) error {
	return fs.rename(descriptor.KindFile, oldName, newName)
}

// rename rewrites a child's name in place. Names need not be unique
// among siblings.
func (fs *BlockFileSystem) rename(kind descriptor.Kind, oldName, newName string) error {
	if err := fs.ready(); err != nil {
		return err
	}
	parent, err := fs.readDir(fs.cwd)
	if err != nil {
		return err
	}
	_, e, err := fs.lookup(parent, kind, oldName)
	if err != nil {
		return err
	}
	if err := validateName(newName); err != nil {
		return err
	}

	switch kind {
	case descriptor.KindDirectory:
		d, err := fs.readDir(e.BID)
		if err != nil {
			return err
		}
		d.Name = newName
		fs.writeDir(e.BID, d)
	case descriptor.KindFile:
		f, err := fs.readFile(e.BID)
		if err != nil {
			return err
		}
		f.Name = newName
		fs.writeFile(e.BID, f)
	}

	fs.ls.Info(log_service.LogEvent{
		Message:  "Renamed " + kind.String(),
		Metadata: map[string]any{"from": oldName, "to": newName, "bid": e.BID},
	})
	return nil
}

var _ fs_service.FileSystemService = (*BlockFileSystem)(nil)
