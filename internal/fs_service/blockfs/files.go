package blockfs

import (
	"fmt"

	"github.com/AnishMulay/blockfs/internal/block_service"
	"github.com/AnishMulay/blockfs/internal/descriptor"
	"github.com/AnishMulay/blockfs/internal/fs_service"
	"github.com/AnishMulay/blockfs/internal/log_service"
)

func (fs *BlockFileSystem) checkSize(size int64) (int, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: %d", fs_service.ErrInvalidSize, size)
	}
	n := fs.dataBlocksFor(size)
	if n > fs.layout.FileCapacity {
		return 0, fmt.Errorf("%w: %d bytes needs %d blocks, limit %d", fs_service.ErrFileTooLarge, size, n, fs.layout.FileCapacity)
	}
	return n, nil
}

// allocateN takes n blocks or none.
func (fs *BlockFileSystem) allocateN(n int) ([]block_service.BlockID, error) {
	bids := make([]block_service.BlockID, 0, n)
	for range n {
		bid, err := fs.alloc.Allocate()
		if err != nil {
			fs.release(bids)
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, nil
}

func (fs *BlockFileSystem) Mkfil(name string, size int64) error {
	if err := fs.ready(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	n, err := fs.checkSize(size)
	if err != nil {
		return err
	}
	parent, err := fs.readDir(fs.cwd)
	if err != nil {
		return err
	}
	// Descriptor first, then the data blocks.
	bids, err := fs.allocateN(1 + n)
	if err != nil {
		return fmt.Errorf("mkfil %q: %w", name, err)
	}
	desc := bids[0]

	f := fs.layout.NewFile(name)
	f.Size = uint32(size)
	for _, bid := range bids[1:] {
		if err := f.Append(bid); err != nil {
			fs.release(bids)
			return fmt.Errorf("mkfil %q: %w", name, err)
		}
	}
	if _, err := parent.Add(descriptor.Entry{BID: desc, Kind: descriptor.KindFile}); err != nil {
		fs.release(bids)
		return fmt.Errorf("mkfil %q: %w", name, err)
	}

	fs.writeFile(desc, f)
	fs.writeDir(fs.cwd, parent)

	fs.ls.Info(log_service.LogEvent{
		Message:  "File created",
		Metadata: map[string]any{"name": name, "bid": desc, "size": size, "dataBlocks": n},
	})
	return nil
}

// removeFile frees a file's data blocks and then its descriptor.
func (fs *BlockFileSystem) removeFile(bid block_service.BlockID) (int, error) {
	f, err := fs.readFile(bid)
	if err != nil {
		return 0, err
	}
	for _, data := range f.Blocks() {
		if err := fs.free(data); err != nil {
			return 0, err
		}
	}
	if err := fs.free(bid); err != nil {
		return 0, err
	}
	return 1 + f.NumBlocks(), nil
}

func (fs *BlockFileSystem) Rmfil(name string) error {
	if err := fs.ready(); err != nil {
		return err
	}
	parent, err := fs.readDir(fs.cwd)
	if err != nil {
		return err
	}
	slot, e, err := fs.lookup(parent, descriptor.KindFile, name)
	if err != nil {
		return err
	}

	freed, err := fs.removeFile(e.BID)
	if err != nil {
		return err
	}
	parent.Clear(slot)
	fs.writeDir(fs.cwd, parent)

	fs.ls.Info(log_service.LogEvent{
		Message:  "File removed",
		Metadata: map[string]any{"name": name, "bid": e.BID, "freedBlocks": freed},
	})
	return nil
}

func (fs *BlockFileSystem) Szfil(name string, size int64) error {
	if err := fs.ready(); err != nil {
		return err
	}
	parent, err := fs.readDir(fs.cwd)
	if err != nil {
		return err
	}
	_, e, err := fs.lookup(parent, descriptor.KindFile, name)
	if err != nil {
		return err
	}
	f, err := fs.readFile(e.BID)
	if err != nil {
		return err
	}
	if int64(f.Size) == size {
		return fmt.Errorf("%w: %q is already %d bytes", fs_service.ErrNoOp, name, size)
	}
	want, err := fs.checkSize(size)
	if err != nil {
		return err
	}

	have := f.NumBlocks()
	switch {
	case want > have:
		bids, err := fs.allocateN(want - have)
		if err != nil {
			return fmt.Errorf("szfil %q: %w", name, err)
		}
		for _, bid := range bids {
			if err := f.Append(bid); err != nil {
				fs.release(bids)
				return fmt.Errorf("szfil %q: %w", name, err)
			}
		}
	case want < have:
		for _, bid := range f.Truncate(want) {
			if err := fs.free(bid); err != nil {
				return err
			}
		}
	}

	old := f.Size
	f.Size = uint32(size)
	fs.writeFile(e.BID, f)

	fs.ls.Info(log_service.LogEvent{
		Message:  "File resized",
		Metadata: map[string]any{"name": name, "bid": e.BID, "from": old, "to": size, "dataBlocks": want},
	})
	return nil
}
