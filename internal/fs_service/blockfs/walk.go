package blockfs

import (
	"fmt"
	"iter"
	"slices"

	"github.com/AnishMulay/blockfs/internal/block_service"
	"github.com/AnishMulay/blockfs/internal/descriptor"
	"github.com/AnishMulay/blockfs/internal/fs_service"
	"github.com/AnishMulay/blockfs/internal/log_service"
)

type printFrame struct {
	bid   block_service.BlockID
	path  string
	depth int
}

func joinPath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}

func (fs *BlockFileSystem) describe(e descriptor.Entry) (fs_service.DirEntry, error) {
	if e.Kind == descriptor.KindDirectory {
		d, err := fs.readDir(e.BID)
		if err != nil {
			return fs_service.DirEntry{}, err
		}
		return fs_service.DirEntry{Name: d.Name, Kind: e.Kind, BID: e.BID, Entries: d.Count()}, nil
	}
	f, err := fs.readFile(e.BID)
	if err != nil {
		return fs_service.DirEntry{}, err
	}
	return fs_service.DirEntry{
		Name:       f.Name,
		Kind:       e.Kind,
		BID:        e.BID,
		Size:       int64(f.Size),
		DataBlocks: f.NumBlocks(),
	}, nil
}

// Print lists the current directory, then each child directory in table
// order, depth first. Directories are read as the sequence is consumed.
func (fs *BlockFileSystem) Print() iter.Seq2[fs_service.Listing, error] {
	return func(yield func(fs_service.Listing, error) bool) {
		if err := fs.ready(); err != nil {
			yield(fs_service.Listing{}, err)
			return
		}
		path, err := fs.Pwd()
		if err != nil {
			yield(fs_service.Listing{}, err)
			return
		}

		stack := []printFrame{{bid: fs.cwd, path: path}}
		for len(stack) > 0 {
			fr := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			d, err := fs.readDir(fr.bid)
			if err != nil {
				yield(fs_service.Listing{}, err)
				return
			}

			listing := fs_service.Listing{Path: fr.path, Depth: fr.depth, BID: fr.bid}
			var subdirs []printFrame
			for _, e := range d.Live() {
				entry, err := fs.describe(e)
				if err != nil {
					yield(fs_service.Listing{}, err)
					return
				}
				listing.Entries = append(listing.Entries, entry)
				if e.Kind == descriptor.KindDirectory {
					subdirs = append(subdirs, printFrame{
						bid:   e.BID,
						path:  joinPath(fr.path, entry.Name),
						depth: fr.depth + 1,
					})
				}
			}

			if !yield(listing, nil) {
				return
			}
			slices.Reverse(subdirs)
			stack = append(stack, subdirs...)
		}
	}
}

type census struct {
	dirs       int
	files      int
	dataBlocks int
}

// survey walks the whole tree from the root and checks every reachable
// block against the bitmap.
func (fs *BlockFileSystem) survey() (census, error) {
	var c census
	seen := make(map[block_service.BlockID]bool)

	claim := func(bid block_service.BlockID, what string) error {
		if int(bid) < fs.alloc.Reserved() || int(bid) >= fs.bs.NumBlocks() {
			return fmt.Errorf("%w: %s points at block %d", fs_service.ErrCorrupt, what, bid)
		}
		if seen[bid] {
			return fmt.Errorf("%w: block %d reachable twice (%s)", fs_service.ErrCorrupt, bid, what)
		}
		if !fs.alloc.IsAllocated(bid) {
			return fmt.Errorf("%w: %s block %d not marked in bitmap", fs_service.ErrCorrupt, what, bid)
		}
		seen[bid] = true
		return nil
	}

	if err := claim(fs.root, "root"); err != nil {
		return c, err
	}
	stack := []block_service.BlockID{fs.root}
	for len(stack) > 0 {
		bid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d, err := fs.readDir(bid)
		if err != nil {
			return c, err
		}
		c.dirs++

		for _, e := range d.Live() {
			if err := claim(e.BID, e.Kind.String()); err != nil {
				return c, err
			}
			if e.Kind == descriptor.KindDirectory {
				child, err := fs.readDir(e.BID)
				if err != nil {
					return c, err
				}
				if child.Parent != bid {
					return c, fmt.Errorf("%w: directory %q at %d names parent %d, listed in %d", fs_service.ErrCorrupt, child.Name, e.BID, child.Parent, bid)
				}
				stack = append(stack, e.BID)
				continue
			}

			f, err := fs.readFile(e.BID)
			if err != nil {
				return c, err
			}
			if want := fs.dataBlocksFor(int64(f.Size)); f.NumBlocks() != want {
				return c, fmt.Errorf("%w: file %q is %d bytes with %d blocks, want %d", fs_service.ErrCorrupt, f.Name, f.Size, f.NumBlocks(), want)
			}
			for _, data := range f.Blocks() {
				if err := claim(data, "data of "+f.Name); err != nil {
					return c, err
				}
			}
			c.files++
			c.dataBlocks += f.NumBlocks()
		}
	}

	if used, want := fs.alloc.Allocated(), fs.alloc.Reserved()+len(seen); used != want {
		return c, fmt.Errorf("%w: bitmap has %d blocks set, tree accounts for %d", fs_service.ErrCorrupt, used, want)
	}
	return c, nil
}

func (fs *BlockFileSystem) Check() error {
	if err := fs.ready(); err != nil {
		return err
	}
	if _, err := fs.layout.DecodeSuperblock(fs.bs.ReadBlock(superblockBID)); err != nil {
		return err
	}
	c, err := fs.survey()
	if err != nil {
		fs.ls.Error(log_service.LogEvent{
			Message:  "Consistency check failed",
			Metadata: map[string]any{"error": err.Error()},
		})
		return err
	}
	fs.ls.Info(log_service.LogEvent{
		Message:  "Consistency check passed",
		Metadata: map[string]any{"directories": c.dirs, "files": c.files, "dataBlocks": c.dataBlocks},
	})
	return nil
}

func (fs *BlockFileSystem) Stat() (*fs_service.FileSystemStats, error) {
	if err := fs.ready(); err != nil {
		return nil, err
	}
	c, err := fs.survey()
	if err != nil {
		return nil, err
	}
	used := fs.alloc.Allocated()
	return &fs_service.FileSystemStats{
		FsID:           fs.sb.FsID.String(),
		BlockSize:      fs.bs.BlockSize(),
		TotalBlocks:    fs.bs.NumBlocks(),
		UsedBlocks:     used,
		FreeBlocks:     fs.bs.NumBlocks() - used,
		ReservedBlocks: fs.alloc.Reserved(),
		Directories:    c.dirs,
		Files:          c.files,
		DataBlocks:     c.dataBlocks,
	}, nil
}
