package blockfs

import (
	"slices"

	"github.com/AnishMulay/blockfs/internal/block_service"
	"github.com/AnishMulay/blockfs/internal/descriptor"
	"github.com/AnishMulay/blockfs/internal/log_service"
)

type removeFrame struct {
	bid      block_service.BlockID
	expanded bool
}

// removeTree frees the directory at top and everything below it, children
// before parents. It does not touch the entry that points at top.
func (fs *BlockFileSystem) removeTree(top block_service.BlockID) (int, error) {
	freed := 0
	stack := []removeFrame{{bid: top}}

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if fr.expanded {
			if err := fs.free(fr.bid); err != nil {
				return freed, err
			}
			freed++
			continue
		}

		d, err := fs.readDir(fr.bid)
		if err != nil {
			return freed, err
		}
		stack = append(stack, removeFrame{bid: fr.bid, expanded: true})
		for _, e := range d.Live() {
			if e.Kind == descriptor.KindFile {
				n, err := fs.removeFile(e.BID)
				if err != nil {
					return freed, err
				}
				freed += n
				continue
			}
			stack = append(stack, removeFrame{bid: e.BID})
		}
	}
	return freed, nil
}

func (fs *BlockFileSystem) removeEntry(e descriptor.Entry) (int, error) {
	if e.Kind == descriptor.KindFile {
		return fs.removeFile(e.BID)
	}
	return fs.removeTree(e.BID)
}

// cwdWithin reports whether the current directory is bid or lies below it.
func (fs *BlockFileSystem) cwdWithin(bid block_service.BlockID) (bool, error) {
	ids, _, err := fs.ancestry(fs.cwd)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, bid), nil
}

// relocate moves cwd back to the root if it sat inside a removed subtree.
func (fs *BlockFileSystem) relocate(inside bool) {
	if !inside {
		return
	}
	fs.ls.Warn(log_service.LogEvent{
		Message:  "Current directory removed, returning to root",
		Metadata: map[string]any{"cwd": fs.cwd, "root": fs.root},
	})
	fs.cwd = fs.root
}

func (fs *BlockFileSystem) Rmdir(name string) error {
	if err := fs.ready(); err != nil {
		return err
	}
	parentBID := fs.cwd
	parent, err := fs.readDir(parentBID)
	if err != nil {
		return err
	}
	slot, e, err := fs.lookup(parent, descriptor.KindDirectory, name)
	if err != nil {
		return err
	}
	inside, err := fs.cwdWithin(e.BID)
	if err != nil {
		return err
	}

	freed, err := fs.removeTree(e.BID)
	if err != nil {
		return err
	}
	parent.Clear(slot)
	fs.writeDir(parentBID, parent)
	fs.relocate(inside)

	fs.ls.Info(log_service.LogEvent{
		Message:  "Directory removed",
		Metadata: map[string]any{"name": name, "bid": e.BID, "freedBlocks": freed},
	})
	return nil
}

func (fs *BlockFileSystem) RemoveAll() error {
	if err := fs.ready(); err != nil {
		return err
	}
	parentBID := fs.cwd
	parent, err := fs.readDir(parentBID)
	if err != nil {
		return err
	}

	var slots []int
	for slot := range parent.Live() {
		slots = append(slots, slot)
	}

	freed := 0
	for _, slot := range slots {
		e := parent.Entry(slot)
		inside := false
		if e.Kind == descriptor.KindDirectory {
			if inside, err = fs.cwdWithin(e.BID); err != nil {
				return err
			}
		}
		n, err := fs.removeEntry(e)
		freed += n
		if err != nil {
			fs.writeDir(parentBID, parent)
			return err
		}
		parent.Clear(slot)
		fs.relocate(inside)
	}
	fs.writeDir(parentBID, parent)

	fs.ls.Info(log_service.LogEvent{
		Message:  "Removed all children",
		Metadata: map[string]any{"bid": parentBID, "children": len(slots), "freedBlocks": freed},
	})
	return nil
}
