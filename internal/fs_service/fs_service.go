package fs_service

import "iter"

// FileSystemService is one filesystem session: an arena, its tree, and a
// current directory. Name arguments are resolved in the current directory
// only.
type FileSystemService interface {
	// --- Lifecycle ---
	// Init formats the arena and creates the root directory. Prior state
	// is discarded. Every other operation fails with ErrNotInitialized
	// until Init has run.
	Init() error

	// --- Traversal ---
	// Print walks the tree depth-first from the current directory,
	// yielding one Listing per directory. Blocks are read as the sequence
	// is consumed.
	Print() iter.Seq2[Listing, error]

	// --- Navigation ---
	// Chdir moves to a child directory, or to the parent for "..".
	Chdir(name string) error
	Pwd() (string, error)

	// --- Directories ---
	Mkdir(name string) error
	// Rmdir removes a child directory together with everything below it.
	Rmdir(name string) error
	// RemoveAll removes every child of the current directory.
	RemoveAll() error
	Mvdir(oldName, newName string) error

	// --- Files ---
	Mkfil(name string, size int64) error
	Rmfil(name string) error
	Mvfil(oldName, newName string) error
	// Szfil grows or shrinks a file, allocating or releasing data blocks.
	Szfil(name string, size int64) error

	// --- Accounting ---
	Stat() (*FileSystemStats, error)
	// Check verifies that the bitmap and the tree agree.
	Check() error
}
