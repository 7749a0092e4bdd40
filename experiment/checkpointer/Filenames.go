package checkpointer

import (
	"fmt"
	"path/filepath"
	"time"
)

// fileEnumerator enumerates filenames
type fileEnumerator struct {
	i         int
	path      string
	extension string
}

// filename returns the name of the next consecutive enumerated file
func (f *fileEnumerator) filename() string {
	f.i++
	return fmt.Sprintf("%v-%06d%v", f.path, f.i, f.extension)
}

// FilenameEnumerator returns a function which will return filenames
// in directory dir with a counter integer suffix. Each time the
// returned function is called, the counter suffix will be one higher
// than on the previous call, starting at start+1. For example:
//
//	next := FilenameEnumerator(0, "out", "agent", ".gob")
//	next() // out/agent-000001.gob
//	next() // out/agent-000002.gob
func FilenameEnumerator(start int, dir, name, extension string) func() string {
	enum := fileEnumerator{
		i:         start,
		path:      filepath.Join(dir, name),
		extension: extension,
	}

	return enum.filename
}

// FileTimer returns a function which will return filenames in directory
// dir suffixed with the current UTC time
func FileTimer(dir, name, extension string) func() string {
	path := filepath.Join(dir, name)
	return func() string {
		stamp := time.Now().UTC().Format("20060102T150405.000000000")
		return fmt.Sprintf("%v-%v%v", path, stamp, extension)
	}
}
