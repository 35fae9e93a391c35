package panel_test

import (
	"io"
	"io/fs"
	"time"
)

// staticFS is an fs.FS of template paths to template contents.
type staticFS map[string]string

// Open opens the named file.
// When Open returns an error, it should be of type *PathError
// with the Op field set to "open", the Path field set to name,
// and the Err field describing the problem.
func (s staticFS) Open(name string) (fs.File, error) {
	val, ok := s[name]
	if !ok {
		return nil, &fs.PathError{
			Op:   "open",
			Path: name,
			Err:  fs.ErrNotExist,
		}
	}
	return &staticFile{
		name:     name,
		contents: []byte(val),
	}, nil
}

// ReadFile returns the contents of the named file, skipping Open.
func (s staticFS) ReadFile(name string) ([]byte, error) {
	val, ok := s[name]
	if !ok {
		return nil, &fs.PathError{
			Op:   "read",
			Path: name,
			Err:  fs.ErrNotExist,
		}
	}
	return []byte(val), nil
}

type staticFile struct {
	name     string
	contents []byte
	offset   int
}

func (s *staticFile) Stat() (fs.FileInfo, error) {
	return s, nil
}

func (s *staticFile) Read(buf []byte) (int, error) {
	if s.offset >= len(s.contents) {
		return 0, io.EOF
	}
	n := copy(buf, s.contents[s.offset:])
	s.offset += n
	return n, nil
}

func (*staticFile) Close() error {
	return nil
}

func (s *staticFile) Name() string {
	return s.name
}

func (s *staticFile) Size() int64 {
	return int64(len(s.contents))
}

func (*staticFile) Mode() fs.FileMode {
	return 0400
}

func (*staticFile) ModTime() time.Time {
	return time.Now()
}

func (*staticFile) IsDir() bool {
	return false
}

func (*staticFile) Sys() any {
	return nil
}
