package tusclient

import "os"

// File is the abstraction the engine uploads from: a path for fingerprinting
// and metadata defaults, a length, and ranged byte reads. Implementations
// must tolerate concurrent calls to ReadChunk from a single session (the
// engine never issues more than one at a time, but does not itself
// serialize access).
type File interface {
	// Path returns the identity used for the default fingerprint and
	// default filename metadata.
	Path() string
	// Size returns the total length of the file in bytes.
	Size() (int64, error)
	// ReadChunk returns the bytes in [offset, offset+maxBytes), or fewer if
	// that range runs past the end of the file.
	ReadChunk(offset, maxBytes int64) ([]byte, error)
}

// LocalFile is a File backed by an *os.File, opened once and read with
// ReadAt so the engine's offset bookkeeping never needs to seek the
// underlying descriptor.
type LocalFile struct {
	path string
	f    *os.File
	size int64
}

// OpenLocalFile opens path for reading and captures its size. The returned
// file must be closed by the caller once the session is done with it.
func OpenLocalFile(path string) (*LocalFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IoError{Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &IoError{Err: err}
	}
	return &LocalFile{path: path, f: f, size: info.Size()}, nil
}

func (l *LocalFile) Path() string { return l.path }

func (l *LocalFile) Size() (int64, error) { return l.size, nil }

func (l *LocalFile) ReadChunk(offset, maxBytes int64) ([]byte, error) {
	return readChunk(l, offset, maxBytes)
}

// Close releases the underlying file descriptor.
func (l *LocalFile) Close() error { return l.f.Close() }

// readChunk implements the shared chunk-reading contract (§4.5): the window
// [offset, min(offset+maxBytes, size)), read without disturbing any cursor
// the caller might also be using.
func readChunk(l *LocalFile, offset, maxBytes int64) ([]byte, error) {
	size := l.size
	end := offset + maxBytes
	if end > size {
		end = size
	}
	if end <= offset {
		return []byte{}, nil
	}

	buf := make([]byte, end-offset)
	n, err := l.f.ReadAt(buf, offset)
	if err != nil && n == 0 {
		return nil, &IoError{Err: err}
	}
	return buf[:n], nil
}
