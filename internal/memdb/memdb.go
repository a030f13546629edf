// Package memdb opens symbol database files as read-only memory maps.
//
// The symbol layout of the body is opaque to this package; it validates the
// header, exposes the identity stored in it and gives random access to the
// body bytes.
//
// File layout (little endian):
//
//	magic   [4]byte "MMDB"
//	version uint32
//	idLen   uint32
//	bodyLen uint64
//	id      [idLen]byte
//	body    [bodyLen]byte
package memdb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/aweris/symstash/internal/sdk"
)

const (
	Magic         = "MMDB"
	FormatVersion = 1
	headerSize    = 4 + 4 + 4 + 8
)

var (
	ErrTruncated = errors.New("memdb: file truncated")
	ErrBadHeader = errors.New("memdb: invalid header")
	ErrClosed    = errors.New("memdb: closed")
)

// DB is an opened database. It is safe for concurrent use.
//
// The mapping is released by Close or, when Close is never called, once the
// DB becomes unreachable.
type DB struct {
	path string
	info sdk.Info
	data []byte
	body []byte

	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	cleanup runtime.Cleanup
}

// Open maps the file at path and validates its header.
func Open(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open memdb: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat memdb: %w", err)
	}
	if st.Size() < headerSize {
		return nil, fmt.Errorf("%w: %s: %d bytes", ErrTruncated, path, st.Size())
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	info, body, err := parse(data)
	if err != nil {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	db := &DB{path: path, info: info, data: data, body: body}
	db.cleanup = runtime.AddCleanup(db, func(b []byte) { _ = unix.Munmap(b) }, data)
	return db, nil
}

func parse(data []byte) (sdk.Info, []byte, error) {
	if string(data[:4]) != Magic {
		return sdk.Info{}, nil, fmt.Errorf("%w: bad magic", ErrBadHeader)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != FormatVersion {
		return sdk.Info{}, nil, fmt.Errorf("%w: unsupported version %d", ErrBadHeader, v)
	}
	idLen := uint64(binary.LittleEndian.Uint32(data[8:12]))
	bodyLen := binary.LittleEndian.Uint64(data[12:20])

	rest := uint64(len(data) - headerSize)
	if idLen > rest || bodyLen > rest-idLen {
		return sdk.Info{}, nil, fmt.Errorf("%w: header declares %d bytes, have %d", ErrTruncated, idLen+bodyLen, rest)
	}

	id := string(data[headerSize : headerSize+idLen])
	info, err := sdk.Parse(id)
	if err != nil {
		return sdk.Info{}, nil, fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	start := headerSize + idLen
	return info, data[start : start+bodyLen], nil
}

// Info returns the identity recorded in the header.
func (db *DB) Info() sdk.Info { return db.info }

// Path returns the file the database was opened from.
func (db *DB) Path() string { return db.path }

// Len returns the body size in bytes.
func (db *DB) Len() int64 { return int64(len(db.body)) }

// ReadAt reads body bytes starting at off.
func (db *DB) ReadAt(p []byte, off int64) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("memdb: negative offset %d", off)
	}
	if off >= int64(len(db.body)) {
		return 0, io.EOF
	}
	n := copy(p, db.body[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file. Further reads fail with ErrClosed.
func (db *DB) Close() error {
	var err error
	db.once.Do(func() {
		db.mu.Lock()
		defer db.mu.Unlock()
		db.closed = true
		db.cleanup.Stop()
		err = unix.Munmap(db.data)
		db.data, db.body = nil, nil
	})
	return err
}

// Shared is a read-only view of a DB for holders that do not own it. It has
// no Close: the mapping stays valid while any holder can reach the view and is
// released by the garbage collector once none can.
type Shared struct {
	db *DB
}

// Share hands db over to a Shared view. Once the view has been given to
// another holder, db must not be closed.
func (db *DB) Share() *Shared { return &Shared{db: db} }

// Info returns the identity recorded in the header.
func (s *Shared) Info() sdk.Info { return s.db.Info() }

// Path returns the file the database was opened from.
func (s *Shared) Path() string { return s.db.Path() }

// Len returns the body size in bytes.
func (s *Shared) Len() int64 { return s.db.Len() }

// ReadAt reads body bytes starting at off.
func (s *Shared) ReadAt(p []byte, off int64) (int, error) {
	n, err := s.db.ReadAt(p, off)
	runtime.KeepAlive(s)
	return n, err
}

// Write encodes a database for info with the given body.
func Write(w io.Writer, info sdk.Info, body []byte) error {
	id := info.ID()
	hdr := make([]byte, headerSize)
	copy(hdr, Magic)
	binary.LittleEndian.PutUint32(hdr[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(id)))
	binary.LittleEndian.PutUint64(hdr[12:20], uint64(len(body)))

	for _, b := range [][]byte{hdr, []byte(id), body} {
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("write memdb: %w", err)
		}
	}
	return nil
}

// WriteFile writes a database file to path.
func WriteFile(path string, info sdk.Info, body []byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create memdb: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Write(f, info, body)
}
