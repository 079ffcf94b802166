// Package storage keeps uploaded bytes in a filesystem addressed by
// relative paths. Metadata lives in the database; this package only knows paths.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"buildportal/internal/domain"
)

// ErrNoLocalPath is returned by LocalPath when the backing filesystem is not on disk
var ErrNoLocalPath = errors.New("blob store has no local path")

// sniffLen is how many leading bytes http.DetectContentType looks at
const sniffLen = 512

// BlobStore stores blobs in an afero filesystem
type BlobStore struct {
	fs afero.Fs
}

// NewBlobStore creates a store over fs
func NewBlobStore(fs afero.Fs) *BlobStore {
	return &BlobStore{fs: fs}
}

// NewOSBlobStore creates a store rooted at dir on the local disk
func NewOSBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return NewBlobStore(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// Stored describes a blob written by Put
type Stored struct {
	Path     string
	Size     int64
	MimeType string
}

// Put writes r under dir with a generated name that keeps filename's
// extension. The MIME type is sniffed from the content, falling back to the
// extension when the content is not recognised.
func (s *BlobStore) Put(dir, filename string, r io.Reader) (*Stored, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	key := path.Join(cleanDir(dir), uuid.NewString()+ext)

	if err := s.fs.MkdirAll(path.Dir(key), 0o750); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	f, err := s.fs.Create(key)
	if err != nil {
		return nil, fmt.Errorf("create blob: %w", err)
	}

	size, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), r))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(key)
		return nil, fmt.Errorf("write blob: %w", err)
	}

	return &Stored{
		Path:     key,
		Size:     size,
		MimeType: detectMimeType(head, ext),
	}, nil
}

// Blob is an open blob ready for http.ServeContent
type Blob struct {
	io.ReadSeekCloser
	Name    string
	Size    int64
	ModTime time.Time
}

// Open opens the blob at p. A missing blob is domain.ErrNotFound.
func (s *BlobStore) Open(p string) (*Blob, error) {
	key := cleanKey(p)
	f, err := s.fs.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("blob %s: %w", p, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat blob: %w", err)
	}
	if stat.IsDir() {
		f.Close()
		return nil, fmt.Errorf("blob %s: %w", p, domain.ErrNotFound)
	}

	return &Blob{
		ReadSeekCloser: f,
		Name:           path.Base(key),
		Size:           stat.Size(),
		ModTime:        stat.ModTime(),
	}, nil
}

// Delete removes the blob at p; a missing blob is not an error
func (s *BlobStore) Delete(p string) error {
	err := s.fs.Remove(cleanKey(p))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// LocalPath returns the on-disk path of a blob, for tools that need a real file
func (s *BlobStore) LocalPath(p string) (string, error) {
	base, ok := s.fs.(*afero.BasePathFs)
	if !ok {
		return "", ErrNoLocalPath
	}
	return base.RealPath(cleanKey(p))
}

// LocalFile is LocalPath for any backing filesystem: blobs that are not on
// disk are copied to a temporary file. The returned cleanup must be called.
func (s *BlobStore) LocalFile(p string) (string, func(), error) {
	local, err := s.LocalPath(p)
	if err == nil {
		return local, func() {}, nil
	}
	if !errors.Is(err, ErrNoLocalPath) {
		return "", nil, err
	}

	blob, err := s.Open(p)
	if err != nil {
		return "", nil, err
	}
	defer blob.Close()

	tmp, err := os.CreateTemp("", "blob-*"+path.Ext(blob.Name))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	_, err = io.Copy(tmp, blob)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("copy blob: %w", err)
	}
	return tmp.Name(), cleanup, nil
}

// cleanKey confines p to the store root
func cleanKey(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func cleanDir(dir string) string {
	key := cleanKey(dir)
	if key == "" || key == "." {
		return "misc"
	}
	return key
}

func detectMimeType(head []byte, ext string) string {
	detected := http.DetectContentType(head)
	if detected != "application/octet-stream" && !strings.HasPrefix(detected, "text/plain") {
		return detected
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}
	return detected
}
