package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/rahmatfadhil/gostore/internal/apperr"
)

const MaxProofSize = 5 << 20 // 5MB

var proofExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Store writes uploaded payment proofs to local disk. Filenames are random
// so a resubmission never overwrites an already-verified proof.
type Store struct {
	Dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// SaveProof validates size and sniffed MIME type, stores the file and
// returns its public URL path.
func (s *Store) SaveProof(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxProofSize {
		return "", fmt.Errorf("%w: file exceeds 5MB", apperr.ErrValidation)
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	mime := http.DetectContentType(head[:n])
	ext, ok := proofExt[mime]
	if !ok {
		return "", fmt.Errorf("%w: unsupported file type %s", apperr.ErrValidation, mime)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
