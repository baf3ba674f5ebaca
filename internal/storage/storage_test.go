package storage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rahmatfadhil/gostore/internal/apperr"
)

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("proof", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["proof"][0]
}

func TestSaveProofPNG(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	url, err := s.SaveProof(multipartFile(t, "transfer.png", png))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/"))
	require.True(t, strings.HasSuffix(url, ".png"))

	saved, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	require.Equal(t, png, saved)
}

func TestSaveProofJPEG(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	url, err := s.SaveProof(multipartFile(t, "transfer.jpg", jpeg))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(url, ".jpg"))
}

func TestSaveProofRejectsWrongType(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.SaveProof(multipartFile(t, "notes.txt", []byte("not an image at all")))
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSaveProofRejectsOversize(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	big := make([]byte, MaxProofSize+1)
	copy(big, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	_, err = s.SaveProof(multipartFile(t, "big.png", big))
	require.ErrorIs(t, err, apperr.ErrValidation)
}
