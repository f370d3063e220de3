package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/expensio/expense-docai/constants"
	"github.com/expensio/expense-docai/internal/common"
)

// StoredAsset describes one receipt file placed under the store directory.
type StoredAsset struct {
	Path         string
	Ext          string
	HashHex      string
	Size         int64
	MimeType     string
	Deduplicated bool
}

// Store is content-hash addressed file storage for original receipt assets.
// The same bytes uploaded twice land on the same path.
type Store struct {
	dir    string
	logger *slog.Logger
}

func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Save writes the upload into the store, named by its sha256. Only the
// extensions in constants.AllowedExtensions are accepted.
func (s *Store) Save(r io.Reader, filename string) (StoredAsset, error) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return StoredAsset{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFileType, ext)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return StoredAsset{}, common.WrapError(err, "create assets dir")
	}

	tmp, err := os.CreateTemp(s.dir, "upload-*")
	if err != nil {
		return StoredAsset{}, common.WrapError(err, "create temp file")
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		return StoredAsset{}, common.WrapError(err, "write upload")
	}
	if err := tmp.Close(); err != nil {
		return StoredAsset{}, common.WrapError(err, "close temp file")
	}

	hashHex := hex.EncodeToString(h.Sum(nil))
	final := filepath.Join(s.dir, hashHex+"."+ext)

	dedup := false
	if _, err := os.Stat(final); err == nil {
		dedup = true
	} else if err := os.Rename(tmp.Name(), final); err != nil {
		return StoredAsset{}, common.WrapError(err, "store asset")
	}

	s.logger.Info("asset stored",
		"path", final, "hash", hashHex, "bytes", size, "deduplicated", dedup)
	return StoredAsset{
		Path:         final,
		Ext:          ext,
		HashHex:      hashHex,
		Size:         size,
		MimeType:     constants.MimeTypes[ext],
		Deduplicated: dedup,
	}, nil
}

// Read returns the raw bytes of a stored asset.
func (s *Store) Read(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, "read asset")
	}
	return b, nil
}
