package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/futig/explainer-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const maxSafeNameLength = 50

// FileManager keeps uploaded documents as blobs in a single directory.
type FileManager struct {
	fs     afero.Fs
	dir    string
	now    func() time.Time
	logger *zap.Logger
}

func NewFileManager(fsys afero.Fs, dir string, logger *zap.Logger) (*FileManager, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &FileManager{
		fs:     fsys,
		dir:    dir,
		now:    time.Now,
		logger: logger,
	}, nil
}

// Save writes content under a generated unique name and returns that name.
func (m *FileManager) Save(ctx context.Context, originalFilename string, content []byte) (string, error) {
	name := m.safeFilename(originalFilename)

	if err := afero.WriteFile(m.fs, m.path(name), content, 0o644); err != nil {
		return "", fmt.Errorf("%w: save %s: %w", entity.ErrStorageFailure, name, err)
	}

	ctxzap.Info(ctx, "file saved",
		zap.String("stored_name", name),
		zap.Int("size", len(content)),
	)
	return name, nil
}

func (m *FileManager) Read(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(m.fs, m.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, entity.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", entity.ErrStorageFailure, name, err)
	}
	return data, nil
}

func (m *FileManager) Info(ctx context.Context, name string) (*entity.FileInfo, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	st, err := m.fs.Stat(m.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, entity.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", entity.ErrStorageFailure, name, err)
	}
	return fileInfo(st), nil
}

// Delete reports false when the file does not exist.
func (m *FileManager) Delete(ctx context.Context, name string) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}

	err := m.fs.Remove(m.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		ctxzap.Warn(ctx, "file not found for deletion", zap.String("stored_name", name))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: delete %s: %w", entity.ErrStorageFailure, name, err)
	}

	ctxzap.Info(ctx, "file deleted", zap.String("stored_name", name))
	return true, nil
}

func (m *FileManager) List(ctx context.Context) ([]entity.FileInfo, error) {
	entries, err := afero.ReadDir(m.fs, m.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", entity.ErrStorageFailure, err)
	}

	files := make([]entity.FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, *fileInfo(e))
	}
	return files, nil
}

func (m *FileManager) Stats(ctx context.Context) (entity.StorageStats, error) {
	files, err := m.List(ctx)
	if err != nil {
		return entity.StorageStats{UploadDirectory: m.dir}, err
	}

	var total int64
	for _, f := range files {
		total += f.Size
	}

	return entity.StorageStats{
		TotalFiles:      len(files),
		TotalSizeBytes:  total,
		TotalSizeMB:     math.Round(float64(total)/(1024*1024)*100) / 100,
		UploadDirectory: m.dir,
	}, nil
}

func (m *FileManager) path(name string) string {
	return filepath.Join(m.dir, name)
}

// safeFilename builds "<YYYYMMDD_HHMMSS>_<hash8>_<cleaned stem><ext>".
func (m *FileManager) safeFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	stem := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))

	var b strings.Builder
	for _, r := range stem {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := []rune(strings.TrimSpace(b.String()))
	if len(safe) > maxSafeNameLength {
		safe = safe[:maxSafeNameLength]
	}

	sum := sha256.Sum256([]byte(original))
	return fmt.Sprintf("%s_%s_%s%s",
		m.now().Format("20060102_150405"),
		hex.EncodeToString(sum[:4]),
		string(safe),
		ext,
	)
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return entity.ErrInvalidFilename
	}
	return nil
}

func fileInfo(st fs.FileInfo) *entity.FileInfo {
	return &entity.FileInfo{
		Filename:   st.Name(),
		Size:       st.Size(),
		CreatedAt:  st.ModTime(),
		ModifiedAt: st.ModTime(),
		Extension:  strings.TrimPrefix(strings.ToLower(filepath.Ext(st.Name())), "."),
	}
}
