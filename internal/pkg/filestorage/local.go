package filestorage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
)

// allowedExtensions lists the accepted upload types per directory.
var allowedExtensions = map[string][]string{
	DirProofs:   {".pdf", ".jpg", ".jpeg", ".png"},
	DirProfiles: {".jpg", ".jpeg", ".png", ".webp"},
	DirBanners:  {".jpg", ".jpeg", ".png", ".webp"},
	DirResumes:  {".pdf", ".doc", ".docx"},
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath  string
	urlPrefix string
	maxBytes  int64
}

// NewLocalStorage creates a new LocalStorage rooted at basePath. References
// are returned as urlPrefix/dir/name. maxBytes of zero disables the size check.
func NewLocalStorage(basePath, urlPrefix string, maxBytes int64) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath:  basePath,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		maxBytes:  maxBytes,
	}, nil
}

// CheckUpload validates the extension and size of an upload destined for dir.
func (ls *LocalStorage) CheckUpload(fileHeader *multipart.FileHeader, dir string) error {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	allowed, ok := allowedExtensions[dir]
	if !ok {
		return fmt.Errorf("unknown upload directory %q", dir)
	}
	valid := false
	for _, a := range allowed {
		if a == ext {
			valid = true
			break
		}
	}
	if !valid {
		return apperrors.NewValidationError(
			fmt.Sprintf("file type %q is not allowed", ext),
			map[string]interface{}{"allowed": allowed},
		)
	}
	if ls.maxBytes > 0 && fileHeader.Size > ls.maxBytes {
		return apperrors.NewValidationError(
			fmt.Sprintf("file %s exceeds the upload size limit", fileHeader.Filename),
			map[string]interface{}{"maxBytes": ls.maxBytes},
		)
	}
	return nil
}

// Save stores the upload under dir with a random name
func (ls *LocalStorage) Save(fileHeader *multipart.FileHeader, dir string) (string, error) {
	if fileHeader == nil {
		return "", errors.New("no file uploaded")
	}
	if err := ls.CheckUpload(fileHeader, dir); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fullDirPath := filepath.Join(ls.basePath, dir)
	if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	uniqueFilename := uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	ref := path.Join(ls.urlPrefix, dir, uniqueFilename)
	logger.Debug().Str("filename", fileHeader.Filename).Str("ref", ref).Msg("File saved successfully")
	return ref, nil
}

// Delete removes the file behind ref. References outside this storage are ignored.
func (ls *LocalStorage) Delete(ref string) error {
	if ref == "" {
		return nil
	}
	rel := strings.TrimPrefix(ref, ls.urlPrefix+"/")
	if rel == ref || strings.Contains(rel, "..") {
		return fmt.Errorf("invalid file reference: %s", ref)
	}

	physicalPath := filepath.Join(ls.basePath, filepath.FromSlash(rel))
	if err := os.Remove(physicalPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
