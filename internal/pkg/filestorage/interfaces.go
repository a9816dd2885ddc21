package filestorage

import (
	"mime/multipart"
)

// FileStorage stores uploaded files and hands back opaque references
// that can be served under the static uploads route.
type FileStorage interface {
	// Save stores the upload under dir and returns its reference
	Save(fileHeader *multipart.FileHeader, dir string) (string, error)

	// Delete removes a previously returned reference. Missing files are not an error.
	Delete(ref string) error
}

// Upload directories
const (
	DirProofs   = "proofs"
	DirProfiles = "profiles"
	DirResumes  = "resumes"
	DirBanners  = "banners"
)
