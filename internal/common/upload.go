package common

import (
	"fmt"
	"os"
	"path/filepath"

	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/validation"

	"github.com/gabriel-vasile/mimetype"
)

// LoadUpload reads a photo from disk and checks it the way the forms do
// before it is attached to a request.
func LoadUpload(path string) (*models.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}

	upload := &models.Upload{
		FileName:    filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}
	if err := validation.Photo(upload); err != nil {
		return nil, err
	}
	return upload, nil
}
