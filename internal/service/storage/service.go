package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

// Service writes export artifacts into a local directory.
type Service struct {
	basePath string
	logger   *logger.Logger
}

func New(basePath string, log *logger.Logger) *Service {
	return &Service{
		basePath: basePath,
		logger:   log,
	}
}

func (s *Service) Dir() string {
	return s.basePath
}

// Save writes data as name inside the output directory and returns the file
// path. A name without an extension gets one from the content.
func (s *Service) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "save cancelled")
	}
	if err := checkName(name); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "failed to create output directory")
	}

	if filepath.Ext(name) == "" {
		name += detectExtension(data)
	}
	filePath := filepath.Join(s.basePath, name)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "failed to write file")
	}

	s.logger.Info("saved file locally", "path", filePath, "size", len(data))
	return filePath, nil
}

// checkName keeps every artifact directly inside the output directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errors.New(errors.ErrCodeValidation, "invalid file name: "+name)
	}
	return nil
}

func detectExtension(data []byte) string {
	if len(data) < 4 {
		return ".bin"
	}
	// PNG
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return ".png"
	}
	// ZIP
	if data[0] == 0x50 && data[1] == 0x4B {
		return ".zip"
	}
	return ".bin"
}
