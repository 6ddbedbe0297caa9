// Package archive keeps a copy of every uploaded statement.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/google/uuid"
)

// Archive stores documents under a single directory.
type Archive struct {
	dir    string
	logger logging.Logger
}

// New creates an Archive rooted at dir. The directory is created on first Save.
func New(dir string, logger logging.Logger) *Archive {
	return &Archive{dir: dir, logger: logging.OrDefault(logger)}
}

// Dir returns the archive directory.
func (a *Archive) Dir() string {
	return a.dir
}

// Save copies r into the archive and returns the stored path. Stored names
// are prefixed with a random id, so uploads sharing a file name never
// overwrite each other.
func (a *Archive) Save(fileName string, r io.Reader) (string, error) {
	if err := os.MkdirAll(a.dir, models.PermissionDirectory); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(a.dir, uuid.NewString()+"_"+baseName(fileName))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, models.PermissionArchivedFile)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", errors.Join(fmt.Errorf("failed to write archive file: %w", err), os.Remove(path))
	}

	a.logger.Debug("Archived document",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: "bytes", Value: n})
	return path, nil
}

// baseName strips any directory part a client may send with the name.
func baseName(fileName string) string {
	name := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	return name
}
