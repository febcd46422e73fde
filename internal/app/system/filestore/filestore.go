// Package filestore names and stores chat attachments in the configured
// waffle storage backend.
package filestore

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// Save stores an upload under a unique key and returns the attachment
// record to embed in a message. The caller sets URL.
// Keys look like chat/YYYY/MM/<8 hex>-<sanitized name>.
func Save(ctx context.Context, store storage.Store, filename string, r io.Reader, contentType string) (models.Attachment, error) {
	now := time.Now().UTC()
	key := path.Join(
		fmt.Sprintf("chat/%04d/%02d", now.Year(), now.Month()),
		fmt.Sprintf("%s-%s", uuid.New().String()[:8], SanitizeFilename(filename)),
	)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := store.Put(ctx, key, r, &storage.PutOptions{ContentType: contentType}); err != nil {
		return models.Attachment{}, fmt.Errorf("store upload: %w", err)
	}

	return models.Attachment{
		Path:        key,
		Name:        path.Base(strings.ReplaceAll(filename, "\\", "/")),
		ContentType: contentType,
	}, nil
}

// SanitizeFilename drops directory components and replaces characters
// outside [A-Za-z0-9._-] with underscores. Long names are cut to 100 bytes,
// keeping a short extension.
func SanitizeFilename(filename string) string {
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	name := string(result)
	// Storage backends reject any key containing "..".
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", "_.")
	}
	result = []byte(name)

	if len(result) == 0 || name == "." || name == "_." {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
