package util

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"study_planner_backend/internal/planner"
)

// SniffUpload detects the content type of an attachment from its first 512
// bytes and rewinds src so the whole file can be stored afterwards. Types
// outside AllowedUploadTypes are a validation error.
func SniffUpload(src io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])
	for _, allowed := range AllowedUploadTypes {
		if strings.HasPrefix(mimeType, allowed) {
			return mimeType, nil
		}
	}
	return mimeType, fmt.Errorf("%w: 허용되지 않는 파일 형식입니다: %s", planner.ErrValidation, mimeType)
}

// UploadExt keeps a short lowercase extension for blob keys; anything odd is dropped.
func UploadExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		return ""
	}
	return ext
}
