// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"inkpress/internal/storage"
)

const (
	// maxUploadSize is the maximum allowed image size (10 MB).
	maxUploadSize = 10 << 20

	// multipartOverhead leaves room for boundaries and headers around the file.
	multipartOverhead = 1 << 20

	// sniffLen is how many leading bytes are used to detect the content type.
	sniffLen = 512
)

// allowedImageTypes maps accepted sniffed MIME types to file extensions.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Uploader persists an uploaded object and returns its public URL.
type Uploader interface {
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// Upload handles image uploads.
type Upload struct {
	store Uploader
	now   func() time.Time
}

// NewUpload creates the upload handler. A nil store disables uploads.
func NewUpload(store Uploader) *Upload {
	return &Upload{store: store, now: time.Now}
}

// Image handles POST /api/upload. The file is read from the "image" field
// and its type is detected from content, not from the client's header.
func (u *Upload) Image(w http.ResponseWriter, r *http.Request) {
	if u.store == nil {
		writeMessage(w, http.StatusServiceUnavailable, "File uploads are not configured")
		return
	}

	if r.ContentLength > maxUploadSize+multipartOverhead {
		writeMessage(w, http.StatusRequestEntityTooLarge, "File too large (max 10 MB)")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "File too large (max 10 MB)")
			return
		}
		writeMessage(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeMessage(w, http.StatusRequestEntityTooLarge, "File too large (max 10 MB)")
		return
	}

	contentType, err := sniff(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	key := storage.ObjectKey(u.now(), ext)
	url, err := u.store.Save(r.Context(), key, contentType, file, header.Size)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("image uploaded", "key", key, "size", header.Size, "type", contentType)
	writeJSON(w, http.StatusCreated, map[string]string{"imageUrl": url})
}

// sniff detects the content type from the first bytes of f and rewinds it.
func sniff(f multipart.File) (string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
