// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif" // register GIF decoder
	_ "image/png" // register PNG decoder

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"inkpress/internal/middleware"
	"inkpress/internal/policy"
	"inkpress/internal/storage"
)

const (
	// maxUploadSize is the maximum allowed file upload size (10 MB).
	maxUploadSize = 10 << 20

	// thumbMaxWidth is the maximum width of generated thumbnails.
	thumbMaxWidth = 640

	// thumbQuality is the JPEG quality for thumbnails.
	thumbQuality = 82

	// maxImagePixels guards against decompression bombs.
	maxImagePixels = 40_000_000
)

// allowedUploadTypes defines MIME types accepted for upload.
var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// thumbableTypes are formats the thumbnail pipeline can decode.
var thumbableTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Upload groups the media upload handlers.
type Upload struct {
	storage *storage.Client
}

// NewUpload creates a new Upload handler group. A nil storage client
// means object storage is not configured.
func NewUpload(storage *storage.Client) *Upload {
	return &Upload{storage: storage}
}

// UploadResponse is returned on a successful upload.
type UploadResponse struct {
	URL      string `json:"url"`
	ThumbURL string `json:"thumbUrl,omitempty"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

// Post handles POST /upload: a multipart image upload to S3.
func (h *Upload) Post(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	if middleware.PrincipalFromCtx(r.Context()) == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 10 MB")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 10 MB")
		return
	}

	// Detect content type by sniffing the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])
	if !allowedUploadTypes[contentType] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file type %q is not allowed", contentType))
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process file")
		return
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	now := time.Now()
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	fileID := uuid.New().String()
	key := fmt.Sprintf("uploads/%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)

	ctx := r.Context()
	if err := h.storage.Upload(ctx, key, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "failed to upload file")
		return
	}

	resp := UploadResponse{
		URL:  h.storage.FileURL(key),
		Key:  key,
		Size: int64(len(fileBytes)),
		Type: contentType,
	}

	if thumbableTypes[contentType] {
		thumbData, err := generateThumbnail(bytes.NewReader(fileBytes), thumbMaxWidth)
		if err != nil {
			slog.Warn("thumbnail generation failed", "error", err, "key", key)
		} else if thumbData != nil {
			thumbKey := fmt.Sprintf("uploads/%d/%02d/%s_thumb.jpg", now.Year(), now.Month(), fileID)
			if err := h.storage.Upload(ctx, thumbKey, "image/jpeg", bytes.NewReader(thumbData), int64(len(thumbData))); err != nil {
				slog.Warn("thumbnail upload failed", "error", err, "key", thumbKey)
			} else {
				resp.ThumbURL = h.storage.FileURL(thumbKey)
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /upload: removes a stored object and its
// thumbnail given the public URL returned at upload time. Admin only,
// since object ownership is not tracked.
func (h *Upload) Delete(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	p := middleware.PrincipalFromCtx(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !policy.Can(p, policy.DeleteMedia, nil) {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	key, ok := h.storage.ExtractKey(req.URL)
	if !ok {
		writeError(w, http.StatusBadRequest, "url does not reference stored media")
		return
	}

	ctx := r.Context()
	if err := h.storage.Delete(ctx, key); err != nil {
		slog.Error("s3 delete failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "failed to delete file")
		return
	}

	// The object may never have had a thumbnail; cleanup is best-effort.
	if thumbKey := thumbKeyFor(key); thumbKey != key {
		if err := h.storage.Delete(ctx, thumbKey); err != nil {
			slog.Warn("s3 thumbnail delete failed", "error", err, "key", thumbKey)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
}

// thumbKeyFor maps an upload key to the thumbnail key written alongside
// it, mirroring the naming used on upload.
func thumbKeyFor(key string) string {
	return strings.TrimSuffix(key, filepath.Ext(key)) + "_thumb.jpg"
}

// generateThumbnail produces a JPEG thumbnail no wider than maxWidth.
// Returns (nil, nil) when the image is already small enough.
func generateThumbnail(src io.ReadSeeker, maxWidth int) ([]byte, error) {
	imgCfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Check for image bombs.
	if int64(imgCfg.Width)*int64(imgCfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", imgCfg.Width, imgCfg.Height, maxImagePixels)
	}

	if imgCfg.Width <= maxWidth {
		return nil, nil
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newHeight := int(float64(bounds.Dy()) * ratio)

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
