package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"savory-orders/internal/apperr"
)

const MaxImageSize = 5 << 20

// imageExtensions maps the sniffed content types we store to the extension
// the file is saved under. Anything else, SVG included, is refused.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func allowedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	if ext == ".jpeg" {
		return true
	}
	for _, known := range imageExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	File        io.Reader
}

type ImageService struct {
	store MediaStore
}

func NewImageService(store MediaStore) *ImageService {
	return &ImageService{store: store}
}

// Upload checks type and size before relaying the bytes to the media store.
func (s *ImageService) Upload(ctx context.Context, upload ImageUpload) (string, error) {
	if upload.File == nil {
		return "", apperr.Validation("file", "no file uploaded")
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return "", apperr.Validation("file", "only image files are allowed")
	}
	if upload.Size > MaxImageSize {
		return "", apperr.Validation("file", "image must be 5MB or smaller")
	}

	// The declared type comes from the client; the bytes decide.
	body := bufio.NewReaderSize(upload.File, 512)
	head, err := body.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", apperr.Validation("file", "could not read upload")
	}
	ext, ok := imageExtensions[http.DetectContentType(head)]
	if !ok {
		return "", apperr.Validation("file", "only image files are allowed")
	}
	base := filepath.Base(upload.Filename)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ext

	url, err := s.store.Upload(ctx, name, io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return "", apperr.External("media store", err)
	}
	return url, nil
}

type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	Folder string
}

func NewCloudinaryStore(cloudinaryURL, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, Folder: folder}, nil
}

func (c *CloudinaryStore) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   c.Folder,
		PublicID: uuid.NewString(),
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// LocalStore writes uploads under Dir and serves them from /uploads/.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func (l LocalStore) Upload(_ context.Context, filename string, file io.Reader) (string, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtension(ext) {
		return "", fmt.Errorf("refusing to store %q", filename)
	}
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(l.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return l.BaseURL + "/uploads/" + name, nil
}
