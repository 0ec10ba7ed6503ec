// Package media загружает изображения в Cloudinary.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kisangi1/The-SOL-NEW/internal/config"
)

// Uploader stores an image and returns its public URL. Handlers depend
// on this interface so tests can avoid the network.
type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

// CloudinaryUploader sends unsigned preset uploads to the Cloudinary
// image upload endpoint.
type CloudinaryUploader struct {
	baseURL      string
	cloudName    string
	uploadPreset string
	client       *http.Client
	logger       *zerolog.Logger
}

func NewCloudinaryUploader(cfg config.CloudinaryConfig, logger *zerolog.Logger) *CloudinaryUploader {
	return &CloudinaryUploader{
		baseURL:      "https://api.cloudinary.com/v1_1",
		cloudName:    cfg.CloudName,
		uploadPreset: cfg.UploadPreset,
		client:       &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (u *CloudinaryUploader) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	if u.cloudName == "" || u.uploadPreset == "" {
		return "", errors.New("cloudinary is not configured")
	}

	body, contentType, err := buildMultipart(filename, u.uploadPreset, file)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/image/upload", u.baseURL, u.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if decoded.Error.Message != "" {
			return "", fmt.Errorf("cloudinary: %s", decoded.Error.Message)
		}
		return "", fmt.Errorf("cloudinary: unexpected status %d", resp.StatusCode)
	}
	if decoded.SecureURL == "" {
		return "", errors.New("cloudinary: empty secure_url in response")
	}

	u.logger.Debug().Str("filename", filename).Msg("Изображение загружено")
	return decoded.SecureURL, nil
}

func buildMultipart(filename, preset string, file io.Reader) (io.Reader, string, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("upload_preset", preset); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	return pr, writer.FormDataContentType(), nil
}
