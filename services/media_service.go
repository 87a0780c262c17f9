package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/greenearthng/greenloop/config"
	"github.com/greenearthng/greenloop/db"
	"github.com/greenearthng/greenloop/models"
	"github.com/nfnt/resize"
)

const MaxImageFileSize = 10 * 1024 * 1024 // 10 MB

type MediaService interface {
	ProcessImageFile(fileHeader *multipart.FileHeader, userID uint, reportID uuid.UUID) (feedURL string, thumbnailURL string, err error)
}

type mediaService struct {
	Config    *config.Config
	mediaRepo db.MediaRepository
}

func NewMediaService(mediaRepo db.MediaRepository, conf *config.Config) MediaService {
	return &mediaService{
		Config:    conf,
		mediaRepo: mediaRepo,
	}
}

func CheckFileSize(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxImageFileSize {
		return errors.New("file size exceeds the maximum allowed size")
	}
	return nil
}

// ProcessImageFile decodes the uploaded report photo, renders a square
// feed image and a thumbnail, uploads both to S3 and records the media
// row.
func (m *mediaService) ProcessImageFile(fileHeader *multipart.FileHeader, userID uint, reportID uuid.UUID) (string, string, error) {
	if err := CheckFileSize(fileHeader); err != nil {
		return "", "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open image: %v", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image: %v", err)
	}

	feedImg := imaging.Fill(img, 1080, 1080, imaging.Center, imaging.Lanczos)
	thumbnailImg := resize.Thumbnail(320, 320, img, resize.Lanczos3)

	mediaID := uuid.New().String()
	base := strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	bucketName := m.Config.AwsBucketName
	folderName := "media"

	feedURL, err := m.uploadJPEG(feedImg, fmt.Sprintf("%s_%s_feed.jpg", mediaID, base), bucketName, folderName)
	if err != nil {
		return "", "", err
	}
	thumbnailURL, err := m.uploadJPEG(thumbnailImg, fmt.Sprintf("%s_%s_thumb.jpg", mediaID, base), bucketName, folderName)
	if err != nil {
		return "", "", err
	}

	media := &models.Media{
		ID:           mediaID,
		FileType:     fileHeader.Header.Get("Content-Type"),
		FileSize:     fileHeader.Size,
		Filename:     fileHeader.Filename,
		UserID:       userID,
		FeedURL:      feedURL,
		FullSizeURL:  feedURL,
		ThumbnailURL: thumbnailURL,
		ReportID:     reportID,
	}
	if err := m.mediaRepo.SaveMedia(media); err != nil {
		return "", "", err
	}

	return feedURL, thumbnailURL, nil
}

func (m *mediaService) uploadJPEG(img image.Image, filename, bucketName, folderName string) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image: %v", err)
	}
	return m.mediaRepo.UploadImageToS3(&buf, filename, "image/jpeg", bucketName, folderName)
}
