package db

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/greenearthng/greenloop/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type MediaRepository interface {
	SaveMedia(media *models.Media) error
	UploadImageToS3(file io.Reader, filename, contentType, bucketName, folderName string) (string, error)
}

type mediaRepo struct {
	DB *gorm.DB
}

func NewMediaRepo(db *GormDB) MediaRepository {
	return &mediaRepo{db.DB}
}

func (m *mediaRepo) SaveMedia(media *models.Media) error {
	if err := m.DB.Create(media).Error; err != nil {
		return errors.Wrap(err, "saving media")
	}
	return nil
}

func (m *mediaRepo) UploadImageToS3(file io.Reader, filename, contentType, bucketName, folderName string) (string, error) {
	sanitizedFilename := strings.ReplaceAll(filename, " ", "_")
	key := fmt.Sprintf("%s/%s", folderName, sanitizedFilename)

	client, err := createS3Client()
	if err != nil {
		return "", fmt.Errorf("failed to create S3 client: %v", err)
	}

	_, err = client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %v", err)
	}

	fileURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucketName, os.Getenv("AWS_REGION"), key)
	return fileURL, nil
}

func createS3Client() (*s3.Client, error) {
	region := os.Getenv("AWS_REGION")
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %v", err)
	}

	return s3.NewFromConfig(cfg), nil
}
