package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/foodbridge/backend/config"
)

// PhotoService stores food listing photos in S3 and hands back public
// URLs. Optional: when S3 is not configured the photo endpoint is
// unavailable.
type PhotoService struct {
	s3Config *config.S3Config
	log      *logrus.Logger
}

func NewPhotoService(s3Config *config.S3Config, log *logrus.Logger) *PhotoService {
	return &PhotoService{s3Config: s3Config, log: log}
}

// Enabled reports whether an S3 bucket is configured.
func (s *PhotoService) Enabled() bool {
	return s.s3Config != nil && s.s3Config.Client != nil
}

// UploadFoodPhoto uploads the image bytes under a listing-scoped key and
// returns the public URL.
func (s *PhotoService) UploadFoodPhoto(ctx context.Context, foodID uuid.UUID, data []byte, contentType string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("photo storage not configured")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := fmt.Sprintf("food-photos/%s/%s", foodID, uuid.NewString())
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key)
	s.log.WithField("url", url).Info("uploaded food photo")
	return url, nil
}
