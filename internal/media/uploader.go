// server/internal/media/uploader.go
package media

import (
	"bytes"
	"context"
	"fmt"

	appconfig "fleet-coordinator-api-server/config"
	"fleet-coordinator-api-server/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PlaceholderURL is served for references that no longer resolve; a broken
// image must degrade to a placeholder, never break the incident view.
const PlaceholderURL = "https://via.placeholder.com/400x300?text=Imagen+no+disponible"

// Uploader stores incident images on S3 and hands back opaque references.
type Uploader struct {
	Client           *s3.Client
	Bucket           string
	Region           string
	CloudFrontDomain string
}

func NewUploader(cfg appconfig.S3Config) (*Uploader, error) {
	sdkConfig, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Uploader{
		Client:           s3.NewFromConfig(sdkConfig),
		Bucket:           cfg.Bucket,
		Region:           cfg.Region,
		CloudFrontDomain: cfg.CloudFrontDomain,
	}, nil
}

// Upload stores the payload and returns the pointer recorded on the
// incident.
func (u *Uploader) Upload(ctx context.Context, payload []byte, fileName, fileType string) (models.MediaPointer, error) {
	if fileType == "" {
		fileType = "image/jpeg"
	}
	objectKey := fmt.Sprintf("incidents/%s-%s", uuid.New().String()[:8], fileName)

	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(fileType),
	})
	if err != nil {
		return models.MediaPointer{}, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return models.MediaPointer{
		ID:       objectKey,
		URL:      u.objectURL(objectKey),
		FileName: fileName,
		FileType: fileType,
	}, nil
}

func (u *Uploader) objectURL(objectKey string) string {
	if u.CloudFrontDomain != "" {
		return fmt.Sprintf("https://%s/%s", u.CloudFrontDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, objectKey)
}

// ResolveURL turns a stored pointer into a displayable URL, falling back
// to the placeholder for empty or broken references.
func ResolveURL(pointer *models.MediaPointer) string {
	if pointer == nil || pointer.URL == "" {
		return PlaceholderURL
	}
	return pointer.URL
}
