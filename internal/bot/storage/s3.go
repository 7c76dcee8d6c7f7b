package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/homeworkbot/internal/common"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// S3Client uploads blobs to an S3-compatible backend (MinIO in development).
type S3Client struct {
	user         string
	password     string
	bucket       string
	region       string
	baseEndpoint string
}

func NewS3Client(user, password, bucket, region, baseEndpoint string) *S3Client {
	return &S3Client{
		user:         user,
		password:     password,
		bucket:       bucket,
		region:       region,
		baseEndpoint: baseEndpoint,
	}
}

// RandomObjectKey builds a per-upload storage key under the user's namespace.
func RandomObjectKey(userID int64) string {
	return fmt.Sprintf("submissions/%d/%v", userID, uuid.New())
}

func (c *S3Client) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.user,     // MINIO_ROOT_USER
			c.password, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.baseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Put streams the staged file to the bucket. Any failure, including a context
// timeout, is reported as common.ErrorUpload.
func (c *S3Client) Put(ctx context.Context, userID int64, localPath, fileName, mimeType string) (string, error) {

	client, err := c.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorUpload, err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", common.ErrorUpload, localPath, err)
	}
	defer f.Close()

	key := RandomObjectKey(userID)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		Body:        f,
		ContentType: &mimeType,
		Metadata:    map[string]string{"filename": fileName},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorUpload, err)
	}

	return key, nil
}
