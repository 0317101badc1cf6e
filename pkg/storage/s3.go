package storage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Uploader stores uploaded images in a blob store and returns a public URL
// plus the object key needed to delete the image later.
type Uploader interface {
	Upload(file *multipart.FileHeader, folder string) (url string, key string, err error)
	Delete(key string) error
}

// S3Uploader implements Uploader on top of an S3 bucket
type S3Uploader struct {
	client *s3.S3
	bucket string
	region string
}

// NewS3Uploader creates an S3-backed uploader for the given bucket
func NewS3Uploader(bucket, region string) (*S3Uploader, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Uploader{
		client: s3.New(sess),
		bucket: bucket,
		region: region,
	}, nil
}

// Upload pushes the file to S3 under folder/<uuid><ext> and returns its
// public URL and object key.
func (u *S3Uploader) Upload(file *multipart.FileHeader, folder string) (string, string, error) {
	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	buffer, err := io.ReadAll(src)
	if err != nil {
		return "", "", fmt.Errorf("failed to read uploaded file: %w", err)
	}

	key := folder + "/" + uuid.NewString() + path.Ext(file.Filename)
	contentType := http.DetectContentType(buffer)
	size := int64(len(buffer))

	params := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		ACL:           aws.String("public-read"),
		Body:          bytes.NewReader(buffer),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if _, err := u.client.PutObject(params); err != nil {
		return "", "", fmt.Errorf("s3 PutObject failed: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
	return url, key, nil
}

// Delete removes an object from the bucket. A missing key is not an error.
func (u *S3Uploader) Delete(key string) error {
	if key == "" {
		return nil
	}
	_, err := u.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 DeleteObject failed: %w", err)
	}
	return nil
}
