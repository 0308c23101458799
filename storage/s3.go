package storage

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3API ist die Teilmenge von *s3.Client, die Bucket benutzt.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewS3Client erstellt einen S3-Client für einen S3-kompatiblen Endpunkt.
func NewS3Client(ctx context.Context, endpoint, region, accessKey, secretKey string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}), nil
}

// Bucket lädt Objekte hoch und rotiert alte Objekte unter einem Präfix.
type Bucket struct {
	client S3API
	name   string
	logger *zap.Logger
}

func NewBucket(client S3API, name string, logger *zap.Logger) *Bucket {
	return &Bucket{client: client, name: name, logger: logger}
}

// Upload lädt data unter key hoch.
func (b *Bucket) Upload(ctx context.Context, key, contentType string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", b.name, key, err)
	}
	return nil
}

// Rotate behält die keep neuesten Objekte unter prefix und löscht den Rest.
// Fehler beim Löschen einzelner Objekte werden geloggt, nicht zurückgegeben.
func (b *Bucket) Rotate(ctx context.Context, prefix string, keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative, got %d", keep)
	}
	output, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.name),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("list s3://%s/%s: %w", b.name, prefix, err)
	}

	objects := output.Contents
	if len(objects) <= keep {
		b.logger.Info("No rotation needed", zap.Int("objects", len(objects)), zap.Int("keep", keep))
		return nil, nil
	}

	sort.Slice(objects, func(i, j int) bool {
		ti, tj := aws.ToTime(objects[i].LastModified), aws.ToTime(objects[j].LastModified)
		if ti.Equal(tj) {
			return strings.Compare(aws.ToString(objects[i].Key), aws.ToString(objects[j].Key)) > 0
		}
		return ti.After(tj)
	})

	var deleted []string
	for _, obj := range objects[keep:] {
		key := aws.ToString(obj.Key)
		_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.name),
			Key:    aws.String(key),
		})
		if err != nil {
			b.logger.Error("Failed to delete old object", zap.String("key", key), zap.Error(err))
			continue
		}
		b.logger.Info("Deleted old object", zap.String("key", key))
		deleted = append(deleted, key)
	}
	return deleted, nil
}
