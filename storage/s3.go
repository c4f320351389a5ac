package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "aqar_scraper/config"
	"aqar_scraper/models"
)

// SnapshotArchiver uploads a timestamped copy of the dataset to
// S3-compatible storage after each successful merge. Snapshots are the
// off-box audit trail; a failed upload is never fatal to the run.
type SnapshotArchiver struct {
	client *s3.Client
	bucket string
}

func NewSnapshotArchiver(ctx context.Context, cfg appconfig.ArchiveConfig) (*SnapshotArchiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &SnapshotArchiver{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Archive uploads the dataset under a timestamped key and returns the key.
func (a *SnapshotArchiver) Archive(ctx context.Context, records []models.Record) (string, error) {
	data, err := EncodeCSV(records)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("snapshots/listings-%s.csv", time.Now().UTC().Format("20060102-150405"))

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return key, nil
}
