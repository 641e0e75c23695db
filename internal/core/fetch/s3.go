package fetch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	cfg "github.com/edusupport/datafeeder/internal/config"
	"github.com/edusupport/datafeeder/internal/core"
)

// S3Fetcher downloads source PDFs from S3. It implements core.Fetcher.
type S3Fetcher struct {
	client     *s3.Client
	downloader *manager.Downloader
}

func NewS3Fetcher(ctx context.Context, cfg *cfg.Config) (core.Fetcher, error) {
	if cfg.AwsAccessKey == "" || cfg.AwsSecretKey == "" {
		return nil, fmt.Errorf("AWS credentials not set")
	}
	if cfg.AwsRegion == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.AwsRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AwsAccessKey, cfg.AwsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	log.Println("Connected to AWS S3 successfully")

	return &S3Fetcher{
		client:     client,
		downloader: manager.NewDownloader(client),
	}, nil
}

func (f *S3Fetcher) ValidateLocator(raw string) (string, error) {
	loc, err := ParseLocator(raw)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

func (f *S3Fetcher) IsFolderLocator(locator string) bool {
	loc, err := ParseLocator(locator)
	return err == nil && loc.IsFolder()
}

// Fetch downloads the locator into destDir: one object for a file locator,
// every PDF under the prefix for a folder locator.
func (f *S3Fetcher) Fetch(ctx context.Context, locator, destDir string) error {
	loc, err := ParseLocator(locator)
	if err != nil {
		return err
	}

	if !loc.IsFolder() {
		return f.fetchObject(ctx, loc.Bucket, loc.Key, destDir)
	}

	keys, err := f.listPDFKeys(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("no PDF objects under %s", loc)
	}
	for _, key := range keys {
		if err := f.fetchObject(ctx, loc.Bucket, key, destDir); err != nil {
			return err
		}
	}
	return nil
}

func (f *S3Fetcher) fetchObject(ctx context.Context, bucket, key, destDir string) error {
	name := path.Base(key)
	if name == "." || name == "/" || name == "" {
		return fmt.Errorf("object key %q has no file name", key)
	}

	out, err := os.Create(filepath.Join(destDir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer out.Close()

	dlCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err = f.downloader.Download(dlCtx, out, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 download %s: %w", key, err)
	}
	return nil
}

func (f *S3Fetcher) listPDFKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	listCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(f.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(listCtx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil && strings.EqualFold(path.Ext(*obj.Key), ".pdf") {
				keys = append(keys, *obj.Key)
			}
		}
	}
	return keys, nil
}
