package filesave

import (
	"bibgraph-backend/utils"
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"io"
)

/*
S3Store 把产物保存到 S3 兼容的对象存储。URL 为空时使用 AWS 默认的 endpoint。
*/
type S3Store struct {
	client *s3.Client
	config S3Config
}

func NewS3Store(config *S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.Key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.Key, config.Secret, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, utils.WrapError(err, "load aws config fail")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.URL != "" {
			o.BaseEndpoint = aws.String(config.URL)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, config: *config}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", utils.WrapErrorf(err, "put object to bucket [%s] fail", s.config.Bucket)
	}

	if s.config.URL != "" {
		return fmt.Sprintf("%s/%s/%s", s.config.URL, s.config.Bucket, key), nil
	}
	return fmt.Sprintf("s3://%s/%s", s.config.Bucket, key), nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, utils.WrapError(ErrFileNotFound, key)
		}
		return nil, utils.WrapErrorf(err, "get object from bucket [%s] fail", s.config.Bucket)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, utils.WrapError(err, "read object body fail")
	}
	return data, nil
}
