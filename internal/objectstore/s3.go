// Package objectstore хранит файлы пользователей в S3-совместимом
// хранилище (MinIO) и выдаёт на них подписанные ссылки.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// DefaultLinkTTL задаёт время жизни подписанной ссылки.
const DefaultLinkTTL = time.Hour

// ErrFileNotFound возвращается, если объекта с таким ключом нет.
var ErrFileNotFound = apperrors.NotFound("File not found")

// Config содержит параметры подключения к хранилищу.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	LinkTTL   time.Duration
}

// api перечисляет методы клиента S3, которыми пользуется Store.
type api interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (string, error)
}

// presignAdapter отдаёт из подписанного запроса только URL.
type presignAdapter struct {
	client *s3.PresignClient
}

func (p presignAdapter) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (string, error) {
	req, err := p.client.PresignGetObject(ctx, in, optFns...)
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// Store представляет объектное хранилище поверх S3 API.
type Store struct {
	client  api
	presign presigner
	bucket  string
	ttl     time.Duration
	logger  *zap.Logger
}

// New создаёт клиент для хранилища cfg. Адресация бакета path-style,
// как того требует MinIO.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	logger.Info("Подключение к объектному хранилищу",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
	)
	return newStore(client, presignAdapter{client: s3.NewPresignClient(client)}, cfg, logger), nil
}

func newStore(client api, p presigner, cfg Config, logger *zap.Logger) *Store {
	ttl := cfg.LinkTTL
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	return &Store{client: client, presign: p, bucket: cfg.Bucket, ttl: ttl, logger: logger}
}

// EnsureBucket создаёт бакет, если HeadBucket завершился ошибкой.
func (s *Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	s.logger.Info("Бакет недоступен, создаём", zap.String("bucket", s.bucket), zap.Error(err))

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload кладёт объект под ключом key, заменяя прежний, и возвращает
// подписанную ссылку на него.
func (s *Store) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", apperrors.Store("failed to upload object", err)
	}
	s.logger.Debug("Объект загружен", zap.String("key", key), zap.Int64("size", size))
	return s.link(ctx, key)
}

// Exists проверяет наличие объекта.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, apperrors.Store("failed to stat object", err)
}

// GetLink возвращает подписанную ссылку на существующий объект.
func (s *Store) GetLink(ctx context.Context, key string) (string, error) {
	ok, err := s.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrFileNotFound
	}
	return s.link(ctx, key)
}

func (s *Store) link(ctx context.Context, key string) (string, error) {
	url, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", apperrors.Store("failed to presign object link", err)
	}
	return url, nil
}

// isNotFound распознаёт отсутствие объекта. HeadObject не возвращает тело
// ответа, поэтому кроме types.NotFound проверяется код ошибки API.
func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
