/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/suparena/tablestore"
)

// API is the subset of the DynamoDB client used by Store. Narrowing the
// dependency to an interface lets tests substitute an in-memory backend.
type API interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Config carries the connection settings for one backend session. It is
// consumed once by NewClient; the resulting client is read-only state.
type Config struct {
	// Region is the AWS region identifier.
	Region string

	// Endpoint optionally overrides the service endpoint, for example
	// "http://localhost:8000" for DynamoDB Local.
	Endpoint string

	// AccessKey and SecretKey select static credentials. Leave both empty
	// to use the default AWS credential chain.
	AccessKey string
	SecretKey string
}

// NewClient builds a DynamoDB client from the connection config.
func NewClient(ctx context.Context, cfg Config) (*dynamodb.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Store is the DynamoDB storage client. It owns the backend session
// exclusively and translates abstract read/write/query requests into
// DynamoDB calls. Schema descriptors are resolved through the registry,
// which is read-only after startup, so a Store is safe for concurrent use.
type Store struct {
	api           API
	registry      *tablestore.Registry
	logger        *zap.Logger
	retry         RetryConfig
	provisionWait time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithRetryConfig overrides the retry policy for transient backend failures.
func WithRetryConfig(rc RetryConfig) Option {
	return func(s *Store) { s.retry = rc }
}

// WithProvisionWait sets the maximum time EnsureTable waits for a table to
// become ready. Default is 3 minutes.
func WithProvisionWait(d time.Duration) Option {
	return func(s *Store) { s.provisionWait = d }
}

// New constructs a Store over the given API and schema registry.
func New(api API, registry *tablestore.Registry, opts ...Option) *Store {
	s := &Store{
		api:           api,
		registry:      registry,
		logger:        zap.NewNop(),
		retry:         DefaultRetryConfig(),
		provisionWait: 3 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
