package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rkdoors/storefront-backend/pkg/config"
	"github.com/rkdoors/storefront-backend/pkg/logger"
)

type tableDescriber interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Client wraps the DynamoDB API client and the orders table name.
type Client struct {
	api         *dynamodb.Client
	describer   tableDescriber
	ordersTable string
}

// New builds a DynamoDB client. Static credentials and a custom endpoint are
// optional and mostly used against DynamoDB Local.
func New(ctx context.Context, cfg config.DynamoDBConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.OrdersTable) == "" {
		return nil, errors.New("dynamodb orders table is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	c := &Client{api: api, describer: api, ordersTable: cfg.OrdersTable}
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"table": cfg.OrdersTable, "region": cfg.Region}), "dynamodb client initialized")
	}
	return c, nil
}

func loadOptions(cfg config.DynamoDBConfig) []func(*awsconfig.LoadOptions) error {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	return opts
}

// API returns the underlying DynamoDB client.
func (c *Client) API() *dynamodb.Client {
	return c.api
}

// OrdersTable returns the configured orders table name.
func (c *Client) OrdersTable() string {
	return c.ordersTable
}

// Ping describes the orders table to confirm connectivity and permissions.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.describer == nil {
		return errors.New("dynamodb client not initialized")
	}
	if _, err := c.describer.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(c.ordersTable)}); err != nil {
		return fmt.Errorf("describe table %s: %w", c.ordersTable, err)
	}
	return nil
}
