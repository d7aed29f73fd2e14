package database

import (
	"context"
	"fmt"

	"support-desk/internal/config"
	"support-desk/internal/env"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.mongodb.org/mongo-driver/mongo"
)

type DynamoDBClient struct {
	svc *dynamodb.Client
}

func NewDynamoDBClient(cfg config.DynamoConfig) (*DynamoDBClient, error) {
	credOne := env.Get(env.AWSID)
	credTwo := env.Get(env.AWSSecret)
	credThree := env.Get(env.AWSToken)

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if credOne != "" && credTwo != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(credOne, credTwo, credThree)),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clientOpts := []func(*dynamodb.Options){}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	db := dynamodb.NewFromConfig(awsCfg, clientOpts...)
	return &DynamoDBClient{
		svc: db,
	}, nil
}

// Database carries whichever store the configuration selected. Exactly one of
// Client and Mongo is set.
type Database struct {
	Client *DynamoDBClient
	Mongo  *mongo.Database

	mongoClient *mongo.Client
}

func NewDatabase(ctx context.Context, cfg config.StorageConfig) (*Database, error) {
	switch cfg.Driver {
	case config.DriverDynamo:
		dbClient, err := NewDynamoDBClient(cfg.Dynamo)
		if err != nil {
			return nil, fmt.Errorf("init dynamodb client: %w", err)
		}
		return &Database{Client: dbClient}, nil

	case config.DriverMongo, "":
		client, err := NewMongoConnection(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("init mongodb client: %w", err)
		}
		db := client.Database(cfg.Mongo.Database)
		if err := EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongodb indexes: %w", err)
		}
		return &Database{Mongo: db, mongoClient: client}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func (d *Database) UsesMongo() bool {
	return d != nil && d.Mongo != nil
}

func (d *Database) Close(ctx context.Context) error {
	if d == nil || d.mongoClient == nil {
		return nil
	}
	return d.mongoClient.Disconnect(ctx)
}
