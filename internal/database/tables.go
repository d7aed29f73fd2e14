package database

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ListTables returns all table names in the account/endpoint.
func (c *DynamoDBClient) ListTables(ctx context.Context) ([]string, error) {
	var last *string
	var names []string

	for {
		out, err := c.svc.ListTables(ctx, &dynamodb.ListTablesInput{
			ExclusiveStartTableName: last,
			Limit:                   aws.Int32(100),
		})
		if err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}

		names = append(names, out.TableNames...)
		if out.LastEvaluatedTableName == nil {
			break
		}
		last = out.LastEvaluatedTableName
	}

	return names, nil
}

func (c *DynamoDBClient) DescribeTable(ctx context.Context, table string) (*types.TableDescription, error) {
	out, err := c.svc.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err != nil {
		return nil, fmt.Errorf("describe table %s: %w", table, err)
	}
	return out.Table, nil
}

// EnsureTables creates every missing table from tables (name to partition key)
// with on-demand billing. It returns the names it created.
func (c *DynamoDBClient) EnsureTables(ctx context.Context, tables map[string]string) ([]string, error) {
	existing, err := c.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var created []string
	for _, name := range names {
		if have[name] {
			continue
		}
		pk := tables[name]
		_, err := c.svc.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(name),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(pk), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(pk), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		})
		if err != nil {
			var inUse *types.ResourceInUseException
			if errors.As(err, &inUse) {
				continue
			}
			return created, fmt.Errorf("create table %s: %w", name, err)
		}
		created = append(created, name)
	}
	return created, nil
}

// ScanResult contains a page of decoded items plus pagination metadata.
type ScanResult struct {
	Items            []map[string]interface{} `json:"items"`
	LastEvaluatedKey map[string]interface{}   `json:"lastEvaluatedKey,omitempty"`
	Count            int32                    `json:"count"`
	ScannedCount     int32                    `json:"scannedCount"`
}

// ScanTable reads one page of a table. startKey comes from a previous
// ScanResult.LastEvaluatedKey.
func (c *DynamoDBClient) ScanTable(ctx context.Context, table string, limit int32, startKey map[string]interface{}) (*ScanResult, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	input := &dynamodb.ScanInput{
		TableName: aws.String(table),
		Limit:     aws.Int32(limit),
	}

	if len(startKey) > 0 {
		key, err := attributevalue.MarshalMap(startKey)
		if err != nil {
			return nil, fmt.Errorf("encode start key: %w", err)
		}
		input.ExclusiveStartKey = key
	}

	out, err := c.svc.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("scan table %s: %w", table, err)
	}

	items := make([]map[string]interface{}, 0, len(out.Items))
	for _, item := range out.Items {
		var decoded map[string]interface{}
		if err := attributevalue.UnmarshalMap(item, &decoded); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		items = append(items, decoded)
	}

	var lastKey map[string]interface{}
	if len(out.LastEvaluatedKey) > 0 {
		if err := attributevalue.UnmarshalMap(out.LastEvaluatedKey, &lastKey); err != nil {
			return nil, fmt.Errorf("decode last key: %w", err)
		}
	}

	return &ScanResult{
		Items:            items,
		LastEvaluatedKey: lastKey,
		Count:            out.Count,
		ScannedCount:     out.ScannedCount,
	}, nil
}
