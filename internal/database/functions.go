package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrConditionFailed = errors.New("condition check failed")
)

func AttrString(value string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: value}
}

// Key builds a single-attribute primary key.
func Key(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: AttrString(value)}
}

func (c *DynamoDBClient) PutItem(
	ctx context.Context,
	tableName string,
	item interface{},
) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      av,
	}

	_, err = c.svc.PutItem(ctx, input)
	if err != nil {
		return fmt.Errorf("put item %s: %w", tableName, err)
	}
	return nil
}

// PutItemIfNotExists writes item only when no item with the same keyAttr exists.
// A clash is reported as ErrConditionFailed.
func (c *DynamoDBClient) PutItemIfNotExists(
	ctx context.Context,
	tableName string,
	keyAttr string,
	item interface{},
) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:                aws.String(tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": keyAttr},
	}

	_, err = c.svc.PutItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("put item %s: %w", tableName, ErrConditionFailed)
		}
		return fmt.Errorf("put item %s: %w", tableName, err)
	}
	return nil
}

func (c *DynamoDBClient) GetItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	out interface{},
) error {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key:       key,
	}

	res, err := c.svc.GetItem(ctx, input)
	if err != nil {
		return fmt.Errorf("get item %s: %w", tableName, err)
	}
	if res.Item == nil {
		return fmt.Errorf("%w in %s", ErrItemNotFound, tableName)
	}

	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

// UpdateItem applies updateExpr to an existing item. Updating a missing item
// returns ErrItemNotFound instead of creating it.
func (c *DynamoDBClient) UpdateItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	updateExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	out interface{},
) error {
	err := c.UpdateItemIf(ctx, tableName, key, updateExpr, "", exprAttrValues, exprAttrNames, out)
	if errors.Is(err, ErrConditionFailed) {
		return fmt.Errorf("%w in %s", ErrItemNotFound, tableName)
	}
	return err
}

// UpdateItemIf is UpdateItem guarded by an extra condition. A missing item or
// a false condition is reported as ErrConditionFailed.
func (c *DynamoDBClient) UpdateItemIf(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	updateExpr string,
	conditionExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	out interface{},
) error {
	names := map[string]string{}
	for k, v := range exprAttrNames {
		names[k] = v
	}
	for attr := range key {
		names["#pk"] = attr
	}

	condition := "attribute_exists(#pk)"
	if conditionExpr != "" {
		condition += " AND (" + conditionExpr + ")"
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(tableName),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpr),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: exprAttrValues,
		ExpressionAttributeNames:  names,
		ReturnValues:              types.ReturnValueAllNew,
	}

	res, err := c.svc.UpdateItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("update item %s: %w", tableName, ErrConditionFailed)
		}
		return fmt.Errorf("update item %s: %w", tableName, err)
	}

	if out != nil {
		if err := attributevalue.UnmarshalMap(res.Attributes, out); err != nil {
			return fmt.Errorf("unmarshal updated item: %w", err)
		}
	}
	return nil
}

func (c *DynamoDBClient) DeleteItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(tableName),
		Key:       key,
	}

	_, err := c.svc.DeleteItem(ctx, input)
	if err != nil {
		return fmt.Errorf("delete item %s: %w", tableName, err)
	}
	return nil
}

// DeleteItemIfExists deletes the item and reports ErrItemNotFound when nothing matched.
func (c *DynamoDBClient) DeleteItemIfExists(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
) error {
	names := map[string]string{}
	for attr := range key {
		names["#pk"] = attr
	}

	input := &dynamodb.DeleteItemInput{
		TableName:                aws.String(tableName),
		Key:                      key,
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: names,
	}

	_, err := c.svc.DeleteItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w in %s", ErrItemNotFound, tableName)
		}
		return fmt.Errorf("delete item %s: %w", tableName, err)
	}
	return nil
}

// scanPages walks every page of a scan. An empty filterExpr scans the whole table.
func (c *DynamoDBClient) scanPages(
	ctx context.Context,
	tableName string,
	filterExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(tableName)}
	if filterExpr != "" {
		input.FilterExpression = aws.String(filterExpr)
		input.ExpressionAttributeValues = exprAttrValues
		if len(exprAttrNames) > 0 {
			input.ExpressionAttributeNames = exprAttrNames
		}
	}

	var items []map[string]types.AttributeValue
	pages := dynamodb.NewScanPaginator(c.svc, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", tableName, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// ScanInto scans the whole table, optionally filtered, and unmarshals every item into out.
func (c *DynamoDBClient) ScanInto(
	ctx context.Context,
	tableName string,
	filterExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	out interface{},
) error {
	items, err := c.scanPages(ctx, tableName, filterExpr, exprAttrValues, exprAttrNames)
	if err != nil {
		return err
	}
	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("unmarshal %s items: %w", tableName, err)
	}
	return nil
}
