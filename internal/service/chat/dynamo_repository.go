package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"support-desk/internal/database"
	"support-desk/internal/model"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

// setBuilder collects SET clauses for an UpdateItem call.
type setBuilder struct {
	clauses []string
	values  map[string]types.AttributeValue
	names   map[string]string
	err     error
}

func newSetBuilder() *setBuilder {
	return &setBuilder{
		values: map[string]types.AttributeValue{},
		names:  map[string]string{},
	}
}

func (b *setBuilder) set(attr string, value interface{}) {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		b.err = err
		return
	}
	b.names["#"+attr] = attr
	b.values[":"+attr] = av
	b.clauses = append(b.clauses, fmt.Sprintf("#%s = :%s", attr, attr))
}

func (b *setBuilder) expression() string {
	return "SET " + strings.Join(b.clauses, ", ")
}

func (r *DynamoRepository) CreateRequest(ctx context.Context, request model.RequestItem) error {
	return r.db.Client.PutItem(ctx, model.RequestsTable, request)
}

func (r *DynamoRepository) GetRequest(ctx context.Context, id string) (model.RequestItem, error) {
	var request model.RequestItem
	err := r.db.Client.GetItem(ctx, model.RequestsTable, database.Key("id", id), &request)
	if err != nil {
		if isNotFound(err) {
			return model.RequestItem{}, ErrNotFound
		}
		return model.RequestItem{}, err
	}
	return request, nil
}

func (r *DynamoRepository) UpdateRequest(ctx context.Context, id string, update RequestUpdate, updatedAt time.Time) (model.RequestItem, error) {
	b := newSetBuilder()
	b.set("updatedAt", updatedAt)
	if update.Status != nil {
		b.set("status", *update.Status)
	}
	if update.AgentID != nil {
		b.set("agentId", *update.AgentID)
	}
	if update.SocketID != nil {
		b.set("socketId", *update.SocketID)
	}
	if b.err != nil {
		return model.RequestItem{}, fmt.Errorf("marshal request update: %w", b.err)
	}

	var request model.RequestItem
	err := r.db.Client.UpdateItem(ctx, model.RequestsTable, database.Key("id", id), b.expression(), b.values, b.names, &request)
	if err != nil {
		if isNotFound(err) {
			return model.RequestItem{}, ErrNotFound
		}
		return model.RequestItem{}, err
	}
	return request, nil
}

func (r *DynamoRepository) DeleteRequest(ctx context.Context, id string) error {
	err := r.db.Client.DeleteItemIfExists(ctx, model.RequestsTable, database.Key("id", id))
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *DynamoRepository) ListRequests(ctx context.Context, statuses []model.RequestStatus) ([]model.RequestItem, error) {
	requests := make([]model.RequestItem, 0)

	if len(statuses) == 0 {
		err := r.db.Client.ScanInto(ctx, model.RequestsTable, "", nil, nil, &requests)
		return requests, err
	}

	placeholders := make([]string, len(statuses))
	values := make(map[string]types.AttributeValue, len(statuses))
	for i, status := range statuses {
		key := fmt.Sprintf(":s%d", i)
		placeholders[i] = key
		values[key] = database.AttrString(string(status))
	}

	err := r.db.Client.ScanInto(
		ctx,
		model.RequestsTable,
		fmt.Sprintf("#status IN (%s)", strings.Join(placeholders, ", ")),
		values,
		map[string]string{"#status": "status"},
		&requests,
	)
	return requests, err
}

func (r *DynamoRepository) CreateChat(ctx context.Context, chat model.ChatItem) error {
	return r.db.Client.PutItem(ctx, model.ChatsTable, chat)
}

func (r *DynamoRepository) GetChat(ctx context.Context, chatID string) (model.ChatItem, error) {
	var chat model.ChatItem
	err := r.db.Client.GetItem(ctx, model.ChatsTable, database.Key("chatId", chatID), &chat)
	if err != nil {
		if isNotFound(err) {
			return model.ChatItem{}, ErrNotFound
		}
		return model.ChatItem{}, err
	}
	return chat, nil
}

func (r *DynamoRepository) UpdateChat(ctx context.Context, chatID string, update ChatUpdate, updatedAt time.Time) (model.ChatItem, error) {
	b := newSetBuilder()
	b.set("updatedAt", updatedAt)
	if update.Status != nil {
		b.set("status", *update.Status)
	}
	if update.AgentID != nil {
		b.set("agentId", *update.AgentID)
	}
	if update.SocketID != nil {
		b.set("socketId", *update.SocketID)
	}
	if update.ResolutionNote != nil {
		b.set("resolutionNote", *update.ResolutionNote)
	}
	if b.err != nil {
		return model.ChatItem{}, fmt.Errorf("marshal chat update: %w", b.err)
	}

	return r.updateChat(ctx, chatID, b.expression(), b.values, b.names)
}

func (r *DynamoRepository) AppendMessage(ctx context.Context, chatID string, message model.ChatMessage, updatedAt time.Time) (model.ChatItem, error) {
	msgs, err := attributevalue.Marshal([]model.ChatMessage{message})
	if err != nil {
		return model.ChatItem{}, fmt.Errorf("marshal message: %w", err)
	}
	ts, err := attributevalue.Marshal(updatedAt)
	if err != nil {
		return model.ChatItem{}, fmt.Errorf("marshal timestamp: %w", err)
	}

	return r.updateChat(ctx, chatID,
		"SET #messages = list_append(if_not_exists(#messages, :empty), :msg), #updatedAt = :updatedAt",
		map[string]types.AttributeValue{
			":msg":       msgs,
			":empty":     &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":updatedAt": ts,
		},
		map[string]string{
			"#messages":  "messages",
			"#updatedAt": "updatedAt",
		},
	)
}

// SetMessageStatus locates the message index first because DynamoDB cannot
// address list elements by attribute.
func (r *DynamoRepository) SetMessageStatus(ctx context.Context, chatID, messageID string, status model.MessageStatus) (model.ChatMessage, error) {
	chat, err := r.GetChat(ctx, chatID)
	if err != nil {
		return model.ChatMessage{}, err
	}
	idx := chat.FindMessage(messageID)
	if idx < 0 {
		return model.ChatMessage{}, ErrNotFound
	}

	updated, err := r.updateChat(ctx, chatID,
		fmt.Sprintf("SET #messages[%d].#status = :status", idx),
		map[string]types.AttributeValue{":status": database.AttrString(string(status))},
		map[string]string{"#messages": "messages", "#status": "status"},
	)
	if err != nil {
		return model.ChatMessage{}, err
	}
	return updated.Messages[idx], nil
}

// SetMessageStatusIf guards the indexed update with the message id and the
// expected status, so a concurrent change makes the write fail instead of
// overwriting it.
func (r *DynamoRepository) SetMessageStatusIf(ctx context.Context, chatID, messageID string, from, to model.MessageStatus) (model.ChatMessage, bool, error) {
	chat, err := r.GetChat(ctx, chatID)
	if err != nil {
		return model.ChatMessage{}, false, err
	}
	idx := chat.FindMessage(messageID)
	if idx < 0 {
		return model.ChatMessage{}, false, ErrNotFound
	}
	if chat.Messages[idx].Status != from {
		return chat.Messages[idx], false, nil
	}

	var updated model.ChatItem
	err = r.db.Client.UpdateItemIf(ctx, model.ChatsTable, database.Key("chatId", chatID),
		fmt.Sprintf("SET #messages[%d].#status = :to", idx),
		fmt.Sprintf("#messages[%d].#id = :id AND #messages[%d].#status = :from", idx, idx),
		map[string]types.AttributeValue{
			":to":   database.AttrString(string(to)),
			":from": database.AttrString(string(from)),
			":id":   database.AttrString(messageID),
		},
		map[string]string{"#messages": "messages", "#status": "status", "#id": "id"},
		&updated,
	)
	if errors.Is(err, database.ErrConditionFailed) {
		current, getErr := r.GetChat(ctx, chatID)
		if getErr != nil {
			return model.ChatMessage{}, false, getErr
		}
		if i := current.FindMessage(messageID); i >= 0 {
			return current.Messages[i], false, nil
		}
		return model.ChatMessage{}, false, ErrNotFound
	}
	if err != nil {
		return model.ChatMessage{}, false, err
	}
	return updated.Messages[idx], true, nil
}

func (r *DynamoRepository) updateChat(ctx context.Context, chatID, expr string, values map[string]types.AttributeValue, names map[string]string) (model.ChatItem, error) {
	var chat model.ChatItem
	err := r.db.Client.UpdateItem(ctx, model.ChatsTable, database.Key("chatId", chatID), expr, values, names, &chat)
	if err != nil {
		if isNotFound(err) {
			return model.ChatItem{}, ErrNotFound
		}
		return model.ChatItem{}, err
	}
	return chat, nil
}

func (r *DynamoRepository) ListChats(ctx context.Context, filter ChatFilter) ([]model.ChatItem, error) {
	var clauses []string
	values := map[string]types.AttributeValue{}
	names := map[string]string{}

	if filter.Status != "" {
		clauses = append(clauses, "#status = :status")
		values[":status"] = database.AttrString(string(filter.Status))
		names["#status"] = "status"
	}
	if filter.AgentID != "" {
		clauses = append(clauses, "#agentId = :agentId")
		values[":agentId"] = database.AttrString(filter.AgentID)
		names["#agentId"] = "agentId"
	}

	chats := make([]model.ChatItem, 0)
	if len(clauses) == 0 {
		err := r.db.Client.ScanInto(ctx, model.ChatsTable, "", nil, nil, &chats)
		return chats, err
	}
	err := r.db.Client.ScanInto(ctx, model.ChatsTable, strings.Join(clauses, " AND "), values, names, &chats)
	return chats, err
}

func (r *DynamoRepository) CreateResolved(ctx context.Context, item model.ResolvedRequestItem) error {
	return r.db.Client.PutItem(ctx, model.ResolvedRequestsTable, item)
}

func (r *DynamoRepository) ListResolved(ctx context.Context) ([]model.ResolvedRequestItem, error) {
	items := make([]model.ResolvedRequestItem, 0)
	err := r.db.Client.ScanInto(ctx, model.ResolvedRequestsTable, "", nil, nil, &items)
	return items, err
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, database.ErrItemNotFound)
}
