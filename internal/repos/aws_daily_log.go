package repos

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/types"
)

func logPartitionKey(childID string) string {
	return "LOG#" + childID
}

type dailyLogItem struct {
	PK                    string                         `dynamodbav:"PK"`
	SK                    string                         `dynamodbav:"SK"`
	ID                    string                         `dynamodbav:"id"`
	RawText               string                         `dynamodbav:"raw_text"`
	KeyTakeaways          []string                       `dynamodbav:"key_takeaways"`
	Sentiment             string                         `dynamodbav:"sentiment"`
	ProfileCandidates     *types.ProfileUpdateCandidates `dynamodbav:"profile_candidates"`
	ExtractionSource      string                         `dynamodbav:"extraction_source"`
	ExtractionModel       string                         `dynamodbav:"extraction_model"`
	PlanReference         *types.PlanReference           `dynamodbav:"plan_reference"`
	AppliedProfileUpdates *types.AppliedProfileUpdates   `dynamodbav:"applied_profile_updates"`
	CreatedAt             string                         `dynamodbav:"createdAt"`
}

// logCursor is the opaque pagination token: the base64 of the Dynamo
// LastEvaluatedKey for this table's simple PK/SK schema.
type logCursor struct {
	PK string `json:"pk"`
	SK string `json:"sk"`
}

type AwsDailyLogRepo struct {
	log    *logger.Logger
	dynamo *dynamodb.Client
	table  string
	now    func() time.Time
}

func NewAwsDailyLogRepo(baseLog *logger.Logger, dynamo *dynamodb.Client, table string) *AwsDailyLogRepo {
	return &AwsDailyLogRepo{
		log:    baseLog.With("repo", "AwsDailyLogRepo"),
		dynamo: dynamo,
		table:  table,
		now:    time.Now,
	}
}

func (r *AwsDailyLogRepo) List(ctx context.Context, input ListDailyLogsInput) (*ListDailyLogsOutput, error) {
	query := &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk": &ddbtypes.AttributeValueMemberS{Value: logPartitionKey(input.ChildID)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(input.Limit)),
	}
	if input.Cursor != "" {
		startKey, err := decodeLogCursor(input.Cursor)
		if err != nil {
			return nil, err
		}
		query.ExclusiveStartKey = startKey
	}

	out, err := r.dynamo.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query daily logs: %w", err)
	}

	items := make([]types.DailyLogEntry, 0, len(out.Items))
	for _, raw := range out.Items {
		var item dailyLogItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("unmarshal daily log item: %w", err)
		}
		items = append(items, item.toEntry())
	}

	result := &ListDailyLogsOutput{Items: items}
	if out.LastEvaluatedKey != nil {
		cursor, err := encodeLogCursor(out.LastEvaluatedKey)
		if err != nil {
			return nil, err
		}
		result.NextCursor = cursor
	}
	return result, nil
}

func (r *AwsDailyLogRepo) Create(ctx context.Context, input CreateDailyLogInput) (*types.DailyLogEntry, error) {
	now := r.now().UTC()
	iso := now.Format(time.RFC3339)
	item := dailyLogItem{
		PK:            logPartitionKey(input.ChildID),
		SK:            "DATE#" + iso,
		ID:            strconv.FormatInt(now.UnixMilli(), 10),
		RawText:       input.RawText,
		Sentiment:     "neutral",
		PlanReference: input.PlanReference,
		CreatedAt:     iso,
	}
	if input.Extraction != nil {
		item.KeyTakeaways = input.Extraction.StructuredLog.KeyTakeaways
		item.Sentiment = input.Extraction.StructuredLog.Sentiment
		candidates := input.Extraction.ProfileCandidates
		item.ProfileCandidates = &candidates
		item.ExtractionSource = string(input.Extraction.Source)
		item.ExtractionModel = input.Extraction.Model
	}

	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("marshal daily log item: %w", err)
	}
	if _, err := r.dynamo.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      marshaled,
	}); err != nil {
		return nil, fmt.Errorf("put daily log item: %w", err)
	}

	return &types.DailyLogEntry{
		ID:            item.ID,
		TimeLabel:     "Just now",
		Entry:         input.RawText,
		CreatedAt:     iso,
		StorageKey:    item.SK,
		PlanReference: input.PlanReference,
	}, nil
}

func (r *AwsDailyLogRepo) UpdateNote(ctx context.Context, childID, storageKey, rawText string) error {
	_, err := r.dynamo.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: logPartitionKey(childID)},
			"SK": &ddbtypes.AttributeValueMemberS{Value: storageKey},
		},
		UpdateExpression:    aws.String("SET raw_text = :rawText"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":rawText": &ddbtypes.AttributeValueMemberS{Value: rawText},
		},
	})
	if isConditionalCheckFailure(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("update daily log note: %w", err)
	}
	return nil
}

func (r *AwsDailyLogRepo) SaveAppliedUpdates(ctx context.Context, childID, storageKey string, updates types.AppliedProfileUpdates) error {
	marshaled, err := attributevalue.Marshal(updates)
	if err != nil {
		return fmt.Errorf("marshal applied updates: %w", err)
	}
	_, err = r.dynamo.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: logPartitionKey(childID)},
			"SK": &ddbtypes.AttributeValueMemberS{Value: storageKey},
		},
		UpdateExpression: aws.String("SET applied_profile_updates = :updates"),
		// Never create a stub row for a deleted log; annotation on a
		// missing entry is a no-op.
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":updates": marshaled,
		},
	})
	if isConditionalCheckFailure(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("save applied profile updates: %w", err)
	}
	return nil
}

func (r *AwsDailyLogRepo) Delete(ctx context.Context, childID, storageKey string) error {
	_, err := r.dynamo.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: logPartitionKey(childID)},
			"SK": &ddbtypes.AttributeValueMemberS{Value: storageKey},
		},
	})
	if err != nil {
		return fmt.Errorf("delete daily log: %w", err)
	}
	return nil
}

func (item dailyLogItem) toEntry() types.DailyLogEntry {
	id := item.ID
	if id == "" {
		id = item.SK
	}
	return types.DailyLogEntry{
		ID:                    id,
		TimeLabel:             "",
		Entry:                 item.RawText,
		CreatedAt:             item.CreatedAt,
		StorageKey:            item.SK,
		PlanReference:         item.PlanReference,
		AppliedProfileUpdates: item.AppliedProfileUpdates,
	}
}

func encodeLogCursor(lastKey map[string]ddbtypes.AttributeValue) (string, error) {
	var key struct {
		PK string `dynamodbav:"PK"`
		SK string `dynamodbav:"SK"`
	}
	if err := attributevalue.UnmarshalMap(lastKey, &key); err != nil {
		return "", fmt.Errorf("decode last evaluated key: %w", err)
	}
	raw, err := json.Marshal(logCursor{PK: key.PK, SK: key.SK})
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func decodeLogCursor(encoded string) (map[string]ddbtypes.AttributeValue, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	var cursor logCursor
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	return map[string]ddbtypes.AttributeValue{
		"PK": &ddbtypes.AttributeValueMemberS{Value: cursor.PK},
		"SK": &ddbtypes.AttributeValueMemberS{Value: cursor.SK},
	}, nil
}

func isConditionalCheckFailure(err error) bool {
	if err == nil {
		return false
	}
	var conditionErr *ddbtypes.ConditionalCheckFailedException
	return errors.As(err, &conditionErr)
}
