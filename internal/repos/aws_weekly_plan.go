package repos

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/types"
)

const planJobSortKey = "STATE"

func planJobPartitionKey(childID string) string {
	return "PLAN_JOB#" + childID
}

type planJobItem struct {
	PK              string `dynamodbav:"PK"`
	SK              string `dynamodbav:"SK"`
	Status          string `dynamodbav:"status"`
	StartedAt       string `dynamodbav:"startedAt"`
	CompletedAt     string `dynamodbav:"completedAt"`
	FailedAt        string `dynamodbav:"failedAt"`
	OutputObjectKey string `dynamodbav:"outputObjectKey"`
	ErrorMessage    string `dynamodbav:"errorMessage"`
	UpdatedAt       string `dynamodbav:"updatedAt"`
}

type AwsWeeklyPlanRepo struct {
	log    *logger.Logger
	dynamo *dynamodb.Client
	s3     *s3.Client
	table  string
	bucket string
	prefix string
	now    func() time.Time
}

func NewAwsWeeklyPlanRepo(baseLog *logger.Logger, dynamo *dynamodb.Client, s3Client *s3.Client, table, bucket, planPrefix string) *AwsWeeklyPlanRepo {
	return &AwsWeeklyPlanRepo{
		log:    baseLog.With("repo", "AwsWeeklyPlanRepo"),
		dynamo: dynamo,
		s3:     s3Client,
		table:  table,
		bucket: bucket,
		prefix: strings.Trim(planPrefix, "/"),
		now:    time.Now,
	}
}

func (r *AwsWeeklyPlanRepo) ListPlans(ctx context.Context, childID string) ([]types.WeeklyPlanListItem, error) {
	prefix := r.childPrefix(childID)
	out, err := r.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("list plan objects: %w", err)
	}

	items := make([]types.WeeklyPlanListItem, 0, len(out.Contents))
	modified := make(map[string]time.Time, len(out.Contents))
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if key == "" || !strings.HasSuffix(strings.ToLower(key), ".md") {
			continue
		}
		item := types.WeeklyPlanListItem{
			ObjectKey:   key,
			DisplayName: path.Base(key),
		}
		if obj.LastModified != nil {
			item.LastModified = obj.LastModified.UTC().Format(time.RFC3339)
			modified[key] = *obj.LastModified
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return modified[items[i].ObjectKey].After(modified[items[j].ObjectKey])
	})
	return items, nil
}

func (r *AwsWeeklyPlanRepo) ReadMarkdown(ctx context.Context, objectKey string) (string, error) {
	out, err := r.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return "", fmt.Errorf("get plan object %q: %w", objectKey, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read plan object %q: %w", objectKey, err)
	}
	return string(raw), nil
}

func (r *AwsWeeklyPlanRepo) DeletePlanObject(ctx context.Context, childID, objectKey string) error {
	if !strings.HasPrefix(objectKey, r.childPrefix(childID)) {
		return ErrPlanKeyMismatch
	}
	if _, err := r.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("delete plan object %q: %w", objectKey, err)
	}
	return nil
}

func (r *AwsWeeklyPlanRepo) GetPlanJob(ctx context.Context, childID string) (types.WeeklyPlanJob, error) {
	out, err := r.dynamo.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       planJobKey(childID),
	})
	if err != nil {
		return types.WeeklyPlanJob{}, fmt.Errorf("get plan job item: %w", err)
	}
	if out.Item == nil {
		return types.IdlePlanJob(childID), nil
	}

	var item planJobItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return types.WeeklyPlanJob{}, fmt.Errorf("unmarshal plan job item: %w", err)
	}
	return types.WeeklyPlanJob{
		ChildID:         childID,
		Status:          types.ParsePlanJobStatus(item.Status),
		StartedAt:       item.StartedAt,
		CompletedAt:     item.CompletedAt,
		FailedAt:        item.FailedAt,
		OutputObjectKey: item.OutputObjectKey,
		ErrorMessage:    item.ErrorMessage,
	}, nil
}

// PutPlanJobInProgress relies on a DynamoDB conditional put as the single
// compare-and-swap in the system: two concurrent generate calls race here and
// exactly one wins.
func (r *AwsWeeklyPlanRepo) PutPlanJobInProgress(ctx context.Context, childID, startedAt string) (types.WeeklyPlanJob, error) {
	item := planJobItem{
		PK:        planJobPartitionKey(childID),
		SK:        planJobSortKey,
		Status:    string(types.PlanJobInProgress),
		StartedAt: startedAt,
		UpdatedAt: r.now().UTC().Format(time.RFC3339),
	}
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return types.WeeklyPlanJob{}, fmt.Errorf("marshal plan job item: %w", err)
	}

	_, err = r.dynamo.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     marshaled,
		ConditionExpression:      aws.String("attribute_not_exists(PK) OR #status <> :inProgress"),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":inProgress": &ddbtypes.AttributeValueMemberS{Value: string(types.PlanJobInProgress)},
		},
	})
	if isConditionalCheckFailure(err) {
		return types.WeeklyPlanJob{}, ErrPlanJobInProgress
	}
	if err != nil {
		return types.WeeklyPlanJob{}, fmt.Errorf("put plan job in_progress: %w", err)
	}

	return types.WeeklyPlanJob{
		ChildID:   childID,
		Status:    types.PlanJobInProgress,
		StartedAt: startedAt,
	}, nil
}

func (r *AwsWeeklyPlanRepo) PutPlanJobCompleted(ctx context.Context, childID, completedAt, outputObjectKey string) (types.WeeklyPlanJob, error) {
	_, err := r.dynamo.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key:       planJobKey(childID),
		UpdateExpression: aws.String(
			"SET #status = :status, completedAt = :completedAt, failedAt = :failedAt, " +
				"outputObjectKey = :outputObjectKey, errorMessage = :errorMessage, updatedAt = :updatedAt",
		),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":status":          &ddbtypes.AttributeValueMemberS{Value: string(types.PlanJobCompleted)},
			":completedAt":     &ddbtypes.AttributeValueMemberS{Value: completedAt},
			":failedAt":        &ddbtypes.AttributeValueMemberNULL{Value: true},
			":outputObjectKey": &ddbtypes.AttributeValueMemberS{Value: outputObjectKey},
			":errorMessage":    &ddbtypes.AttributeValueMemberNULL{Value: true},
			":updatedAt":       &ddbtypes.AttributeValueMemberS{Value: r.now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return types.WeeklyPlanJob{}, fmt.Errorf("put plan job completed: %w", err)
	}
	return r.GetPlanJob(ctx, childID)
}

func (r *AwsWeeklyPlanRepo) PutPlanJobFailed(ctx context.Context, childID, failedAt, errorMessage string) (types.WeeklyPlanJob, error) {
	_, err := r.dynamo.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key:       planJobKey(childID),
		UpdateExpression: aws.String(
			"SET #status = :status, failedAt = :failedAt, errorMessage = :errorMessage, " +
				"completedAt = :completedAt, outputObjectKey = :outputObjectKey, updatedAt = :updatedAt",
		),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":status":          &ddbtypes.AttributeValueMemberS{Value: string(types.PlanJobFailed)},
			":failedAt":        &ddbtypes.AttributeValueMemberS{Value: failedAt},
			":errorMessage":    &ddbtypes.AttributeValueMemberS{Value: errorMessage},
			":completedAt":     &ddbtypes.AttributeValueMemberNULL{Value: true},
			":outputObjectKey": &ddbtypes.AttributeValueMemberNULL{Value: true},
			":updatedAt":       &ddbtypes.AttributeValueMemberS{Value: r.now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return types.WeeklyPlanJob{}, fmt.Errorf("put plan job failed: %w", err)
	}
	return r.GetPlanJob(ctx, childID)
}

func (r *AwsWeeklyPlanRepo) childPrefix(childID string) string {
	if r.prefix == "" {
		return childID + "/"
	}
	return r.prefix + "/" + childID + "/"
}

func planJobKey(childID string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"PK": &ddbtypes.AttributeValueMemberS{Value: planJobPartitionKey(childID)},
		"SK": &ddbtypes.AttributeValueMemberS{Value: planJobSortKey},
	}
}
