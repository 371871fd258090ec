package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/yungbote/sprout-backend/internal/normalize"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/timeutil"
	"github.com/yungbote/sprout-backend/internal/types"
)

const profileSortKey = "PROFILE"

func profilePartitionKey(childID string) string {
	return "USER#" + childID
}

// profileItem is the single-table DynamoDB shape of a child profile. Older
// rows carry age_months instead of birth_date; birth_date wins when present.
type profileItem struct {
	PK         string   `dynamodbav:"PK"`
	SK         string   `dynamodbav:"SK"`
	Name       string   `dynamodbav:"name"`
	BirthDate  string   `dynamodbav:"birth_date"`
	AgeMonths  float64  `dynamodbav:"age_months"`
	Milestones []string `dynamodbav:"milestones"`
	Schemas    []string `dynamodbav:"schemas"`
	Interests  []string `dynamodbav:"interests"`
}

type AwsProfileRepo struct {
	log    *logger.Logger
	dynamo *dynamodb.Client
	table  string
	now    func() time.Time
}

func NewAwsProfileRepo(baseLog *logger.Logger, dynamo *dynamodb.Client, table string) *AwsProfileRepo {
	return &AwsProfileRepo{
		log:    baseLog.With("repo", "AwsProfileRepo"),
		dynamo: dynamo,
		table:  table,
		now:    time.Now,
	}
}

func (r *AwsProfileRepo) GetProfile(ctx context.Context, childID string) (*types.ChildProfile, error) {
	out, err := r.dynamo.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: profilePartitionKey(childID)},
			"SK": &ddbtypes.AttributeValueMemberS{Value: profileSortKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get profile item: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item profileItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal profile item: %w", err)
	}
	return r.toProfile(childID, item), nil
}

func (r *AwsProfileRepo) MergeCandidates(ctx context.Context, input MergeCandidatesInput) (*types.ChildProfile, error) {
	current, err := r.GetProfile(ctx, input.ChildID)
	if err != nil {
		return nil, err
	}

	var existingMilestones, existingSchemas, existingInterests []string
	birthDate := timeutil.ApproxBirthDate(0, r.now())
	if current != nil {
		existingMilestones = current.Milestones
		existingSchemas = current.ActiveSchemas
		existingInterests = current.Interests
		if current.BirthDate != "" {
			birthDate = current.BirthDate
		}
	}

	merged := types.ChildProfile{
		Name:          input.ChildID,
		BirthDate:     birthDate,
		Milestones:    normalize.MergeUnique(existingMilestones, input.Milestones),
		ActiveSchemas: normalize.MergeUnique(existingSchemas, input.ActiveSchemas),
		Interests:     normalize.MergeUnique(existingInterests, input.Interests),
	}
	if current != nil && current.Name != "" {
		merged.Name = current.Name
	}
	merged.AgeMonths = timeutil.AgeMonths(merged.BirthDate, r.now())

	_, err = r.dynamo.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: profilePartitionKey(input.ChildID)},
			"SK": &ddbtypes.AttributeValueMemberS{Value: profileSortKey},
		},
		UpdateExpression: aws.String(
			"SET #name = if_not_exists(#name, :defaultName), " +
				"birth_date = if_not_exists(birth_date, :defaultBirthDate), " +
				"milestones = :milestones, schemas = :schemas, interests = :interests",
		),
		ExpressionAttributeNames: map[string]string{"#name": "name"},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":defaultName":      &ddbtypes.AttributeValueMemberS{Value: input.ChildID},
			":defaultBirthDate": &ddbtypes.AttributeValueMemberS{Value: birthDate},
			":milestones":       stringListAttr(merged.Milestones),
			":schemas":          stringListAttr(merged.ActiveSchemas),
			":interests":        stringListAttr(merged.Interests),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("merge profile candidates: %w", err)
	}
	return &merged, nil
}

func (r *AwsProfileRepo) RemoveValue(ctx context.Context, childID string, field types.ProfileField, value string) (*types.ChildProfile, error) {
	current, err := r.GetProfile(ctx, childID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	var attr string
	switch field {
	case types.ProfileFieldMilestones:
		current.Milestones = normalize.RemoveValue(current.Milestones, value)
		attr = "milestones"
	case types.ProfileFieldActiveSchemas:
		current.ActiveSchemas = normalize.RemoveValue(current.ActiveSchemas, value)
		attr = "schemas"
	case types.ProfileFieldInterests:
		current.Interests = normalize.RemoveValue(current.Interests, value)
		attr = "interests"
	default:
		return nil, fmt.Errorf("unknown profile field %q", field)
	}

	var updated []string
	switch field {
	case types.ProfileFieldMilestones:
		updated = current.Milestones
	case types.ProfileFieldActiveSchemas:
		updated = current.ActiveSchemas
	case types.ProfileFieldInterests:
		updated = current.Interests
	}

	_, err = r.dynamo.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: profilePartitionKey(childID)},
			"SK": &ddbtypes.AttributeValueMemberS{Value: profileSortKey},
		},
		UpdateExpression:         aws.String("SET #field = :values"),
		ExpressionAttributeNames: map[string]string{"#field": attr},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":values": stringListAttr(updated),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("remove profile value: %w", err)
	}
	return current, nil
}

func (r *AwsProfileRepo) toProfile(childID string, item profileItem) *types.ChildProfile {
	now := r.now()
	birthDate := item.BirthDate
	if birthDate == "" {
		birthDate = timeutil.ApproxBirthDate(int(item.AgeMonths), now)
	}
	name := item.Name
	if name == "" {
		name = childID
	}
	return &types.ChildProfile{
		Name:          name,
		BirthDate:     birthDate,
		AgeMonths:     timeutil.AgeMonths(birthDate, now),
		Milestones:    emptyIfNil(item.Milestones),
		ActiveSchemas: emptyIfNil(item.Schemas),
		Interests:     emptyIfNil(item.Interests),
	}
}

func stringListAttr(values []string) ddbtypes.AttributeValue {
	members := make([]ddbtypes.AttributeValue, 0, len(values))
	for _, v := range values {
		members = append(members, &ddbtypes.AttributeValueMemberS{Value: v})
	}
	return &ddbtypes.AttributeValueMemberL{Value: members}
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
