// Package awsx builds the AWS SDK clients shared by the cloud-backed
// repositories: DynamoDB for documents, S3 for weekly-plan outputs, Lambda
// for the plan-generation worker trigger.
package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

type Clients struct {
	Dynamo *dynamodb.Client
	S3     *s3.Client
	Lambda *lambda.Client
}

func NewClients(ctx context.Context, log *logger.Logger, region string) (*Clients, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	log.Info("AWS clients initialized", "region", region)
	return &Clients{
		Dynamo: dynamodb.NewFromConfig(cfg),
		S3:     s3.NewFromConfig(cfg),
		Lambda: lambda.NewFromConfig(cfg),
	}, nil
}
