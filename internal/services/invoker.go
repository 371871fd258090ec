package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/repos"
)

// PlanWorkerInvoker triggers the external weekly-plan generation worker.
// Invocation is fire-and-forget; the worker reports no completion callback,
// so the job state machine infers completion from output freshness.
type PlanWorkerInvoker interface {
	Invoke(ctx context.Context, childID, triggerSource string) error
}

type planWorkerPayload struct {
	ChildID       string `json:"childId"`
	TriggerSource string `json:"triggerSource"`
}

type lambdaPlanInvoker struct {
	log          *logger.Logger
	client       *awslambda.Client
	functionName string
}

func NewLambdaPlanInvoker(baseLog *logger.Logger, client *awslambda.Client, functionName string) PlanWorkerInvoker {
	return &lambdaPlanInvoker{
		log:          baseLog.With("service", "LambdaPlanInvoker"),
		client:       client,
		functionName: strings.TrimSpace(functionName),
	}
}

func (i *lambdaPlanInvoker) Invoke(ctx context.Context, childID, triggerSource string) error {
	if i.functionName == "" {
		return fmt.Errorf("weekly plan worker function name is not configured")
	}

	payload, err := json.Marshal(planWorkerPayload{ChildID: childID, TriggerSource: triggerSource})
	if err != nil {
		return fmt.Errorf("marshal worker payload: %w", err)
	}

	_, err = i.client.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName:   aws.String(i.functionName),
		InvocationType: lambdatypes.InvocationTypeEvent,
		Payload:        payload,
	})
	if err != nil {
		return fmt.Errorf("invoke plan worker: %w", err)
	}
	i.log.Info("plan worker invoked", "child_id", childID, "trigger_source", triggerSource)
	return nil
}

// mockPlanInvoker stands in for the generation worker when the service runs
// against the in-memory store. It writes a markdown output after a short
// delay so the completion-inference path behaves the same as with a real
// worker.
type mockPlanInvoker struct {
	log   *logger.Logger
	store *repos.MockWeeklyPlanRepo
	delay time.Duration
	now   func() time.Time
}

func NewMockPlanInvoker(baseLog *logger.Logger, store *repos.MockWeeklyPlanRepo, delay time.Duration) PlanWorkerInvoker {
	return &mockPlanInvoker{
		log:   baseLog.With("service", "MockPlanInvoker"),
		store: store,
		delay: delay,
		now:   time.Now,
	}
}

func (i *mockPlanInvoker) Invoke(ctx context.Context, childID, triggerSource string) error {
	go func() {
		if i.delay > 0 {
			time.Sleep(i.delay)
		}
		now := i.now().UTC()
		name := fmt.Sprintf("weekly-plan-%s.md", now.Format("2006-01-02-150405"))
		markdown := fmt.Sprintf("# Weekly Plan for %s\n\nGenerated %s (trigger: %s).\n\n## Focus\n\n- Follow the child's current interests\n- Revisit recently active play schemas\n- One new sensory activity per day\n", childID, now.Format("January 2, 2006"), triggerSource)
		key := i.store.PutPlanObject(childID, name, markdown, now)
		i.log.Info("mock plan worker wrote output", "child_id", childID, "object_key", key)
	}()
	return nil
}
