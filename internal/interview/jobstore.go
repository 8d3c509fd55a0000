package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/leadlens-ai/leadlens/pkg/logging"
)

const jobTTL = 24 * time.Hour

// JobStatus represents the lifecycle of an interview job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ErrJobNotFound indicates the requested job ID does not exist.
var ErrJobNotFound = errors.New("interview: job not found")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// JobRecord captures the persisted state of an interview request.
type JobRecord struct {
	JobID        string        `dynamodbav:"jobId" json:"jobId"`
	Status       JobStatus     `dynamodbav:"status" json:"status"`
	RequestType  jobType       `dynamodbav:"requestType" json:"requestType"`
	SessionID    string        `dynamodbav:"sessionId,omitempty" json:"sessionId,omitempty"`
	StartRequest *StartRequest `dynamodbav:"startRequest,omitempty" json:"startRequest,omitempty"`
	TurnRequest  *TurnRequest  `dynamodbav:"turnRequest,omitempty" json:"turnRequest,omitempty"`
	Result       *TurnResult   `dynamodbav:"result,omitempty" json:"result,omitempty"`
	ErrorMessage string        `dynamodbav:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt    string        `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt    string        `dynamodbav:"updatedAt" json:"updatedAt"`
	ExpiresAt    int64         `dynamodbav:"expiresAt,omitempty" json:"-"`
}

// JobRecorder persists new job records and reads them back.
type JobRecorder interface {
	PutPending(ctx context.Context, job *JobRecord) error
	GetJob(ctx context.Context, jobID string) (*JobRecord, error)
}

// JobUpdater transitions a job to a terminal status.
type JobUpdater interface {
	MarkCompleted(ctx context.Context, jobID string, result *TurnResult, sessionID string) error
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
}

// JobStore persists job records to DynamoDB.
type JobStore struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

var _ JobRecorder = (*JobStore)(nil)
var _ JobUpdater = (*JobStore)(nil)

// NewJobStore builds a store backed by the provided DynamoDB client.
func NewJobStore(client dynamoAPI, tableName string, logger *logging.Logger) *JobStore {
	if client == nil {
		panic("interview: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("interview: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &JobStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// PutPending inserts a new pending job record.
func (s *JobStore) PutPending(ctx context.Context, job *JobRecord) error {
	if job == nil {
		return errors.New("interview: job cannot be nil")
	}
	now := time.Now().UTC()
	job.Status = JobStatusPending
	job.CreatedAt = now.Format(time.RFC3339Nano)
	job.UpdatedAt = job.CreatedAt
	if job.ExpiresAt == 0 {
		job.ExpiresAt = now.Add(jobTTL).Unix()
	}

	item, err := attributevalue.MarshalMap(job)
	if err != nil {
		return fmt.Errorf("interview: failed to marshal job: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(jobId)"),
	})
	if err != nil {
		return fmt.Errorf("interview: failed to persist job: %w", err)
	}
	return nil
}

// GetJob loads one job record by id.
func (s *JobStore) GetJob(ctx context.Context, jobID string) (*JobRecord, error) {
	if jobID == "" {
		return nil, errors.New("interview: job id is required")
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"jobId": &types.AttributeValueMemberS{Value: jobID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("interview: failed to load job: %w", err)
	}
	if out.Item == nil {
		return nil, ErrJobNotFound
	}

	var job JobRecord
	if err := attributevalue.UnmarshalMap(out.Item, &job); err != nil {
		return nil, fmt.Errorf("interview: failed to decode job: %w", err)
	}
	return &job, nil
}

// MarkCompleted records a successful outcome for the job.
func (s *JobStore) MarkCompleted(ctx context.Context, jobID string, result *TurnResult, sessionID string) error {
	return s.update(ctx, jobID, JobStatusCompleted, result, sessionID, "")
}

// MarkFailed records a failed outcome for the job.
func (s *JobStore) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	return s.update(ctx, jobID, JobStatusFailed, nil, "", errMsg)
}

func (s *JobStore) update(ctx context.Context, jobID string, status JobStatus, result *TurnResult, sessionID, errMsg string) error {
	if jobID == "" {
		return errors.New("interview: job id is required")
	}

	expr := "SET #status = :status, updatedAt = :updatedAt"
	names := map[string]string{"#status": "status"}
	values := map[string]types.AttributeValue{
		":status":    &types.AttributeValueMemberS{Value: string(status)},
		":updatedAt": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
	}

	if result != nil {
		av, err := attributevalue.Marshal(result)
		if err != nil {
			return fmt.Errorf("interview: failed to marshal job result: %w", err)
		}
		expr += ", #result = :result"
		names["#result"] = "result"
		values[":result"] = av
	}
	if sessionID != "" {
		expr += ", sessionId = :sessionId"
		values[":sessionId"] = &types.AttributeValueMemberS{Value: sessionID}
	}
	if errMsg != "" {
		expr += ", errorMessage = :errorMessage"
		values[":errorMessage"] = &types.AttributeValueMemberS{Value: errMsg}
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       map[string]types.AttributeValue{"jobId": &types.AttributeValueMemberS{Value: jobID}},
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(jobId)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrJobNotFound
		}
		return fmt.Errorf("interview: failed to update job: %w", err)
	}
	return nil
}
