package outreach

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Publisher hands task payloads to the automation engine's queue.
type Publisher interface {
	Send(ctx context.Context, body string) error
}

// SQSQueue publishes to AWS/LocalStack SQS.
type SQSQueue struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSQueue creates a queue wrapper around the provided SQS client.
func NewSQSQueue(client *sqs.Client, queueURL string) *SQSQueue {
	if client == nil {
		panic("outreach: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("outreach: SQS queueURL cannot be empty")
	}
	return &SQSQueue{
		client:   client,
		queueURL: queueURL,
	}
}

func (q *SQSQueue) Send(ctx context.Context, body string) error {
	_, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("outreach: failed to send SQS message: %w", err)
	}
	return nil
}

// MemoryQueue is a Publisher backed by an in-memory slice, used in tests
// and local development without AWS.
type MemoryQueue struct {
	mu     sync.Mutex
	bodies []string
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Send(ctx context.Context, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	q.bodies = append(q.bodies, body)
	q.mu.Unlock()
	return nil
}

// Messages returns a copy of everything sent so far.
func (q *MemoryQueue) Messages() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.bodies...)
}
