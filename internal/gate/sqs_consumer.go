// Package gate turns gate sensor messages from SQS into ledger entries and
// exits.
package gate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"parkledger/internal/domain"
	"parkledger/internal/metrics"
	"parkledger/internal/repository"
	"parkledger/internal/service"
)

// SQSAPI is the subset of *sqs.Client the consumer uses.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type SQSConsumer struct {
	sqsClient SQSAPI
	queueURL  string
	ledger    service.ParkingLedger
	retryWait time.Duration
}

func NewSQSConsumer(client SQSAPI, queueURL string, ledger service.ParkingLedger) *SQSConsumer {
	return &SQSConsumer{
		sqsClient: client,
		queueURL:  queueURL,
		ledger:    ledger,
		retryWait: 5 * time.Second,
	}
}

func (c *SQSConsumer) Start(ctx context.Context) {
	zap.S().Infof("SQS Consumer: listening on queue %s", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			zap.S().Info("SQS Consumer: context cancelled, stopping.")
			return
		default:
		}

		if err := c.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			zap.S().Warnf("SQS Consumer: error receiving messages: %v", err)
			select {
			case <-time.After(c.retryWait):
			case <-ctx.Done():
				return
			}
		}
	}
}

// poll receives one batch and processes it. Messages that fail with a
// transient error stay on the queue until their visibility timeout expires.
func (c *SQSConsumer) poll(ctx context.Context) error {
	result, err := c.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   60,
	})
	if err != nil {
		return err
	}
	if len(result.Messages) > 0 {
		zap.S().Debugf("SQS Consumer: received %d message(s)", len(result.Messages))
	}

	for _, message := range result.Messages {
		c.process(ctx, message)
	}
	return nil
}

func (c *SQSConsumer) process(ctx context.Context, message types.Message) {
	if message.Body == nil {
		zap.S().Warn("SQS Consumer: empty message body, deleting")
		c.deleteMessage(ctx, message.ReceiptHandle)
		return
	}

	if err := c.Handle(ctx, *message.Body); err != nil {
		zap.S().Warnf("SQS Consumer: message %s will be retried: %v", aws.ToString(message.MessageId), err)
		return
	}
	c.deleteMessage(ctx, message.ReceiptHandle)
}

// Handle applies one gate message to the ledger. It returns an error only
// when a retry might succeed; malformed or rejected messages are logged and
// reported as handled.
func (c *SQSConsumer) Handle(ctx context.Context, body string) error {
	var msg domain.GateMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		metrics.GateMessagesTotal.WithLabelValues("unknown", metrics.OutcomeRejected).Inc()
		zap.S().Warnf("SQS Consumer: dropping malformed message: %v", err)
		return nil
	}

	direction := domain.GateDirection(strings.ToLower(string(msg.EventType)))
	by := gateIdentity(msg.GateID)

	var err error
	switch direction {
	case domain.GateDirectionEntry:
		_, err = c.ledger.RecordEntry(ctx, domain.RecordEntryDTO{
			VehicleNumber: msg.VehicleNumber,
			VehicleType:   msg.VehicleType,
			EntryTime:     msg.Timestamp,
		}, by)
	case domain.GateDirectionExit:
		_, err = c.ledger.RecordExit(ctx, domain.RecordExitDTO{
			VehicleNumber: msg.VehicleNumber,
			ExitTime:      msg.Timestamp,
		}, by)
	default:
		metrics.GateMessagesTotal.WithLabelValues("unknown", metrics.OutcomeRejected).Inc()
		zap.S().Warnf("SQS Consumer: dropping message with unknown event type %q", msg.EventType)
		return nil
	}

	switch {
	case err == nil:
		metrics.GateMessagesTotal.WithLabelValues(string(direction), metrics.OutcomeSuccess).Inc()
		return nil
	case isPermanent(err):
		metrics.GateMessagesTotal.WithLabelValues(string(direction), metrics.OutcomeRejected).Inc()
		zap.S().Infof("SQS Consumer: gate %s %s for %s rejected: %v", msg.GateID, direction, msg.VehicleNumber, err)
		return nil
	default:
		metrics.GateMessagesTotal.WithLabelValues(string(direction), metrics.OutcomeFailed).Inc()
		return fmt.Errorf("gate %s %s for %s: %w", msg.GateID, direction, msg.VehicleNumber, err)
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, service.ErrValidation) ||
		errors.Is(err, repository.ErrDuplicateEntry) ||
		errors.Is(err, repository.ErrNoActiveSession) ||
		errors.Is(err, repository.ErrSessionNotActive)
}

func gateIdentity(gateID string) domain.Identity {
	if gateID == "" {
		gateID = "unknown"
	}
	return domain.Identity{
		UserID:   "gate:" + gateID,
		Username: "gate-" + gateID,
		Name:     "Gate " + gateID,
		Role:     domain.RoleSystem,
	}
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		zap.S().Warn("SQS Consumer: missing receipt handle, cannot delete message")
		return
	}
	_, delErr := c.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: receiptHandle,
	})
	if delErr != nil {
		zap.S().Warnf("SQS Consumer: error deleting message: %v", delErr)
	}
}
