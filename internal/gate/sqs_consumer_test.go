package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parkledger/internal/domain"
	"parkledger/internal/repository"
	"parkledger/internal/service/mocks"
)

const queueURL = "https://sqs.eu-west-1.amazonaws.com/123456789012/gate-events"

type mockSQS struct {
	mock.Mock
}

func (m *mockSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *mockSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	return &sqs.DeleteMessageOutput{}, args.Error(0)
}

func receiptIs(handle string) any {
	return mock.MatchedBy(func(in *sqs.DeleteMessageInput) bool {
		return aws.ToString(in.ReceiptHandle) == handle && aws.ToString(in.QueueUrl) == queueURL
	})
}

func TestHandle_EntryUsesGateIdentity(t *testing.T) {
	ledger := new(mocks.MockParkingLedger)
	want := domain.RecordEntryDTO{VehicleNumber: "KA01AB1234", VehicleType: "car", EntryTime: "2024-03-01T08:00:00Z"}
	ledger.On("RecordEntry", mock.Anything, want, mock.MatchedBy(func(id domain.Identity) bool {
		return id.UserID == "gate:north" && id.Role == domain.RoleSystem
	})).Return(&domain.ParkingSession{ID: "s-1"}, nil)

	c := NewSQSConsumer(new(mockSQS), queueURL, ledger)
	err := c.Handle(context.Background(), `{"eventType":"entry","vehicleNumber":"KA01AB1234","vehicleType":"car","timestamp":"2024-03-01T08:00:00Z","gateId":"north"}`)

	require.NoError(t, err)
	ledger.AssertExpectations(t)
}

func TestHandle_Classification(t *testing.T) {
	tests := []struct {
		name      string
		ledgerErr error
		wantErr   bool
	}{
		{"not parked is dropped", repository.ErrNoActiveSession, false},
		{"closed concurrently is dropped", repository.ErrSessionNotActive, false},
		{"storage failure is retried", errors.New("connection reset"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := new(mocks.MockParkingLedger)
			ledger.On("RecordExit", mock.Anything, domain.RecordExitDTO{VehicleNumber: "KA01"}, mock.Anything).Return(nil, tt.ledgerErr)

			c := NewSQSConsumer(new(mockSQS), queueURL, ledger)
			err := c.Handle(context.Background(), `{"eventType":"EXIT","vehicleNumber":"KA01","gateId":"south"}`)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHandle_DropsGarbage(t *testing.T) {
	ledger := new(mocks.MockParkingLedger)
	c := NewSQSConsumer(new(mockSQS), queueURL, ledger)

	assert.NoError(t, c.Handle(context.Background(), `not json`))
	assert.NoError(t, c.Handle(context.Background(), `{"eventType":"tailgate","vehicleNumber":"KA01"}`))
	ledger.AssertNotCalled(t, "RecordEntry", mock.Anything, mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "RecordExit", mock.Anything, mock.Anything, mock.Anything)
}

func TestPoll_DeletesOnlyHandledMessages(t *testing.T) {
	client := new(mockSQS)
	ledger := new(mocks.MockParkingLedger)

	client.On("ReceiveMessage", mock.Anything, mock.MatchedBy(func(in *sqs.ReceiveMessageInput) bool {
		return aws.ToString(in.QueueUrl) == queueURL
	})).Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{
		{MessageId: aws.String("m1"), ReceiptHandle: aws.String("r1"), Body: aws.String(`{"eventType":"entry","vehicleNumber":"A1","vehicleType":"car","gateId":"g"}`)},
		{MessageId: aws.String("m2"), ReceiptHandle: aws.String("r2"), Body: aws.String(`{"eventType":"entry","vehicleNumber":"B2","vehicleType":"car","gateId":"g"}`)},
		{MessageId: aws.String("m3"), ReceiptHandle: aws.String("r3")},
	}}, nil)
	client.On("DeleteMessage", mock.Anything, receiptIs("r1")).Return(nil)
	client.On("DeleteMessage", mock.Anything, receiptIs("r3")).Return(nil)

	ledger.On("RecordEntry", mock.Anything, mock.MatchedBy(func(d domain.RecordEntryDTO) bool { return d.VehicleNumber == "A1" }), mock.Anything).
		Return(&domain.ParkingSession{ID: "s-1"}, nil)
	ledger.On("RecordEntry", mock.Anything, mock.MatchedBy(func(d domain.RecordEntryDTO) bool { return d.VehicleNumber == "B2" }), mock.Anything).
		Return(nil, errors.New("database is down"))

	c := NewSQSConsumer(client, queueURL, ledger)
	require.NoError(t, c.poll(context.Background()))

	client.AssertExpectations(t)
	client.AssertNotCalled(t, "DeleteMessage", mock.Anything, receiptIs("r2"))
	ledger.AssertExpectations(t)
}

func TestStart_StopsOnCancel(t *testing.T) {
	client := new(mockSQS)
	ctx, cancel := context.WithCancel(context.Background())
	client.On("ReceiveMessage", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)

	done := make(chan struct{})
	go func() {
		NewSQSConsumer(client, queueURL, new(mocks.MockParkingLedger)).Start(ctx)
		close(done)
	}()
	<-done
	client.AssertNumberOfCalls(t, "ReceiveMessage", 1)
}
