package interview

import "context"

// Service is the interview entrypoint consumed by transports. Both the
// Engine and the queue-backed Dispatcher implement it.
type Service interface {
	StartInterview(ctx context.Context, req StartRequest) (*TurnResult, error)
	ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error)
}
