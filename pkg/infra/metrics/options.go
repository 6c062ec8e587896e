package metrics

import "github.com/google/uuid"

type collectorOptions struct {
	requestID string
}

type Option func(*collectorOptions)

func WithRequestID(requestID string) Option {
	return func(o *collectorOptions) {
		o.requestID = requestID
	}
}

func newRequestID() string {
	return uuid.New().String()
}
