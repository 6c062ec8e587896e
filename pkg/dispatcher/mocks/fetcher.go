package mocks

import (
	"context"

	"github.com/NeuralTrust/TrustFrame/pkg/infra/httpx"
	"github.com/stretchr/testify/mock"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string, opts httpx.FetchOptions) (*httpx.Page, error) {
	args := m.Called(ctx, rawURL, opts)
	page, _ := args.Get(0).(*httpx.Page)
	return page, args.Error(1)
}
