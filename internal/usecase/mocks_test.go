package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/stockwatch/internal/entity"
)

type MockPageFetcher struct {
	mock.Mock
}

func (m *MockPageFetcher) Fetch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Send(ctx context.Context, msg entity.EmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) Load(ctx context.Context) (*entity.StockState, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*entity.StockState); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStateRepository) Save(ctx context.Context, state *entity.StockState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// memoryStateRepository keeps state between Execute calls in multi-run tests.
type memoryStateRepository struct {
	state *entity.StockState
	saves int
}

func (r *memoryStateRepository) Load(context.Context) (*entity.StockState, error) {
	if r.state == nil {
		return entity.NewStockState(), nil
	}
	return r.state.Clone(), nil
}

func (r *memoryStateRepository) Save(_ context.Context, state *entity.StockState) error {
	r.state = state.Clone()
	r.saves++
	return nil
}

func boolPtr(v bool) *bool {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func ofKind(kind entity.EmailKind) interface{} {
	return mock.MatchedBy(func(msg entity.EmailMessage) bool {
		return msg.Kind == kind
	})
}
