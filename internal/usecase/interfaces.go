package usecase

import (
	"context"

	"github.com/xavierca1/stockwatch/internal/entity"
)

type PageFetcher interface {
	Fetch(ctx context.Context) (string, error)
}

type StateRepositoryInterface interface {
	Load(ctx context.Context) (*entity.StockState, error)
	Save(ctx context.Context, state *entity.StockState) error
}

type EmailService interface {
	Send(ctx context.Context, msg entity.EmailMessage) error
}

type AvailabilityClassifier interface {
	Classify(text string) Classification
}
