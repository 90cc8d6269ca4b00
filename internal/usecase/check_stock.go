package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/stockwatch/internal/entity"
)

// StatusEmailInterval is the heartbeat cadence for status emails.
const StatusEmailInterval = 12 * time.Hour

func NewCheckStockUseCase(
	fetcher PageFetcher,
	classifier AvailabilityClassifier,
	stateRepo StateRepositoryInterface,
	emailService EmailService,
	product entity.Product,
	logger *zap.Logger,
) *CheckStockUseCase {
	return &CheckStockUseCase{
		Fetcher:        fetcher,
		Classifier:     classifier,
		StateRepo:      stateRepo,
		EmailService:   emailService,
		Product:        product,
		StatusInterval: StatusEmailInterval,
		Now:            time.Now,
		Logger:         logger,
	}
}

type CheckStockUseCase struct {
	Fetcher        PageFetcher
	Classifier     AvailabilityClassifier
	StateRepo      StateRepositoryInterface
	EmailService   EmailService
	Product        entity.Product
	StatusInterval time.Duration
	Now            func() time.Time
	Logger         *zap.Logger
}

// Execute performs one check. On a delivery failure the output is still
// returned together with the error; state that does not depend on the failed
// email has already been saved at that point.
func (uc *CheckStockUseCase) Execute(ctx context.Context) (*CheckStockOutput, error) {
	// 1. Fetch the product page
	page, err := uc.Fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Classify
	decision := uc.Classifier.Classify(page)
	uc.Logger.Info("page classified",
		zap.Bool("available", decision.Available),
		zap.String("rule", string(decision.Rule)),
		zap.String("pattern", decision.Pattern),
	)

	// 3. Previous state
	previous, err := uc.StateRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	now := uc.Now().UTC()
	state := previous.Clone()
	out := &CheckStockOutput{
		Available: decision.Available,
		Decision:  decision,
		Previous:  previous,
		State:     state,
	}

	// 4. Restock alert on transition to available
	if decision.Available && !previous.WasAvailable() {
		if err := uc.send(ctx, uc.restockMessage(now)); err != nil {
			// Keep the old state so the alert is attempted again next run.
			return out, err
		}
		out.RestockEmailSent = true
	}

	// 5. Periodic status email
	if previous.StatusEmailDue(now, uc.StatusInterval) {
		if err := uc.send(ctx, uc.statusMessage(decision.Available, now)); err != nil {
			state.SetAvailable(decision.Available)
			if saveErr := uc.persist(ctx, out); saveErr != nil {
				return out, errors.Join(err, saveErr)
			}
			return out, err
		}
		state.MarkStatusEmailSent(now)
		out.StatusEmailSent = true
	}

	// 6. Persist
	state.SetAvailable(decision.Available)
	if err := uc.persist(ctx, out); err != nil {
		return out, err
	}
	return out, nil
}

func (uc *CheckStockUseCase) persist(ctx context.Context, out *CheckStockOutput) error {
	if err := uc.StateRepo.Save(ctx, out.State); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	out.StatePersisted = true
	return nil
}

func (uc *CheckStockUseCase) send(ctx context.Context, msg entity.EmailMessage) error {
	if err := uc.EmailService.Send(ctx, msg); err != nil {
		uc.Logger.Error("❌ email not delivered",
			zap.String("kind", string(msg.Kind)),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		var delivery *entity.DeliveryError
		if errors.As(err, &delivery) {
			return err
		}
		return &entity.DeliveryError{Kind: msg.Kind, Subject: msg.Subject, Err: err}
	}
	uc.Logger.Info("📧 email sent",
		zap.String("kind", string(msg.Kind)),
		zap.String("subject", msg.Subject),
	)
	return nil
}

func (uc *CheckStockUseCase) restockMessage(now time.Time) entity.EmailMessage {
	return entity.EmailMessage{
		Kind:    entity.EmailKindRestock,
		Subject: fmt.Sprintf("✅ Back in stock: %s", uc.Product.Name),
		Body: fmt.Sprintf("It looks AVAILABLE right now.\n\n%s\n\nChecked (UTC): %s",
			uc.Product.URL, checkedAt(now)),
	}
}

func (uc *CheckStockUseCase) statusMessage(available bool, now time.Time) entity.EmailMessage {
	status := "NOT available ❌"
	if available {
		status = "AVAILABLE ✅"
	}
	return entity.EmailMessage{
		Kind:    entity.EmailKindStatus,
		Subject: fmt.Sprintf("Stock status (12h): %s", uc.Product.Name),
		Body: fmt.Sprintf("Current status: %s\n\n%s\n\nChecked (UTC): %s",
			status, uc.Product.URL, checkedAt(now)),
	}
}

// checkedAt renders now as ISO-8601 with microseconds only when non-zero
// and an explicit +00:00 offset.
func checkedAt(now time.Time) string {
	layout := "2006-01-02T15:04:05-07:00"
	if now.Nanosecond()/int(time.Microsecond) != 0 {
		layout = "2006-01-02T15:04:05.000000-07:00"
	}
	return now.UTC().Format(layout)
}
