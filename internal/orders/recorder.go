package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/logger"
)

// Recorder writes confirmed checkouts to the ledger.
type Recorder struct {
	repo Repository
	log  logrus.FieldLogger
}

func NewRecorder(repo Repository, log logrus.FieldLogger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// ForSession returns the sink a session's checkout flow records into.
func (r *Recorder) ForSession(sessionID string) checkout.OrderSink {
	return sessionSink{recorder: r, sessionID: sessionID}
}

func (r *Recorder) record(ctx context.Context, sessionID string, c checkout.Confirmation) error {
	order, err := FromConfirmation(sessionID, c)
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx, r.log).WithFields(logrus.Fields{
		"order_id":   order.ID,
		"session_id": sessionID,
	})
	if err := r.repo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, ErrDuplicateOrder) {
			log.Info("order already recorded, skipping")
			return nil
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	log.Info("order recorded")
	return nil
}

type sessionSink struct {
	recorder  *Recorder
	sessionID string
}

func (s sessionSink) Record(ctx context.Context, c checkout.Confirmation) error {
	return s.recorder.record(ctx, s.sessionID, c)
}
