package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

type chargeRequestDTO struct {
	OrderID    string `json:"order_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Method     string `json:"method"`
	BuyerEmail string `json:"buyer_email"`
}

type chargeResponseDTO struct {
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}

// HTTPGateway posts charges to an external processor:
//   - 200 OK               approved
//   - 402 Payment Required declined
//   - 400 Bad Request      invalid payment details
//
// Calls go through a circuit breaker; declines do not count as failures.
type HTTPGateway struct {
	url    string
	client *http.Client
	cb     *gobreaker.CircuitBreaker[*PaymentResult]
}

func NewHTTPGateway(url string, client *http.Client, log logrus.FieldLogger) *HTTPGateway {
	if client == nil {
		client = &http.Client{}
	}
	st := gobreaker.Settings{
		Name:        "PaymentGateway",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidPayment)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf("CircuitBreaker[%s] state changed from %s to %s", name, from, to)
		},
	}
	return &HTTPGateway{
		url:    url,
		client: client,
		cb:     gobreaker.NewCircuitBreaker[*PaymentResult](st),
	}
}

func (g *HTTPGateway) Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	return g.cb.Execute(func() (*PaymentResult, error) {
		return g.charge(ctx, req)
	})
}

func (g *HTTPGateway) charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	body, err := json.Marshal(chargeRequestDTO{
		OrderID:    req.OrderID,
		Amount:     req.Amount.StringFixed(2),
		Currency:   req.Currency,
		Method:     string(req.Payment.Method),
		BuyerEmail: req.Buyer.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.OrderID)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to contact payment service: %w", err)
	}
	defer resp.Body.Close()

	var dto chargeResponseDTO
	decodeErr := json.NewDecoder(resp.Body).Decode(&dto)

	switch resp.StatusCode {
	case http.StatusOK:
		// an approval we cannot read is an unknown outcome, not a success
		if decodeErr != nil {
			return nil, fmt.Errorf("failed to decode charge response: %w", decodeErr)
		}
		return &PaymentResult{Approved: true, TransactionID: dto.TransactionID}, nil
	case http.StatusPaymentRequired:
		reason := dto.Reason
		if reason == "" {
			reason = "payment was declined"
		}
		return &PaymentResult{Approved: false, TransactionID: dto.TransactionID, Reason: reason}, nil
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayment, dto.Reason)
	default:
		return nil, fmt.Errorf("unexpected response from payment service (status %d)", resp.StatusCode)
	}
}
