package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spss-platform/adminsync/internal/api"
	"github.com/spss-platform/adminsync/internal/domain/collection"
	"github.com/spss-platform/adminsync/internal/domain/records"
)

// Payments manages the payment collection and its status transitions.
// The server owns payment state: confirm and cancel refetch the collection
// after success instead of patching locally, because the backend computes
// timestamps and settlement fields the client cannot reproduce.
type Payments struct {
	*collection.Store[records.Payment]
	client  *api.Client
	session collection.SessionControl
}

// NewPayments creates the payment store.
func NewPayments(client *api.Client, sess collection.SessionControl, logger *slog.Logger) *Payments {
	return &Payments{
		Store: collection.New(collection.Config[records.Payment]{
			Name:     "payments",
			ListPath: "/Payment/getpayment",
			Key:      records.Payment.Key,
		}, client, sess, logger),
		client:  client,
		session: sess,
	}
}

// orderCodeRequest is the body for confirm and cancel.
type orderCodeRequest struct {
	OrderCode int64 `json:"orderCode"`
}

// Confirm settles a premium payment. Confirming an already-completed
// payment fails server-side and leaves the local record untouched.
func (p *Payments) Confirm(ctx context.Context, orderCode int64) error {
	return p.transition(ctx, "confirm", "/Payment/confirm-premium-payment", orderCode)
}

// Cancel voids a pending payment.
func (p *Payments) Cancel(ctx context.Context, orderCode int64) error {
	return p.transition(ctx, "cancel", "/Payment/cancel", orderCode)
}

func (p *Payments) transition(ctx context.Context, action, path string, orderCode int64) error {
	err := p.Mutate(ctx, action, func(ctx context.Context) error {
		var resp api.Envelope[struct{}]
		if err := p.client.Do(ctx, http.MethodPost, path, orderCodeRequest{OrderCode: orderCode}, &resp); err != nil {
			return err
		}
		if !resp.Success && resp.Message == "" {
			return fmt.Errorf("server refused %s", action)
		}
		return nil
	}, nil)
	if err != nil {
		return err
	}
	return p.FetchAll(ctx)
}

// statusResponse is the live status shape {status}.
type statusResponse struct {
	Status string `json:"status"`
}

// LiveStatus queries the payment gateway's current view of an order
// without touching the collection. It carries the same credential policy
// as every store operation: no network call without a token, and a 401
// resets the session.
func (p *Payments) LiveStatus(ctx context.Context, orderCode int64) (string, error) {
	if p.session.Token() == "" {
		return "", collection.ErrNotAuthenticated
	}

	var resp statusResponse
	path := fmt.Sprintf("/Payment/check-payment-status?orderCode=%d", orderCode)
	if err := p.client.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			p.session.Invalidate()
		}
		return "", fmt.Errorf("check payment status: %w", err)
	}
	return resp.Status, nil
}
