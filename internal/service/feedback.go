package service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/spss-platform/adminsync/internal/api"
	"github.com/spss-platform/adminsync/internal/domain/collection"
	"github.com/spss-platform/adminsync/internal/domain/records"
)

// Feedback manages the product feedback collection.
type Feedback struct {
	*collection.Store[records.Feedback]
	client *api.Client
}

// NewFeedback creates the feedback store.
func NewFeedback(client *api.Client, sess collection.SessionControl, logger *slog.Logger) *Feedback {
	return &Feedback{
		Store: collection.New(collection.Config[records.Feedback]{
			Name:     "feedback",
			ListPath: "/Feedback/all",
			Key:      records.Feedback.Key,
		}, client, sess, logger),
		client: client,
	}
}

// Delete removes one feedback entry and splices it out locally; the
// delete endpoint returns a bare 2xx with no body contract.
func (f *Feedback) Delete(ctx context.Context, feedbackID string) error {
	return f.Mutate(ctx, "delete", func(ctx context.Context) error {
		return f.client.Do(ctx, http.MethodDelete, "/Feedback/"+feedbackID, nil, nil)
	}, f.RemoveByKey(feedbackID))
}
