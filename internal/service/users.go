// Package service wires the session and the per-domain stores together and
// exposes the operations the front end consumes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/spss-platform/adminsync/internal/api"
	"github.com/spss-platform/adminsync/internal/domain/collection"
	"github.com/spss-platform/adminsync/internal/domain/records"
)

// Users manages the user collection: list, detail, ban/unban, delete.
type Users struct {
	*collection.Store[records.User]
	client *api.Client
}

// NewUsers creates the user store.
func NewUsers(client *api.Client, sess collection.SessionControl, logger *slog.Logger) *Users {
	return &Users{
		Store: collection.New(collection.Config[records.User]{
			Name:     "users",
			ListPath: "/User",
			Key:      records.User.Key,
		}, client, sess, logger),
		client: client,
	}
}

// Detail fetches one user's full profile, including image fields the list
// omits. Returns nil on failure.
func (u *Users) Detail(ctx context.Context, id int) *records.User {
	return u.FetchOne(ctx, func(ctx context.Context) (*records.User, error) {
		var resp api.Envelope[records.User]
		path := fmt.Sprintf("/User/user-profile?id=%d", id)
		if err := u.client.Do(ctx, http.MethodPost, path, nil, &resp); err != nil {
			return nil, err
		}
		if !resp.Success {
			return nil, fmt.Errorf("profile lookup reported failure")
		}
		rec := resp.Data
		return &rec, nil
	})
}

// Ban deactivates a user, then refetches the collection so server-derived
// fields (status, timestamps) stay true rather than guessing locally.
func (u *Users) Ban(ctx context.Context, id int) error {
	return u.transition(ctx, "ban", fmt.Sprintf("/User/Ban-user?id=%d", id))
}

// Unban reactivates a user. Same refetch policy as Ban.
func (u *Users) Unban(ctx context.Context, id int) error {
	return u.transition(ctx, "unban", fmt.Sprintf("/User/UnBan-user?id=%d", id))
}

func (u *Users) transition(ctx context.Context, action, path string) error {
	err := u.Mutate(ctx, action, func(ctx context.Context) error {
		// 2xx is the whole contract; no body shape is enforced.
		return u.client.Do(ctx, http.MethodPost, path, nil, nil)
	}, nil)
	if err != nil {
		return err
	}
	return u.FetchAll(ctx)
}

// Delete removes a user and splices it out of the collection on success.
func (u *Users) Delete(ctx context.Context, id int) error {
	key := strconv.Itoa(id)
	return u.Mutate(ctx, "delete", func(ctx context.Context) error {
		var resp api.Envelope[struct{}]
		path := fmt.Sprintf("/User/delete-user?id=%d", id)
		if err := u.client.Do(ctx, http.MethodDelete, path, nil, &resp); err != nil {
			return err
		}
		if !resp.Success {
			return fmt.Errorf("server refused deletion")
		}
		return nil
	}, u.RemoveByKey(key))
}
