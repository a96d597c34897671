package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spss-platform/adminsync/internal/api"
	"github.com/spss-platform/adminsync/internal/domain/collection"
	"github.com/spss-platform/adminsync/internal/domain/records"
)

// Products manages the catalog collection. Create and update use
// multipart form encoding, which is what the backend's product endpoints
// accept.
type Products struct {
	*collection.Store[records.Product]
	client *api.Client
}

// NewProducts creates the product store.
func NewProducts(client *api.Client, sess collection.SessionControl, logger *slog.Logger) *Products {
	return &Products{
		Store: collection.New(collection.Config[records.Product]{
			Name:     "products",
			ListPath: "/Products",
			Key:      records.Product.Key,
		}, client, sess, logger),
		client: client,
	}
}

// Detail fetches one product. Returns nil on failure.
func (p *Products) Detail(ctx context.Context, id string) *records.Product {
	return p.FetchOne(ctx, func(ctx context.Context) (*records.Product, error) {
		var rec records.Product
		if err := p.client.Do(ctx, http.MethodGet, "/Products/"+id, nil, &rec); err != nil {
			return nil, err
		}
		return &rec, nil
	})
}

// Create submits a new product and refetches the collection so the
// server-assigned ID and derived fields land locally.
func (p *Products) Create(ctx context.Context, fields map[string]string) error {
	err := p.Mutate(ctx, "create", func(ctx context.Context) error {
		return p.client.DoForm(ctx, http.MethodPost, "/Products", fields, nil)
	}, nil)
	if err != nil {
		return err
	}
	return p.FetchAll(ctx)
}

// Update modifies a product and refetches the collection.
func (p *Products) Update(ctx context.Context, id string, fields map[string]string) error {
	err := p.Mutate(ctx, "update", func(ctx context.Context) error {
		var resp api.Envelope[struct{}]
		if err := p.client.DoForm(ctx, http.MethodPut, "/Products/"+id, fields, &resp); err != nil {
			return err
		}
		if !resp.Success && resp.Message == "" {
			return fmt.Errorf("server refused update")
		}
		return nil
	}, nil)
	if err != nil {
		return err
	}
	return p.FetchAll(ctx)
}

// Delete removes a product and splices it out of the collection.
func (p *Products) Delete(ctx context.Context, id string) error {
	return p.Mutate(ctx, "delete", func(ctx context.Context) error {
		var resp api.Envelope[struct{}]
		if err := p.client.Do(ctx, http.MethodDelete, "/Products/"+id, nil, &resp); err != nil {
			return err
		}
		if resp.Message == "" && !resp.Success {
			return fmt.Errorf("server refused deletion")
		}
		return nil
	}, p.RemoveByKey(id))
}
