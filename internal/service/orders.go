package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/spss-platform/adminsync/internal/api"
	"github.com/spss-platform/adminsync/internal/domain/collection"
	"github.com/spss-platform/adminsync/internal/domain/records"
)

// Orders manages the order collection. Orders without line items are
// abandoned-checkout placeholders and are dropped at fetch time.
type Orders struct {
	*collection.Store[records.Order]
	client *api.Client
}

// NewOrders creates the order store.
func NewOrders(client *api.Client, sess collection.SessionControl, logger *slog.Logger) *Orders {
	return &Orders{
		Store: collection.New(collection.Config[records.Order]{
			Name:     "orders",
			ListPath: "/Order/all",
			Key:      records.Order.Key,
			FilterList: func(orders []records.Order) []records.Order {
				out := orders[:0:len(orders)]
				for _, o := range orders {
					if len(o.Items) > 0 {
						out = append(out, o)
					}
				}
				return out
			},
		}, client, sess, logger),
		client: client,
	}
}

// orderDetailResponse wraps the detail endpoint's {data: order} shape,
// which carries no success flag unlike the other envelopes.
type orderDetailResponse struct {
	Data records.Order `json:"data"`
}

// Detail fetches one order with its line items. Returns nil on failure.
func (o *Orders) Detail(ctx context.Context, orderID string) *records.Order {
	return o.FetchOne(ctx, func(ctx context.Context) (*records.Order, error) {
		var resp orderDetailResponse
		path := "/Order/orderId?orderId=" + url.QueryEscape(orderID)
		if err := o.client.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		rec := resp.Data
		return &rec, nil
	})
}
