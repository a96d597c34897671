package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/spss-platform/adminsync/internal/adapter/outbound/audit"
	"github.com/spss-platform/adminsync/internal/api"
	"github.com/spss-platform/adminsync/internal/domain/session"
)

// resettable is what the watcher needs from every domain store.
type resettable interface {
	FetchAll(ctx context.Context) error
	Reset()
	Close()
}

// Console assembles the session service and all domain stores and owns the
// observer wiring between them: each store's initial fetch fires exactly
// once per transition into the authenticated state, and every store resets
// when the session goes anonymous.
type Console struct {
	Session  *session.Service
	Users    *Users
	Products *Products
	Orders   *Orders
	Payments *Payments
	Feedback *Feedback
	Visits   *Visits
	Stats    *Stats

	auditLog *audit.Store
	logger   *slog.Logger

	stores      []resettable
	unsubscribe func()
	wg          sync.WaitGroup
	startOnce   sync.Once
	closeOnce   sync.Once
}

// Options configures a Console.
type Options struct {
	Client *api.Client
	Vault  session.TokenVault
	Tokens *session.TokenCell
	Logger *slog.Logger
	// Audit, when non-nil, records every mutation issued through the
	// console's audited wrappers.
	Audit *audit.Store
}

// New builds a console from its parts. Call Start to resolve the session
// and arm the stores.
func New(opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sess := session.NewService(opts.Client, opts.Vault, opts.Tokens, logger)

	c := &Console{
		Session:  sess,
		Users:    NewUsers(opts.Client, sess, logger),
		Products: NewProducts(opts.Client, sess, logger),
		Orders:   NewOrders(opts.Client, sess, logger),
		Payments: NewPayments(opts.Client, sess, logger),
		Feedback: NewFeedback(opts.Client, sess, logger),
		Visits:   NewVisits(opts.Client, sess, logger),
		Stats:    NewStats(),
		auditLog: opts.Audit,
		logger:   logger,
	}
	c.stores = []resettable{c.Users, c.Products, c.Orders, c.Payments, c.Feedback, c.Visits}
	return c
}

// Start subscribes to session transitions, then resolves any persisted
// token. Subscription precedes Init so the authenticated transition from a
// valid persisted token is observed, not missed.
func (c *Console) Start(ctx context.Context) error {
	var initErr error
	c.startOnce.Do(func() {
		states, cancel := c.Session.Subscribe()
		c.unsubscribe = cancel

		c.wg.Add(1)
		go c.watch(ctx, states)

		initErr = c.Session.Init(ctx)
	})
	return initErr
}

// watch re-arms the stores on authentication and resets them on logout.
// Transitions are edge-triggered: repeated broadcasts of the same state do
// not refetch.
func (c *Console) watch(ctx context.Context, states <-chan session.State) {
	defer c.wg.Done()

	last := session.StateUnresolved
	for state := range states {
		if state == last {
			continue
		}
		switch state {
		case session.StateAuthenticated:
			c.refreshAll(ctx)
		case session.StateAnonymous:
			c.resetAll()
		}
		last = state
	}
}

// refreshAll fetches every store once, concurrently. Failures are already
// recorded store-locally; here they only feed the counters.
func (c *Console) refreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, st := range c.stores {
		wg.Add(1)
		go func(st resettable) {
			defer wg.Done()
			c.Stats.RecordFetch()
			if err := st.FetchAll(ctx); err != nil {
				c.Stats.RecordError()
			}
		}(st)
	}
	wg.Wait()
	c.logger.Debug("all stores refreshed")
}

// Audit exposes the audit trail, or nil when disabled.
func (c *Console) Audit() *audit.Store { return c.auditLog }

func (c *Console) resetAll() {
	for _, st := range c.stores {
		st.Reset()
	}
	c.logger.Debug("all stores reset")
}

// Close tears down the watcher and disposes the stores. In-flight results
// arriving afterwards are discarded by the stores' own guards.
func (c *Console) Close() {
	c.closeOnce.Do(func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		c.wg.Wait()
		for _, st := range c.stores {
			st.Close()
		}
	})
}

// Audited mutation wrappers. Every destructive operation issued through
// these lands in the local audit trail with its outcome.

// BanUser deactivates a user account.
func (c *Console) BanUser(ctx context.Context, id int) error {
	return c.audited(ctx, "user.ban", strconv.Itoa(id), func() error {
		return c.Users.Ban(ctx, id)
	})
}

// UnbanUser reactivates a user account.
func (c *Console) UnbanUser(ctx context.Context, id int) error {
	return c.audited(ctx, "user.unban", strconv.Itoa(id), func() error {
		return c.Users.Unban(ctx, id)
	})
}

// DeleteUser removes a user account.
func (c *Console) DeleteUser(ctx context.Context, id int) error {
	return c.audited(ctx, "user.delete", strconv.Itoa(id), func() error {
		return c.Users.Delete(ctx, id)
	})
}

// CreateProduct adds a catalog entry.
func (c *Console) CreateProduct(ctx context.Context, fields map[string]string) error {
	return c.audited(ctx, "product.create", fields["productName"], func() error {
		return c.Products.Create(ctx, fields)
	})
}

// UpdateProduct modifies a catalog entry.
func (c *Console) UpdateProduct(ctx context.Context, id string, fields map[string]string) error {
	return c.audited(ctx, "product.update", id, func() error {
		return c.Products.Update(ctx, id, fields)
	})
}

// DeleteProduct removes a catalog entry.
func (c *Console) DeleteProduct(ctx context.Context, id string) error {
	return c.audited(ctx, "product.delete", id, func() error {
		return c.Products.Delete(ctx, id)
	})
}

// DeleteFeedback removes a feedback entry.
func (c *Console) DeleteFeedback(ctx context.Context, id string) error {
	return c.audited(ctx, "feedback.delete", id, func() error {
		return c.Feedback.Delete(ctx, id)
	})
}

// ConfirmPayment settles a premium payment.
func (c *Console) ConfirmPayment(ctx context.Context, orderCode int64) error {
	return c.audited(ctx, "payment.confirm", strconv.FormatInt(orderCode, 10), func() error {
		return c.Payments.Confirm(ctx, orderCode)
	})
}

// CancelPayment voids a pending payment.
func (c *Console) CancelPayment(ctx context.Context, orderCode int64) error {
	return c.audited(ctx, "payment.cancel", strconv.FormatInt(orderCode, 10), func() error {
		return c.Payments.Cancel(ctx, orderCode)
	})
}

func (c *Console) audited(ctx context.Context, action, target string, op func() error) error {
	c.Stats.RecordMutation()
	err := op()
	if err != nil {
		c.Stats.RecordError()
	}

	if c.auditLog != nil {
		actor := ""
		if p := c.Session.Principal(); p != nil {
			actor = p.Email
		}
		outcome := audit.OutcomeOK
		detail := ""
		if err != nil {
			outcome = audit.OutcomeFailed
			detail = err.Error()
		}
		if recErr := c.auditLog.Record(ctx, audit.Entry{
			Actor:   actor,
			Action:  action,
			Target:  target,
			Outcome: outcome,
			Detail:  detail,
		}); recErr != nil {
			c.logger.Warn("failed to record audit entry", "action", action, "error", recErr)
		}
	}
	return err
}
