// Package reconcile keeps binding status in step with account lifecycle.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/tether/internal/events"
	"github.com/alfredjeanlab/tether/internal/model"
	"github.com/alfredjeanlab/tether/internal/store"
)

// Reconciler applies account lifecycle events to the bindings owned by the
// affected account. Event delivery is at-least-once, so every transition is
// written as a no-op when the binding is already in the target state.
type Reconciler struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a reconciler backed by the given store.
func New(s store.Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: s, logger: logger}
}

// HandleEvent applies one account lifecycle event. A failed binding update is
// logged and skipped so the rest of the account's bindings still converge;
// the dropped update is retried on the next redelivery.
func (r *Reconciler) HandleEvent(ctx context.Context, event events.AccountLifecycle) {
	if event.AccountID == "" || event.Kind == "" {
		return
	}

	switch event.Kind {
	case events.AccountDeactivated, events.AccountDeleted:
		r.deactivateBindings(ctx, event.AccountID)
	case events.AccountReactivated:
		r.reactivateBindings(ctx, event.AccountID)
	default:
		r.logger.Info("reconcile: ignoring lifecycle kind",
			"account", event.AccountID, "kind", event.Kind)
	}
}

// deactivateBindings disables every active binding of the account with the
// account_inactive reason.
func (r *Reconciler) deactivateBindings(ctx context.Context, accountID string) {
	bindings, _, err := r.store.ListBindings(ctx, model.BindingFilter{AccountID: accountID})
	if err != nil {
		r.logger.Error("reconcile: failed to list bindings", "account", accountID, "err", err)
		return
	}

	now := time.Now().UTC()
	for _, b := range bindings {
		changed, err := r.store.SetBindingStatus(ctx, b.ID, false, model.ReasonAccountInactive, now)
		if err != nil {
			r.logger.Error("reconcile: failed to disable binding", "binding", b.ID, "err", err)
			continue
		}
		if changed {
			r.logger.Info("reconcile: disabled binding", "binding", b.ID, "account", accountID)
		}
	}
}

// reactivateBindings re-enables only bindings the reconciler itself disabled.
// A binding disabled by an operator keeps its manual_disable reason and stays
// off until re-enabled through the API.
func (r *Reconciler) reactivateBindings(ctx context.Context, accountID string) {
	bindings, _, err := r.store.ListBindings(ctx, model.BindingFilter{AccountID: accountID, IncludeInactive: true})
	if err != nil {
		r.logger.Error("reconcile: failed to list bindings", "account", accountID, "err", err)
		return
	}

	now := time.Now().UTC()
	for _, b := range bindings {
		if b.Active || b.StatusReason != model.ReasonAccountInactive {
			continue
		}
		changed, err := r.store.SetBindingStatus(ctx, b.ID, true, "", now)
		if err != nil {
			r.logger.Error("reconcile: failed to re-enable binding", "binding", b.ID, "err", err)
			continue
		}
		if changed {
			r.logger.Info("reconcile: re-enabled binding", "binding", b.ID, "account", accountID)
		}
	}
}

// StartSubscriber listens for account lifecycle events on the event bus and
// reconciles binding status. It blocks until ctx is cancelled.
func (r *Reconciler) StartSubscriber(ctx context.Context, sub events.Subscriber) error {
	ch, cancel, err := sub.Subscribe(events.TopicAccountLifecycle)
	if err != nil {
		return fmt.Errorf("reconcile: subscribe: %w", err)
	}
	defer cancel()

	r.logger.Info("reconcile: subscriber started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconcile: subscriber stopping")
			return nil
		case raw, ok := <-ch:
			if !ok {
				r.logger.Info("reconcile: subscription channel closed")
				return nil
			}

			var event events.AccountLifecycle
			if err := json.Unmarshal(raw, &event); err != nil {
				r.logger.Warn("reconcile: bad event payload", "err", err)
				continue
			}

			r.HandleEvent(ctx, event)
		}
	}
}
