// Package reservation orchestrates the commerce ledger: it serializes
// every read-transition-write cycle against the state store, schedules
// reservation expiry, and publishes domain events for each accepted
// transition.
package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/consignd/commerce-backend/internal/bus"
	"github.com/consignd/commerce-backend/internal/commerce"
	"github.com/consignd/commerce-backend/internal/statestore"
	"github.com/consignd/commerce-backend/internal/warehouse"
	pkgerrors "github.com/consignd/commerce-backend/pkg/errors"
	"github.com/consignd/commerce-backend/pkg/logger"
	"github.com/consignd/commerce-backend/pkg/metrics"
)

// ErrShuttingDown rejects new transitions once Shutdown has begun.
var ErrShuttingDown = pkgerrors.New(pkgerrors.CodePrecondition, "commerce service is shutting down")

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// ServiceParams configures the commerce orchestrator.
type ServiceParams struct {
	Logger            *logger.Logger
	Store             statestore.Store
	Bus               bus.Bus
	Warehouse         warehouse.Client
	Metrics           *metrics.CommerceMetrics
	StakePercentage   int
	CartTTL           time.Duration
	ClearOrdersOnSync bool
}

// Service owns all ledger transitions. A single mutex serializes every
// get-transition-set cycle, so concurrent callers observe the ledger as
// if transitions ran one at a time.
type Service struct {
	logg        *logger.Logger
	store       statestore.Store
	bus         bus.Bus
	wh          warehouse.Client
	metrics     *metrics.CommerceMetrics
	stakePct    int
	cartTTL     time.Duration
	clearOrders bool

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool

	submits sync.WaitGroup
	now     func() time.Time
}

// NewService builds the orchestrator and subscribes it to the event
// bus for expiration deliveries.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("state store required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	if params.Warehouse == nil {
		return nil, fmt.Errorf("warehouse client required")
	}
	if params.StakePercentage < 0 || params.StakePercentage > 100 {
		return nil, fmt.Errorf("stake percentage must be between 0 and 100, got %d", params.StakePercentage)
	}
	if params.CartTTL <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}

	service := &Service{
		logg:        params.Logger,
		store:       params.Store,
		bus:         params.Bus,
		wh:          params.Warehouse,
		metrics:     params.Metrics,
		stakePct:    params.StakePercentage,
		cartTTL:     params.CartTTL,
		clearOrders: params.ClearOrdersOnSync,
		timers:      make(map[string]*time.Timer),
		now:         time.Now,
	}
	service.bus.Subscribe(service.handleEvent)
	return service, nil
}

// Start reschedules expiry timers for reservations that survived a
// restart. An uninitialized ledger is fine; the first sync seeds it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, statestore.ErrNotInitialized) {
			return nil
		}
		return fmt.Errorf("loading ledger: %w", err)
	}

	now := s.now()
	count := 0
	for cartID, cart := range snapshot.Carts {
		for _, item := range cart.Items {
			s.scheduleTimerLocked(cartID, item.ProductID, item.ExpiresAt.Sub(now))
			count++
		}
	}
	if count > 0 {
		logCtx := s.logg.WithField(ctx, "timers", count)
		s.logg.Info(logCtx, "rescheduled reservation expiry timers")
	}
	return nil
}

// GetAvailability reports the purchasable quantity of one product.
func (s *Service) GetAvailability(ctx context.Context, productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.Get(ctx)
	if err != nil {
		return 0, err
	}
	return commerce.Available(snapshot, productID), nil
}

// GetState returns a copy of the full ledger snapshot.
func (s *Service) GetState(ctx context.Context) (*commerce.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(ctx)
}

// AddToCart reserves quantity units of a product and starts its expiry
// timer.
func (s *Service) AddToCart(ctx context.Context, cartID, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrShuttingDown
	}

	snapshot, err := s.store.Get(ctx)
	if err != nil {
		s.metrics.IncOperation("add_to_cart", outcomeError)
		return err
	}
	next, err := commerce.AddToCart(snapshot, cartID, productID, quantity, s.cartTTL, s.now())
	if err != nil {
		s.metrics.IncOperation("add_to_cart", rejectionOutcome(err))
		return err
	}
	if err := s.store.Set(ctx, next); err != nil {
		s.metrics.IncOperation("add_to_cart", outcomeError)
		return err
	}

	s.scheduleTimerLocked(cartID, productID, s.cartTTL)
	s.metrics.IncOperation("add_to_cart", outcomeAccepted)
	s.publish(ctx, bus.KindItemAdded, bus.ItemPayload{CartID: cartID, ProductID: productID, Quantity: quantity})
	return nil
}

// RemoveFromCart releases a product's reservation. Removing something
// that is not reserved is a successful no-op.
func (s *Service) RemoveFromCart(ctx context.Context, cartID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrShuttingDown
	}

	removed, err := s.removeLocked(ctx, cartID, productID)
	if err != nil {
		s.metrics.IncOperation("remove_from_cart", outcomeError)
		return err
	}
	s.metrics.IncOperation("remove_from_cart", outcomeAccepted)
	if removed {
		s.publish(ctx, bus.KindItemRemoved, bus.ItemPayload{CartID: cartID, ProductID: productID})
	}
	return nil
}

// PurchaseCart converts a cart into an order, cancels the cart's expiry
// timers, and submits the order downstream without blocking the caller.
// An empty orderID gets a generated one; the chosen id is returned.
func (s *Service) PurchaseCart(ctx context.Context, cartID, orderID string) (string, error) {
	if orderID == "" {
		orderID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrShuttingDown
	}

	snapshot, err := s.store.Get(ctx)
	if err != nil {
		s.metrics.IncOperation("purchase_cart", outcomeError)
		return "", err
	}
	next, err := commerce.PurchaseCart(snapshot, cartID, orderID, s.now())
	if err != nil {
		s.metrics.IncOperation("purchase_cart", rejectionOutcome(err))
		return "", err
	}
	if err := s.store.Set(ctx, next); err != nil {
		s.metrics.IncOperation("purchase_cart", outcomeError)
		return "", err
	}

	for _, item := range snapshot.Carts[cartID].Items {
		s.cancelTimerLocked(cartID, item.ProductID)
	}
	s.metrics.IncOperation("purchase_cart", outcomeAccepted)
	s.publish(ctx, bus.KindOrderPlaced, bus.OrderPlacedPayload{CartID: cartID, OrderID: orderID})
	s.submitOrder(orderID)
	return orderID, nil
}

// SyncNow refreshes the catalog from the warehouse feed, scaled to the
// seller's stake. A failed fetch leaves the previous catalog in place.
func (s *Service) SyncNow(ctx context.Context) error {
	// The vendor call stays outside the ledger mutex so a slow feed
	// never blocks cart operations.
	items, err := s.wh.FetchGrossInventory(ctx)
	if err != nil {
		s.metrics.IncOperation("sync_inventory", outcomeError)
		s.publish(ctx, bus.KindSyncFailed, bus.SyncFailedPayload{Error: err.Error()})
		return fmt.Errorf("fetching warehouse inventory: %w", err)
	}
	adjusted := warehouse.AdjustForStake(items, s.stakePct)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrShuttingDown
	}

	snapshot, err := s.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, statestore.ErrNotInitialized) {
			s.metrics.IncOperation("sync_inventory", outcomeError)
			return err
		}
		snapshot = commerce.NewSnapshot()
	}
	next := commerce.SyncInventory(snapshot, adjusted, s.now(), s.clearOrders)
	if err := s.store.Set(ctx, next); err != nil {
		s.metrics.IncOperation("sync_inventory", outcomeError)
		return err
	}

	s.metrics.IncOperation("sync_inventory", outcomeAccepted)
	s.metrics.SetCatalogSize(len(adjusted))
	logCtx := s.logg.WithField(ctx, "products", len(adjusted))
	s.logg.Info(logCtx, "catalog synced from warehouse feed")
	s.publish(ctx, bus.KindCatalogSynced, bus.CatalogSyncedPayload{ProductCount: len(adjusted)})
	return nil
}

// SweepNow removes every reservation whose hold has lapsed and returns
// how many items were dropped. It backs up the per-item timers, so it
// emits no events of its own.
func (s *Service) SweepNow(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil
	}

	snapshot, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, statestore.ErrNotInitialized) {
			return 0, nil
		}
		return 0, err
	}
	next, expired := commerce.ExpireCartItems(snapshot, s.now())
	if len(expired) == 0 {
		return 0, nil
	}
	if err := s.store.Set(ctx, next); err != nil {
		return 0, err
	}

	for _, item := range expired {
		s.cancelTimerLocked(item.CartID, item.ProductID)
	}
	s.metrics.AddExpired(len(expired))
	return len(expired), nil
}

// Shutdown stops expiry timers, waits for in-flight order submissions,
// and closes the bus and store.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
	s.mu.Unlock()

	var errs error
	done := make(chan struct{})
	go func() {
		s.submits.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = multierr.Append(errs, fmt.Errorf("waiting for order submissions: %w", ctx.Err()))
	}

	if err := s.bus.Shutdown(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("bus shutdown: %w", err))
	}
	if err := s.store.Shutdown(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("store shutdown: %w", err))
	}
	return errs
}

// removeLocked applies a removal transition and reports whether the
// ledger changed. Callers hold the mutex.
func (s *Service) removeLocked(ctx context.Context, cartID, productID string) (bool, error) {
	snapshot, err := s.store.Get(ctx)
	if err != nil {
		return false, err
	}
	next := commerce.RemoveFromCart(snapshot, cartID, productID)
	if next == snapshot {
		return false, nil
	}
	if err := s.store.Set(ctx, next); err != nil {
		return false, err
	}
	s.cancelTimerLocked(cartID, productID)
	return true, nil
}

func (s *Service) submitOrder(orderID string) {
	s.submits.Add(1)
	go func() {
		defer s.submits.Done()
		ctx := s.logg.WithOrderID(context.Background(), orderID)
		if _, err := s.wh.SubmitOrder(ctx, orderID); err != nil {
			s.logg.Error(ctx, "warehouse order submission failed", err)
			return
		}
		s.logg.Info(ctx, "order submitted to warehouse")
	}()
}

func (s *Service) publish(ctx context.Context, kind bus.Kind, payload any) {
	event, err := bus.NewEvent(kind, payload)
	if err != nil {
		s.logg.Error(ctx, "encoding domain event", err)
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		logCtx := s.logg.WithField(ctx, "event_kind", kind.String())
		s.logg.Error(logCtx, "publishing domain event", err)
	}
}

// handleEvent applies item-expired deliveries from the bus. Removal is
// idempotent, so duplicate deliveries and races with the sweep are
// harmless.
func (s *Service) handleEvent(ctx context.Context, event bus.Event) {
	if event.Kind != bus.KindItemExpired {
		return
	}
	var payload bus.ItemPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		s.logg.Error(ctx, "decoding item-expired payload", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	removed, err := s.removeLocked(ctx, payload.CartID, payload.ProductID)
	if err != nil {
		s.logg.Error(ctx, "applying reservation expiry", err)
		return
	}
	if removed {
		s.metrics.AddExpired(1)
		logCtx := s.logg.WithCartID(ctx, payload.CartID)
		logCtx = s.logg.WithProductID(logCtx, payload.ProductID)
		s.logg.Info(logCtx, "reservation expired")
	}
}

func (s *Service) scheduleTimerLocked(cartID, productID string, ttl time.Duration) {
	key := timerKey(cartID, productID)
	if existing, ok := s.timers[key]; ok {
		existing.Stop()
	}
	s.timers[key] = time.AfterFunc(ttl, func() {
		s.timerFired(cartID, productID)
	})
}

func (s *Service) cancelTimerLocked(cartID, productID string) {
	key := timerKey(cartID, productID)
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

// timerFired removes the lapsed reservation right away and announces
// it afterward, so availability is restored even when the bus is down.
// Remote peers converge through handleEvent; removal there is
// idempotent, so the loopback delivery of this event is harmless.
func (s *Service) timerFired(cartID, productID string) {
	ctx := s.logg.WithCartID(context.Background(), cartID)
	ctx = s.logg.WithProductID(ctx, productID)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.timers, timerKey(cartID, productID))
	removed, err := s.removeLocked(ctx, cartID, productID)
	s.mu.Unlock()

	if err != nil {
		s.logg.Error(ctx, "applying reservation expiry", err)
		return
	}
	if !removed {
		return
	}
	s.metrics.AddExpired(1)
	s.logg.Info(ctx, "reservation expired")
	s.publish(ctx, bus.KindItemExpired, bus.ItemPayload{CartID: cartID, ProductID: productID})
}

func rejectionOutcome(err error) string {
	if coded := pkgerrors.As(err); coded != nil {
		switch coded.Code() {
		case pkgerrors.CodeValidation, pkgerrors.CodeConflict, pkgerrors.CodeStateConflict:
			return outcomeRejected
		}
	}
	return outcomeError
}

func timerKey(cartID, productID string) string {
	return cartID + ":" + productID
}
