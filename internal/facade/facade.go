// Package facade wires every backoffice service together. One Facade is
// built at process start and handed to the HTTP layer.
package facade

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/wondertwin-ai/backoffice/internal/audit"
	"github.com/wondertwin-ai/backoffice/internal/banking"
	"github.com/wondertwin-ai/backoffice/internal/crud"
	"github.com/wondertwin-ai/backoffice/internal/email"
	"github.com/wondertwin-ai/backoffice/internal/metrics"
	"github.com/wondertwin-ai/backoffice/internal/notifications"
	"github.com/wondertwin-ai/backoffice/internal/realtime"
	"github.com/wondertwin-ai/backoffice/internal/storage"
	"github.com/wondertwin-ai/backoffice/internal/webhooks"
	"github.com/wondertwin-ai/backoffice/pkg/store"
)

// Config configures the services.
type Config struct {
	RealtimeBuffer int
	Email          email.Config
	Banking        banking.Config
}

// Facade aggregates the services. Its fields are set once by New.
type Facade struct {
	Clock         *store.Clock
	Metrics       *metrics.Metrics
	CRUD          *crud.Registry
	Realtime      *realtime.Bus
	Email         *email.Service
	Banking       *banking.Service
	Storage       *storage.Service
	Notifications *notifications.Service
	Audit         *audit.Service
	Webhooks      *webhooks.Service

	logger *zap.Logger
}

// New builds every service on a shared simulated clock and a fresh metrics
// registry.
func New(cfg Config, logger *zap.Logger) *Facade {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := store.NewClock()
	m := metrics.New()
	bus := realtime.NewBus(cfg.RealtimeBuffer, clock, logger.Named("realtime"), m)
	return &Facade{
		Clock:         clock,
		Metrics:       m,
		CRUD:          crud.NewRegistry(clock),
		Realtime:      bus,
		Email:         email.New(cfg.Email, clock),
		Banking:       banking.New(cfg.Banking, clock),
		Storage:       storage.New(clock),
		Notifications: notifications.New(clock, bus),
		Audit:         audit.New(clock),
		Webhooks:      webhooks.New(clock),
		logger:        logger,
	}
}

// ServiceNames lists the services reported by the health endpoint.
func (f *Facade) ServiceNames() []string {
	return []string{"crud", "realtime", "email", "banking", "storage", "notifications", "audit", "webhooks"}
}

// state is the JSON-serializable state for the admin endpoints.
type state struct {
	Resources     map[string][]crud.Entity     `json:"resources"`
	Realtime      []realtime.Event             `json:"realtime"`
	Email         []email.Message              `json:"email"`
	Banking       banking.State                `json:"banking"`
	Storage       []storage.File               `json:"storage"`
	Notifications []notifications.Notification `json:"notifications"`
	Audit         []audit.Event                `json:"audit"`
	Webhooks      []webhooks.Event             `json:"webhooks"`
}

// Snapshot returns the full state as a JSON-serializable value.
func (f *Facade) Snapshot() any {
	return state{
		Resources:     f.CRUD.Snapshot(),
		Realtime:      f.Realtime.ListRecent(""),
		Email:         f.Email.Snapshot(),
		Banking:       f.Banking.Snapshot(),
		Storage:       f.Storage.Snapshot(),
		Notifications: f.Notifications.Snapshot(),
		Audit:         f.Audit.Snapshot(),
		Webhooks:      f.Webhooks.Snapshot(),
	}
}

// LoadState replaces the full state from a JSON body. CRUD resources absent
// from the body keep their contents; every other service is replaced.
func (f *Facade) LoadState(data []byte) error {
	var snap state
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	if err := f.CRUD.Load(snap.Resources); err != nil {
		return fmt.Errorf("load resources: %w", err)
	}
	f.Realtime.Load(snap.Realtime)
	f.Email.Load(snap.Email)
	f.Banking.Load(snap.Banking)
	f.Storage.Load(snap.Storage)
	f.Notifications.Load(snap.Notifications)
	f.Audit.Load(snap.Audit)
	f.Webhooks.Load(snap.Webhooks)
	return nil
}

// Reset clears every service. The clock is left to the caller.
func (f *Facade) Reset() {
	f.CRUD.Reset()
	f.Realtime.Reset()
	f.Email.Reset()
	f.Banking.Reset()
	f.Storage.Reset()
	f.Notifications.Reset()
	f.Audit.Reset()
	f.Webhooks.Reset()
}

// Seed loads fixture entities into the CRUD registry.
func (f *Facade) Seed(resources map[string][]map[string]any) error {
	for name, rows := range resources {
		svc, err := f.CRUD.Resource(name)
		if err != nil {
			return fmt.Errorf("seed %q: %w", name, err)
		}
		for _, fields := range rows {
			svc.Create(fields)
		}
		f.logger.Info("seeded resource", zap.String("resource", name), zap.Int("count", len(rows)))
	}
	return nil
}

// Close stops realtime delivery.
func (f *Facade) Close() {
	f.Realtime.Close()
}
