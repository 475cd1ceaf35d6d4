package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/plantarium-platform/compose-datasources/internal/inference"
	"github.com/plantarium-platform/compose-datasources/pkg/models"
	"go.uber.org/zap"
)

const (
	// NamePrefix is prepended to the service name to form the record name.
	NamePrefix = "Docker: "

	// NotificationTitle is used for the aggregate success notification.
	NotificationTitle = "Docker Compose Data Sources"

	generatedNamePrefix = "(generated) "
)

// Outcome counts the results of one reconciliation batch.
type Outcome struct {
	Created int // Records created without a predecessor
	Updated int // Records that replaced at least one existing record
	Failed  int // Entries the store rejected
}

// Succeeded returns the number of records written.
func (o Outcome) Succeeded() int {
	return o.Created + o.Updated
}

// Add returns the sum of both outcomes.
func (o Outcome) Add(other Outcome) Outcome {
	return Outcome{
		Created: o.Created + other.Created,
		Updated: o.Updated + other.Updated,
		Failed:  o.Failed + other.Failed,
	}
}

// RegisterRequest describes a single connection record to create or replace.
type RegisterRequest struct {
	Driver   string // Driver identifier, e.g. postgresql
	URL      string // Connection URL
	Username string
	Password string
	Name     string // Optional, defaults to "(generated) <url>"
	Comment  string // Optional
}

// RecordName returns the canonical record name for a compose service.
func RecordName(serviceName string) string {
	return NamePrefix + serviceName
}

// RecordComment describes where an auto-created record comes from.
func RecordComment(source string, info inference.ConnectionInfo) string {
	return fmt.Sprintf("Auto-created from %s (%s service: %s)", source, info.Engine, info.ServiceName)
}

// Reconciler keeps connection records in line with the inferred databases.
//
// Records are matched by name or URL and replaced, never duplicated. Edits of
// the same scope are serialized. Driver preparation runs in the background and
// is cancelled by Close.
type Reconciler struct {
	store      Store
	secrets    SecretSink
	transactor Transactor
	notifier   Notifier
	drivers    DriverPreparer
	logger     *zap.Logger
	middleware ScopeMiddleware

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewReconciler creates a Reconciler. notifier and drivers may be nil. When
// store implements Transactor, the edits of each record share one transaction.
func NewReconciler(store Store, secrets SecretSink, notifier Notifier, drivers DriverPreparer, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	transactor, _ := store.(Transactor)
	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		store:      store,
		secrets:    secrets,
		transactor: transactor,
		notifier:   notifier,
		drivers:    drivers,
		logger:     logger,
		middleware: NewScopeMiddleware(NewScopeLocks(), logger),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Reconcile creates or replaces one record per inferred database.
//
// A failing entry is logged and counted, the remaining entries are still
// processed. Nothing is retried.
func (r *Reconciler) Reconcile(ctx context.Context, scope string, databases []inference.ConnectionInfo, source string) Outcome {
	var outcome Outcome
	if len(databases) == 0 {
		return outcome
	}

	drivers := make(map[string]struct{})
	for _, db := range databases {
		record := models.ConnectionRecord{
			Name:     RecordName(db.ServiceName),
			URL:      db.JDBCURL(),
			Driver:   db.DriverName(),
			Username: db.Username,
			Comment:  RecordComment(source, db),
			AutoSync: true,
		}

		replaced, err := r.apply(ctx, scope, record, db.Password)
		if err != nil {
			outcome.Failed++
			r.logger.Warn("Failed to create data source",
				zap.String("service", db.ServiceName),
				zap.String("scope", scope),
				zap.Error(err))
			continue
		}

		if replaced > 0 {
			outcome.Updated++
		} else {
			outcome.Created++
		}
		drivers[record.Driver] = struct{}{}
		r.logger.Info("Data source written",
			zap.String("name", record.Name),
			zap.String("url", record.URL),
			zap.Int("replaced", replaced))
	}

	for driverID := range drivers {
		r.prepareDriver(driverID)
	}

	if outcome.Succeeded() > 0 {
		r.notify(ctx, fmt.Sprintf("Created/updated %d data source(s) from %s", outcome.Succeeded(), source))
	}
	return outcome
}

// Register creates or replaces a single record. It reports whether an existing
// record was replaced.
func (r *Reconciler) Register(ctx context.Context, scope string, req RegisterRequest) (bool, error) {
	if req.Driver == "" {
		return false, fmt.Errorf("driver must not be empty")
	}
	if req.URL == "" {
		return false, fmt.Errorf("connection URL must not be empty")
	}

	name := req.Name
	if name == "" {
		name = generatedNamePrefix + req.URL
	}

	record := models.ConnectionRecord{
		Name:     name,
		URL:      req.URL,
		Driver:   req.Driver,
		Username: req.Username,
		Comment:  req.Comment,
		AutoSync: true,
	}

	replaced, err := r.apply(ctx, scope, record, req.Password)
	if err != nil {
		return false, err
	}
	r.prepareDriver(record.Driver)
	return replaced > 0, nil
}

// Close cancels pending driver preparation and waits for it to stop.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

// apply removes every record sharing the name or URL of record, then adds it
// and stores its password. It returns the number of removed records.
func (r *Reconciler) apply(ctx context.Context, scope string, record models.ConnectionRecord, password string) (int, error) {
	replaced := 0
	err := r.middleware(scope, func() error {
		if r.transactor == nil {
			var err error
			replaced, err = write(ctx, r.store, r.secrets, scope, record, password)
			return err
		}
		return r.transactor.InTransaction(ctx, scope, func(store Store, secrets SecretSink) error {
			var err error
			replaced, err = write(ctx, store, secrets, scope, record, password)
			return err
		})
	})()
	if err != nil {
		return 0, err
	}
	return replaced, nil
}

func write(ctx context.Context, store Store, secrets SecretSink, scope string, record models.ConnectionRecord, password string) (int, error) {
	existing, err := store.ListRecords(ctx, scope)
	if err != nil {
		return 0, &WriteError{Op: "list", Name: record.Name, Err: err}
	}

	replaced := 0
	for _, old := range existing {
		if old.Name != record.Name && old.URL != record.URL {
			continue
		}
		if err := store.RemoveRecord(ctx, scope, old.Name); err != nil {
			return replaced, &WriteError{Op: "remove", Name: old.Name, Err: err}
		}
		replaced++
	}

	record.CreatedAt = time.Now()
	if err := store.AddRecord(ctx, scope, record); err != nil {
		return replaced, &WriteError{Op: "add", Name: record.Name, Err: err}
	}

	if err := secrets.StorePassword(ctx, scope, record.Name, password); err != nil {
		return replaced, &WriteError{Op: "store-password", Name: record.Name, Err: err}
	}
	return replaced, nil
}

func (r *Reconciler) prepareDriver(driverID string) {
	if r.drivers == nil || driverID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		err := r.drivers.PrepareDriver(r.ctx, driverID)
		if err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Warn("Failed to prepare database driver", zap.String("driver", driverID), zap.Error(err))
		}
	}()
}

func (r *Reconciler) notify(ctx context.Context, message string) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(ctx, NotificationTitle, message, models.SeverityInfo); err != nil {
		r.logger.Warn("Failed to send notification", zap.Error(err))
	}
}
