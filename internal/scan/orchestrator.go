package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plantarium-platform/compose-datasources/internal/compose"
	"github.com/plantarium-platform/compose-datasources/internal/inference"
	"github.com/plantarium-platform/compose-datasources/internal/registry"
	"go.uber.org/zap"
)

// Reconciler writes the inferred databases of one compose file.
type Reconciler interface {
	Reconcile(ctx context.Context, scope string, databases []inference.ConnectionInfo, source string) registry.Outcome
}

// Report summarises a scan pass.
type Report struct {
	Files     int              // Compose files processed
	Failed    int              // Files that could not be read or parsed
	Databases int              // Databases inferred across all files
	Outcome   registry.Outcome // Aggregated reconciliation outcome
}

// OrchestratorInterface defines the entry points that drive the detection pipeline.
type OrchestratorInterface interface {
	StartupScan(ctx context.Context) Report
	HandleEvent(ctx context.Context, event FileEvent) (Report, bool)
	Run(ctx context.Context, events <-chan FileEvent)
}

// Orchestrator runs discovery, parsing, inference and reconciliation for one project.
type Orchestrator struct {
	Root       string
	Scope      string
	MaxDepth   int
	Reconciler Reconciler
	logger     *zap.Logger
}

// NewOrchestrator creates a new instance of Orchestrator. A non-positive
// maxDepth falls back to DefaultMaxDepth.
func NewOrchestrator(root, scope string, maxDepth int, reconciler Reconciler, logger *zap.Logger) *Orchestrator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		Root:       filepath.Clean(root),
		Scope:      scope,
		MaxDepth:   maxDepth,
		Reconciler: reconciler,
		logger:     logger,
	}
}

// StartupScan discovers every compose file within the depth bound and
// processes them one by one. A failing file never stops its siblings.
func (o *Orchestrator) StartupScan(ctx context.Context) Report {
	o.logger.Info("Starting compose file scan", zap.String("root", o.Root), zap.Int("max_depth", o.MaxDepth))

	var report Report
	for _, path := range Discover(o.Root, o.MaxDepth, o.logger) {
		if ctx.Err() != nil {
			o.logger.Info("Compose file scan cancelled", zap.Int("processed", report.Files))
			break
		}
		report = report.merge(o.processFile(ctx, path))
	}

	o.logger.Info("Compose file scan finished",
		zap.Int("files", report.Files),
		zap.Int("failed", report.Failed),
		zap.Int("databases", report.Databases),
		zap.Int("written", report.Outcome.Succeeded()))
	return report
}

// HandleEvent runs a single file cycle for a create or write event of a
// compose file within the depth bound. It reports whether the event was handled.
func (o *Orchestrator) HandleEvent(ctx context.Context, event FileEvent) (Report, bool) {
	if event.Op != FileOpCreate && event.Op != FileOpWrite {
		return Report{}, false
	}

	path := event.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(o.Root, path)
	}
	if !WithinBound(o.Root, path, o.MaxDepth) {
		return Report{}, false
	}

	o.logger.Debug("Compose file changed", zap.String("path", path), zap.Stringer("op", event.Op))
	return o.processFile(ctx, path), true
}

// Run handles events until the channel is closed or ctx is done.
func (o *Orchestrator) Run(ctx context.Context, events <-chan FileEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			o.HandleEvent(ctx, event)
		}
	}
}

// Inspect parses a compose file and returns the databases it defines without
// writing anything.
func (o *Orchestrator) Inspect(path string) ([]inference.ConnectionInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open compose file: %w", err)
	}
	defer file.Close()

	doc, err := compose.ParseReader(o.source(path), file)
	if err != nil {
		return nil, err
	}
	return inference.ExtractConnections(doc), nil
}

// processFile runs parse, inference and reconcile for one compose file.
func (o *Orchestrator) processFile(ctx context.Context, path string) Report {
	report := Report{Files: 1}
	source := o.source(path)

	databases, err := o.Inspect(path)
	if err != nil {
		report.Failed = 1
		o.logger.Warn("Skipping compose file", zap.String("file", source), zap.Error(err))
		return report
	}

	for _, db := range databases {
		o.logger.Info("Found database service",
			zap.String("file", source),
			zap.String("service", db.ServiceName),
			zap.Stringer("engine", db.Engine),
			zap.Int("port", db.Port))
	}

	report.Databases = len(databases)
	if len(databases) == 0 {
		o.logger.Debug("No database services in compose file", zap.String("file", source))
		return report
	}

	report.Outcome = o.Reconciler.Reconcile(ctx, o.Scope, databases, source)
	return report
}

// source returns the slash separated path of a file relative to the root.
func (o *Orchestrator) source(path string) string {
	rel, err := filepath.Rel(o.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (r Report) merge(other Report) Report {
	return Report{
		Files:     r.Files + other.Files,
		Failed:    r.Failed + other.Failed,
		Databases: r.Databases + other.Databases,
		Outcome:   r.Outcome.Add(other.Outcome),
	}
}
