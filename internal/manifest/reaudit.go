package manifest

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Reauditor periodically re-evaluates every discovered plugin's
// permissions hash against its stored approval record and reports which
// plugins have gone stale (permissions changed since approval) so they
// can be pushed back into the pending-approval queue.
type Reauditor struct {
	dirs    []string
	store   *ApprovalStore
	logger  *slog.Logger
	cron    *cron.Cron
	onStale func(pluginID string)
}

// NewReauditor builds a Reauditor. onStale is called once per plugin id
// found to have a mismatched or missing approval on each audit pass.
func NewReauditor(dirs []string, store *ApprovalStore, logger *slog.Logger, onStale func(pluginID string)) *Reauditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reauditor{
		dirs:    dirs,
		store:   store,
		logger:  logger.With("component", "manifest.reauditor"),
		cron:    cron.New(),
		onStale: onStale,
	}
}

// Start schedules the audit pass on the given cron expression and
// begins running it. An empty expression leaves the reauditor idle.
func (r *Reauditor) Start(expr string) error {
	if expr == "" {
		return nil
	}
	if _, err := r.cron.AddFunc(expr, r.auditOnce); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the scheduled audit pass and waits for any in-flight run
// to finish.
func (r *Reauditor) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reauditor) auditOnce() {
	plugins, err := Discover(r.dirs)
	if err != nil {
		r.logger.Warn("reaudit: discover failed", "error", err)
		return
	}

	for _, p := range plugins {
		approved, err := r.store.IsApproved(p.Manifest.ID, p.PermissionsHash)
		if err != nil {
			r.logger.Warn("reaudit: approval lookup failed", "plugin_id", p.Manifest.ID, "error", err)
			continue
		}
		if !approved {
			r.logger.Info("reaudit: plugin requires re-approval", "plugin_id", p.Manifest.ID)
			if r.onStale != nil {
				r.onStale(p.Manifest.ID)
			}
		}
	}
}
