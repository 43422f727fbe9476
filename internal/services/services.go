// Package services implements the marketplace workflows. Every operation
// takes the request caller explicitly and returns *apperr.Error on failure.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/internal/apperr"
	"github.com/diewo77/go-lessons/internal/config"
	"github.com/diewo77/go-lessons/internal/metrics"
)

// maxPageSize caps the limit a caller may request on any list.
const maxPageSize = 100

// Options holds the workflow policies shared by all services.
type Options struct {
	RequireVerifiedInstructor bool
	ResetVerificationOnEdit   bool
	AvailableSlotsLimit       int
	MaxUploadBytes            int64
	Now                       func() time.Time
	Location                  *time.Location
	Metrics                   metrics.Recorder
}

// OptionsFromConfig maps the loaded configuration to service options.
func OptionsFromConfig(cfg *config.Config, rec metrics.Recorder) Options {
	return Options{
		RequireVerifiedInstructor: cfg.Workflow.RequireVerifiedInstructor,
		ResetVerificationOnEdit:   cfg.Workflow.ResetVerificationOnEdit,
		AvailableSlotsLimit:       cfg.Workflow.AvailableSlotsLimit,
		MaxUploadBytes:            cfg.Storage.MaxUploadBytes,
		Location:                  cfg.App.Location(),
		Metrics:                   rec,
	}
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Metrics == nil {
		o.Metrics = metrics.Nop{}
	}
	if o.AvailableSlotsLimit <= 0 {
		o.AvailableSlotsLimit = 20
	}
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 5 << 20
	}
	return o
}

// now returns the current time in UTC, the zone every timestamp is stored in.
func (o Options) now() time.Time {
	return o.Now().UTC()
}

// authorize runs the gate and converts its denials to service errors.
func authorize(ctx context.Context, g *gate.Gate[auth.Caller], c auth.Caller, action gate.Action, resourceType string, resource any) error {
	err := g.Authorize(ctx, c, action, resourceType, resource)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gate.ErrUnauthenticated):
		return apperr.Unauthenticated()
	default:
		return apperr.Forbidden()
	}
}

// clampLimit applies the default page size and caps it.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
