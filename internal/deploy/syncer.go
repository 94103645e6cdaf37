package deploy

import (
	"context"
	"errors"

	"github.com/dojocodes/dojo-deploy/internal/dojo"
	"go.uber.org/zap"
)

// API is the part of the dojo client the syncer needs.
type API interface {
	Exists(ctx context.Context, kind dojo.Kind, id string) (bool, error)
	Create(ctx context.Context, kind dojo.Kind, id string, body any) (dojo.Response, error)
	Update(ctx context.Context, kind dojo.Kind, id string, body any) (dojo.Response, error)
}

type Options struct {
	// DryRun probes existence but sends no mutation.
	DryRun bool
	// KeepGoing records failures and moves on to the next entity.
	KeepGoing bool
}

// Syncer pushes entities to the API one at a time, in the order given.
type Syncer struct {
	api     API
	logger  *zap.Logger
	options Options
}

func New(api API, logger *zap.Logger, options Options) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{api: api, logger: logger, options: options}
}

// Sync creates or updates every selected entity. Without KeepGoing it stops
// at the first failure; with it, the returned error joins every failure.
func (s *Syncer) Sync(ctx context.Context, entities []dojo.Entity) (Summary, error) {
	var (
		summary Summary
		errs    []error
	)
	for _, entity := range entities {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := s.syncOne(ctx, entity)
		summary.Results = append(summary.Results, result)
		if result.Err != nil {
			if !s.options.KeepGoing {
				return summary, result.Err
			}
			errs = append(errs, result.Err)
		}
	}
	return summary, errors.Join(errs...)
}

func (s *Syncer) syncOne(ctx context.Context, entity dojo.Entity) Result {
	kind, id := entity.Kind(), entity.Identifier()
	result := Result{Kind: kind, ID: id}
	logger := s.logger.With(zap.Stringer("kind", kind), zap.String("id", id))

	fail := func(err error) Result {
		logger.Error("sync failed", zap.Error(err))
		result.Outcome = Failed
		result.Err = err
		return result
	}

	if err := dojo.ValidateID(kind, id); err != nil {
		return fail(err)
	}

	exists, err := s.api.Exists(ctx, kind, id)
	if err != nil {
		return fail(err)
	}
	op := dojo.Create
	if exists {
		op = dojo.Update
		logger.Info("already exists, updating existing one")
	} else {
		logger.Info("not found, creating new one")
	}
	result.Operation = op

	if err := entity.Validate(op); err != nil {
		return fail(err)
	}
	body := entity.Body(op)
	logger.Debug("sending payload", zap.Stringer("operation", op), zap.Any("payload", body))

	if s.options.DryRun {
		result.Outcome = Planned
		logger.Info("dry run, nothing sent", zap.Stringer("operation", op))
		return result
	}

	var resp dojo.Response
	if op == dojo.Update {
		resp, err = s.api.Update(ctx, kind, id, body)
	} else {
		resp, err = s.api.Create(ctx, kind, id, body)
	}
	if err != nil {
		return fail(err)
	}

	result.Outcome = Synced
	logger.Info("synced", zap.Stringer("operation", op))
	logger.Debug("api response", zap.Any("response", resp))
	return result
}
