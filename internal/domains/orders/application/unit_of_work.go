package application

import (
	"context"
	"log/slog"
)

type undoKey struct{}

// undoLog collects compensating steps registered while a unit of work runs.
type undoLog struct {
	steps []undoStep
}

type undoStep struct {
	name string
	fn   func(ctx context.Context) error
}

// onRollback registers fn to run if the enclosing unit of work fails. Transactional
// units of work never install an undo log, so the call is a no-op there.
func onRollback(ctx context.Context, name string, fn func(ctx context.Context) error) {
	if log, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		log.steps = append(log.steps, undoStep{name: name, fn: fn})
	}
}

// compensatingUnitOfWork backs stores that cannot roll back, such as the in-memory
// adapters. A failed callback has its registered steps undone in reverse order.
type compensatingUnitOfWork struct {
	logger *slog.Logger
}

func (u compensatingUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(undoKey{}).(*undoLog); nested {
		return fn(ctx)
	}
	log := &undoLog{}
	err := fn(context.WithValue(ctx, undoKey{}, log))
	if err == nil {
		return nil
	}
	undoCtx := context.WithoutCancel(ctx)
	for i := len(log.steps) - 1; i >= 0; i-- {
		step := log.steps[i]
		if undoErr := step.fn(undoCtx); undoErr != nil {
			u.logger.LogAttrs(ctx, slog.LevelError, "compensation failed",
				slog.String("step", step.name),
				slog.String("error", undoErr.Error()))
		}
	}
	return err
}
