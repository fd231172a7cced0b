package application

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompensatingUnitOfWork_UndoesInReverseOnFailure(t *testing.T) {
	var buf bytes.Buffer
	uow := compensatingUnitOfWork{logger: slog.New(slog.NewJSONHandler(&buf, nil))}
	var undone []string
	boom := errors.New("boom")

	err := uow.RunInTx(context.Background(), func(ctx context.Context) error {
		onRollback(ctx, "first", func(context.Context) error {
			undone = append(undone, "first")
			return nil
		})
		onRollback(ctx, "second", func(context.Context) error {
			undone = append(undone, "second")
			return errors.New("stuck")
		})
		return boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"second", "first"}, undone)
	require.Contains(t, buf.String(), `"step":"second"`)
}

func TestCompensatingUnitOfWork_SuccessKeepsWork(t *testing.T) {
	uow := compensatingUnitOfWork{logger: slog.Default()}
	called := false

	err := uow.RunInTx(context.Background(), func(ctx context.Context) error {
		onRollback(ctx, "never", func(context.Context) error {
			called = true
			return nil
		})
		return nil
	})

	require.NoError(t, err)
	require.False(t, called)
}

func TestCompensatingUnitOfWork_NestedCallSharesOuterLog(t *testing.T) {
	uow := compensatingUnitOfWork{logger: slog.Default()}
	undone := 0

	err := uow.RunInTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, uow.RunInTx(ctx, func(ctx context.Context) error {
			onRollback(ctx, "inner", func(context.Context) error {
				undone++
				return nil
			})
			return nil
		}))
		return errors.New("outer failed")
	})

	require.Error(t, err)
	require.Equal(t, 1, undone)
}

func TestOnRollback_OutsideUnitOfWorkIsIgnored(t *testing.T) {
	require.NotPanics(t, func() {
		onRollback(context.Background(), "orphan", func(context.Context) error { return nil })
	})
}
