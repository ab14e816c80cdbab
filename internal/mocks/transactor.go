package mocks

import (
	"context"

	"github.com/taskhive/taskhive-api/internal/store"
)

// MockTransactor implements store.Transactor by running the function with a
// nil transaction. Stores under test return themselves from WithTx, so no
// real transaction is needed.
type MockTransactor struct {
	InTxFn func(ctx context.Context, fn store.TxFn) error
}

var _ store.Transactor = (*MockTransactor)(nil)

// InTx implements store.Transactor.
func (m *MockTransactor) InTx(ctx context.Context, fn store.TxFn) error {
	if m.InTxFn != nil {
		return m.InTxFn(ctx, fn)
	}
	return fn(ctx, nil)
}
