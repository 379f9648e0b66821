// Package mockstorage provides a testify-based mock of the database the
// schema initializer executes statements against.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// StorageMock is a testify mock of the statement executor.
//
// Use it in initializer tests to simulate database behavior.
type StorageMock struct {
	mock.Mock

	// OnExecInTransaction is an optional function field that can be assigned
	// to define custom mock behavior for ExecInTransaction in tests.
	//
	// If set, ExecInTransaction will delegate to this function instead of
	// using testify's generic mock handler.
	OnExecInTransaction func(ctx context.Context, statement string) error
}

// ExecInTransaction mocks executing a single statement in its own transaction.
func (m *StorageMock) ExecInTransaction(ctx context.Context, statement string) error {
	if m.OnExecInTransaction != nil {
		return m.OnExecInTransaction(ctx, statement)
	}
	args := m.Called(ctx, statement)
	return args.Error(0)
}
