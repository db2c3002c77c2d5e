package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"taskapi/internal/model"
	"taskapi/internal/service"
)

type MockInvocationService struct {
	mock.Mock
}

func (m *MockInvocationService) Invoke(ctx context.Context, component, operation string, payload any) (*service.InvokeResult, error) {
	args := m.Called(ctx, component, operation, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvokeResult), args.Error(1)
}

func (m *MockInvocationService) List(ctx context.Context, limit, offset int) (*service.InvocationListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvocationListResult), args.Error(1)
}

func (m *MockInvocationService) Get(ctx context.Context, id string) (*model.Invocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invocation), args.Error(1)
}

func (m *MockInvocationService) ArchiveURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockInvocationService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
