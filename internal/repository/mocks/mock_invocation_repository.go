package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"taskapi/internal/model"
	"taskapi/internal/repository"
)

type MockInvocationRepository struct {
	mock.Mock
}

func (m *MockInvocationRepository) Create(ctx context.Context, inv *model.Invocation) (*model.Invocation, error) {
	args := m.Called(ctx, inv)
	if f, ok := args.Get(0).(func(context.Context, *model.Invocation) *model.Invocation); ok {
		return f(ctx, inv), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invocation), args.Error(1)
}

func (m *MockInvocationRepository) FindByID(ctx context.Context, id string) (*model.Invocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invocation), args.Error(1)
}

func (m *MockInvocationRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Invocation], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Invocation]), args.Error(1)
}

func (m *MockInvocationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
