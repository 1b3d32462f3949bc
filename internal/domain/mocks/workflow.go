// Package mocks provides testify mocks of the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"treejson.dev/pkg/treejson/internal/domain"
)

// MockWorkflow is a mock implementation of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

// NewMockWorkflow creates a MockWorkflow whose expectations are asserted
// when the test finishes.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	m := &MockWorkflow{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Render provides a mock function.
func (m *MockWorkflow) Render(ctx context.Context, args domain.RenderArgs) error {
	return m.Called(ctx, args).Error(0)
}

// Convert provides a mock function.
func (m *MockWorkflow) Convert(ctx context.Context, args domain.ConvertArgs) error {
	return m.Called(ctx, args).Error(0)
}

// Check provides a mock function.
func (m *MockWorkflow) Check(ctx context.Context, args domain.CheckArgs) error {
	return m.Called(ctx, args).Error(0)
}

// Mappings provides a mock function.
func (m *MockWorkflow) Mappings(ctx context.Context, args domain.MappingsArgs) error {
	return m.Called(ctx, args).Error(0)
}

// View provides a mock function.
func (m *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	return m.Called(ctx, args).Error(0)
}

var _ domain.Workflow = (*MockWorkflow)(nil)
