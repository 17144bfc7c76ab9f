package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/williamokano/docdeploy/pkg/storage"
)

// MockBackend is a testify mock of storage.Backend
type MockBackend struct {
	mock.Mock
}

var _ storage.Backend = (*MockBackend)(nil)

// NewMockBackend creates a mock whose expectations are asserted on test cleanup
func NewMockBackend(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBackend {
	m := &MockBackend{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockBackend) Name() string {
	return m.Called().String(0)
}

func (m *MockBackend) Type() string {
	return m.Called().String(0)
}

func (m *MockBackend) Write(ctx context.Context, sourcePath string, destPath string) error {
	return m.Called(ctx, sourcePath, destPath).Error(0)
}

func (m *MockBackend) Delete(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockBackend) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	ret := m.Called(ctx, prefix)

	var files []storage.FileInfo
	if v := ret.Get(0); v != nil {
		files = v.([]storage.FileInfo)
	}
	return files, ret.Error(1)
}

func (m *MockBackend) Stat(ctx context.Context, path string) (*storage.FileInfo, error) {
	ret := m.Called(ctx, path)

	var info *storage.FileInfo
	if v := ret.Get(0); v != nil {
		info = v.(*storage.FileInfo)
	}
	return info, ret.Error(1)
}

func (m *MockBackend) Exists(ctx context.Context, path string) (bool, error) {
	ret := m.Called(ctx, path)
	return ret.Bool(0), ret.Error(1)
}

func (m *MockBackend) Close() error {
	return m.Called().Error(0)
}
