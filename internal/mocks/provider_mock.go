package mocks

import (
	"context"

	"storybook-ai/backend/internal/credentials"
	"storybook-ai/backend/internal/provider"

	"github.com/stretchr/testify/mock"
)

// MockFactory is a mock type for the provider.Factory type
type MockFactory struct {
	mock.Mock
}

// Completion provides a mock function with given fields: creds
func (_m *MockFactory) Completion(creds credentials.Credentials) provider.Completion {
	ret := _m.Called(creds)

	var r0 provider.Completion
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(provider.Completion)
	}
	return r0
}

// Image provides a mock function with given fields: creds
func (_m *MockFactory) Image(creds credentials.Credentials) provider.ImageGenerator {
	ret := _m.Called(creds)

	var r0 provider.ImageGenerator
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(provider.ImageGenerator)
	}
	return r0
}

// Speech provides a mock function with given fields: name, creds
func (_m *MockFactory) Speech(name string, creds credentials.Credentials) (provider.Speech, error) {
	ret := _m.Called(name, creds)

	var r0 provider.Speech
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(provider.Speech)
	}
	return r0, ret.Error(1)
}

// NewMockFactory creates a new instance of MockFactory. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockFactory(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFactory {
	m := &MockFactory{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockCompletion is a mock type for the provider.Completion type
type MockCompletion struct {
	mock.Mock
}

// CompleteStructured provides a mock function with given fields: ctx, req
func (_m *MockCompletion) CompleteStructured(ctx context.Context, req provider.CompletionRequest) ([]byte, error) {
	ret := _m.Called(ctx, req)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, provider.CompletionRequest) []byte); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0, ret.Error(1)
}

// CompleteText provides a mock function with given fields: ctx, req
func (_m *MockCompletion) CompleteText(ctx context.Context, req provider.CompletionRequest) (string, error) {
	ret := _m.Called(ctx, req)
	return ret.String(0), ret.Error(1)
}

// NewMockCompletion creates a new instance of MockCompletion. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockCompletion(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCompletion {
	m := &MockCompletion{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockImageGenerator is a mock type for the provider.ImageGenerator type
type MockImageGenerator struct {
	mock.Mock
}

// GenerateImage provides a mock function with given fields: ctx, req
func (_m *MockImageGenerator) GenerateImage(ctx context.Context, req provider.ImageRequest) (*provider.Image, error) {
	ret := _m.Called(ctx, req)

	var r0 *provider.Image
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*provider.Image)
	}
	return r0, ret.Error(1)
}

// NewMockImageGenerator creates a new instance of MockImageGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockImageGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockImageGenerator {
	m := &MockImageGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockSpeech is a mock type for the provider.Speech type
type MockSpeech struct {
	mock.Mock
}

// Synthesize provides a mock function with given fields: ctx, req
func (_m *MockSpeech) Synthesize(ctx context.Context, req provider.SpeechRequest) ([]byte, error) {
	ret := _m.Called(ctx, req)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0, ret.Error(1)
}

// NewMockSpeech creates a new instance of MockSpeech. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockSpeech(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSpeech {
	m := &MockSpeech{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var (
	_ provider.Factory        = (*MockFactory)(nil)
	_ provider.Completion     = (*MockCompletion)(nil)
	_ provider.ImageGenerator = (*MockImageGenerator)(nil)
	_ provider.Speech         = (*MockSpeech)(nil)
)
