package s3

import (
	"io"

	"github.com/stretchr/testify/mock"
)

const (
	ConnectMethod = "Connect"
	PutMethod     = "Put"
)

// Ensure MockClient implements ClientIFace
var _ ClientIFace = (*MockClient)(nil)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Connect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockClient) Put(file io.ReadSeeker, bucket string, key string) error {
	args := m.Called(file, bucket, key)
	return args.Error(0)
}
