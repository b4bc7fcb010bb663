package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"dash-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func objectChan(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		ch <- minio.ObjectInfo{Key: key}
	}
	close(ch)
	return ch
}

func TestEnsureBucketCreatesWhenMissing(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "archives").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "archives", mock.Anything).Return(nil)

	a := New(mockClient, "archives", zap.NewNop())
	require.NoError(t, a.EnsureBucket(context.Background()))
	mockClient.AssertExpectations(t)
}

func TestEnsureBucketSkipsExisting(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "archives").Return(true, nil)

	a := New(mockClient, "archives", zap.NewNop())
	require.NoError(t, a.EnsureBucket(context.Background()))
	mockClient.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadNamesAndCompresses(t *testing.T) {
	mockClient := new(mocks.Client)

	var uploaded bytes.Buffer
	mockClient.On("PutObject", mock.Anything, "archives", "ws-1/20260315T120000Z.json.gz",
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			_, err := io.Copy(&uploaded, args.Get(3).(io.Reader))
			require.NoError(t, err)
		}).
		Return(minio.UploadInfo{}, nil)

	a := New(mockClient, "archives", zap.NewNop())
	dump := Dump{
		Workspace:   "ws-1",
		TakenAt:     time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		Collections: map[string]any{"project": []string{"p1"}},
	}

	name, err := a.Upload(context.Background(), dump)
	require.NoError(t, err)
	assert.Equal(t, "ws-1/20260315T120000Z.json.gz", name)

	// The payload decompresses back to the dump
	gz, err := gzip.NewReader(&uploaded)
	require.NoError(t, err)
	var got Dump
	require.NoError(t, json.NewDecoder(gz).Decode(&got))
	assert.Equal(t, "ws-1", got.Workspace)
	assert.Contains(t, got.Collections, "project")
}

func TestPruneRemovesOldestBeyondRetention(t *testing.T) {
	mockClient := new(mocks.Client)

	keys := make([]string, 0, DefaultKeep+3)
	for i := 0; i < DefaultKeep+3; i++ {
		keys = append(keys, fmt.Sprintf("ws-1/2026%04d.json.gz", i))
	}
	mockClient.On("ListObjects", mock.Anything, "archives", mock.Anything).
		Return(objectChan(keys...))
	// The three lexicographically smallest names go
	for _, key := range keys[:3] {
		mockClient.On("RemoveObject", mock.Anything, "archives", key, mock.Anything).Return(nil)
	}

	a := New(mockClient, "archives", zap.NewNop())
	require.NoError(t, a.Prune(context.Background(), "ws-1"))
	mockClient.AssertExpectations(t)
}

func TestPruneUnderRetentionIsNoop(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("ListObjects", mock.Anything, "archives", mock.Anything).
		Return(objectChan("ws-1/a.json.gz", "ws-1/b.json.gz"))

	a := New(mockClient, "archives", zap.NewNop())
	require.NoError(t, a.Prune(context.Background(), "ws-1"))
	mockClient.AssertNotCalled(t, "RemoveObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPruneIgnoresForeignObjects(t *testing.T) {
	mockClient := new(mocks.Client)

	keys := make([]string, 0, DefaultKeep+1)
	for i := 0; i < DefaultKeep; i++ {
		keys = append(keys, fmt.Sprintf("ws-1/2026%04d.json.gz", i))
	}
	// A stray non-archive object does not count against retention
	keys = append(keys, "ws-1/readme.txt")
	mockClient.On("ListObjects", mock.Anything, "archives", mock.Anything).
		Return(objectChan(keys...))

	a := New(mockClient, "archives", zap.NewNop())
	require.NoError(t, a.Prune(context.Background(), "ws-1"))
	mockClient.AssertNotCalled(t, "RemoveObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPruneListErrorPropagates(t *testing.T) {
	mockClient := new(mocks.Client)
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Err: errors.New("listing failed")}
	close(ch)
	mockClient.On("ListObjects", mock.Anything, "archives", mock.Anything).
		Return((<-chan minio.ObjectInfo)(ch))

	a := New(mockClient, "archives", zap.NewNop())
	assert.Error(t, a.Prune(context.Background(), "ws-1"))
}
