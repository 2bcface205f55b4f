package storage_test

import (
	"context"
	"errors"
	"testing"

	"gridsync/core/storage"
	"gridsync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "snapshots",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "snapshots").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "snapshots", ""))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "snapshots").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "snapshots", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "snapshots", "eu-west-1"))
		client.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "snapshots").Return(false, errors.New("denied"))

		err := storage.EnsureBucket(ctx, client, "snapshots", "")
		assert.ErrorContains(t, err, "denied")
	})
}

func TestOpen_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := storage.Open(ctx, storage.Config{
		Endpoint:       "localhost:1",
		AccessKey:      "testkey",
		SecretKey:      "testsecret",
		Bucket:         "snapshots",
		TimeoutSeconds: 1,
	})
	assert.ErrorContains(t, err, "failed to check bucket snapshots")
}
