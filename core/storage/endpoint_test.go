package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		useSSL   bool
		host     string
		secure   bool
	}{
		{"localhost:9000", false, "localhost:9000", false},
		{"localhost:9000", true, "localhost:9000", true},
		{"http://minio:9000", false, "minio:9000", false},
		{"https://s3.amazonaws.com", false, "s3.amazonaws.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			host, secure := splitEndpoint(tt.endpoint, tt.useSSL)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.secure, secure)
		})
	}
}
