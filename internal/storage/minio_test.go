package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
)

func newTestMinIO(t *testing.T, status int) *MinIOStorage {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	mc, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)
	return &MinIOStorage{client: mc, bucket: "photos"}
}

func TestMinIOStorage_Ping(t *testing.T) {
	require.NoError(t, newTestMinIO(t, http.StatusOK).Ping(context.Background()))

	err := newTestMinIO(t, http.StatusNotFound).Ping(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "photos")
}
