package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tkt-widget-api/internal/dto"
	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
)

type storageStub struct {
	values  map[string]string
	lastTTL time.Duration
	err     error
}

func newStorageStub() *storageStub {
	return &storageStub{values: map[string]string{}}
}

func (s *storageStub) Get(ctx context.Context, userID, key string) (string, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := s.values[userID+"/"+key]
	return v, ok, nil
}

func (s *storageStub) Set(ctx context.Context, userID, key, value string, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.values[userID+"/"+key] = value
	s.lastTTL = ttl
	return nil
}

func (s *storageStub) Remove(ctx context.Context, userID, key string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.values, userID+"/"+key)
	return nil
}

func (s *storageStub) Contains(ctx context.Context, userID, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.values[userID+"/"+key]
	return ok, nil
}

func TestStorageHandlerPutGetDelete(t *testing.T) {
	store := newStorageStub()
	handler := NewStorageHandler(store)

	c, w := newJSONContext(http.MethodPut, "/storage/courses", `{"value":"[]","ttl_seconds":60}`, widgetClaims())
	c.Params = gin.Params{{Key: "key", Value: "courses"}}
	handler.Put(c)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "[]", store.values["u1/courses"])
	assert.Equal(t, time.Minute, store.lastTTL)

	c, w = newWidgetContext(http.MethodGet, "/storage/courses", widgetClaims())
	c.Params = gin.Params{{Key: "key", Value: "courses"}}
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	var out dto.StorageValueResponse
	decodeEnvelope(t, w.Body.Bytes(), &out)
	assert.Equal(t, dto.StorageValueResponse{Key: "courses", Value: "[]"}, out)

	c, w = newWidgetContext(http.MethodHead, "/storage/courses", widgetClaims())
	c.Params = gin.Params{{Key: "key", Value: "courses"}}
	handler.Head(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newWidgetContext(http.MethodDelete, "/storage/courses", widgetClaims())
	c.Params = gin.Params{{Key: "key", Value: "courses"}}
	handler.Delete(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, store.values, "u1/courses")

	c, w = newWidgetContext(http.MethodGet, "/storage/courses", widgetClaims())
	c.Params = gin.Params{{Key: "key", Value: "courses"}}
	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	envelope := decodeEnvelope(t, w.Body.Bytes(), nil)
	assert.Equal(t, "STORAGE_MISS", envelope.Error.Code)

	c, w = newWidgetContext(http.MethodHead, "/storage/courses", widgetClaims())
	c.Params = gin.Params{{Key: "key", Value: "courses"}}
	handler.Head(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStorageHandlerErrors(t *testing.T) {
	store := newStorageStub()
	handler := NewStorageHandler(store)

	c, w := newJSONContext(http.MethodPut, "/storage/courses", `not json`, widgetClaims())
	c.Params = gin.Params{{Key: "key", Value: "courses"}}
	handler.Put(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	store.err = appErrors.Clone(appErrors.ErrUnavailable, "shared storage unavailable")
	c, w = newWidgetContext(http.MethodGet, "/storage/courses", widgetClaims())
	c.Params = gin.Params{{Key: "key", Value: "courses"}}
	handler.Get(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	c, w = newWidgetContext(http.MethodDelete, "/storage/courses", nil)
	handler.Delete(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

}
