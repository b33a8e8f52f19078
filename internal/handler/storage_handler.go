package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tkt-widget-api/internal/dto"
	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
	"github.com/noah-isme/tkt-widget-api/pkg/response"
)

type sharedStorage interface {
	Get(ctx context.Context, userID, key string) (string, bool, error)
	Set(ctx context.Context, userID, key, value string, ttl time.Duration) error
	Remove(ctx context.Context, userID, key string) error
	Contains(ctx context.Context, userID, key string) (bool, error)
}

// StorageHandler exposes the raw per-user widget key/value store.
type StorageHandler struct {
	storage sharedStorage
}

// NewStorageHandler builds a storage handler.
func NewStorageHandler(storage sharedStorage) *StorageHandler {
	return &StorageHandler{storage: storage}
}

// Get godoc
// @Summary Read a shared storage key
// @Tags Storage
// @Produce json
// @Param key path string true "Storage key"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /storage/{key} [get]
func (h *StorageHandler) Get(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	key := c.Param("key")
	value, ok, err := h.storage.Get(c.Request.Context(), userID, key)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		response.Error(c, appErrors.ErrStorageMiss)
		return
	}
	response.JSON(c, http.StatusOK, dto.StorageValueResponse{Key: key, Value: value}, nil)
}

// Head reports key presence through the status code only.
func (h *StorageHandler) Head(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		c.Status(appErrors.FromError(err).Status)
		return
	}
	ok, err := h.storage.Contains(c.Request.Context(), userID, c.Param("key"))
	if err != nil {
		c.Status(appErrors.FromError(err).Status)
		return
	}
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

// Put godoc
// @Summary Write a shared storage key
// @Tags Storage
// @Accept json
// @Produce json
// @Param key path string true "Storage key"
// @Param payload body dto.StorageValueRequest true "Value and optional TTL"
// @Success 204
// @Router /storage/{key} [put]
func (h *StorageHandler) Put(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.StorageValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid storage payload"))
		return
	}
	ttl := time.Duration(req.TTLSeconds) * time.Second
	if err := h.storage.Set(c.Request.Context(), userID, c.Param("key"), req.Value, ttl); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Remove a shared storage key
// @Tags Storage
// @Param key path string true "Storage key"
// @Success 204
// @Router /storage/{key} [delete]
func (h *StorageHandler) Delete(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.storage.Remove(c.Request.Context(), userID, c.Param("key")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
