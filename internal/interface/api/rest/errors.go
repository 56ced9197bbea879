package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/domain/errs"
)

// respondError maps domain errors onto HTTP responses. op names the failed call in logs.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var (
		vErr  *errs.ValidationError
		aErr  *errs.AuthError
		nfErr *errs.NotFoundError
		pdErr *errs.PartialDeleteError
		sErr  *errs.StorageError
	)

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": map[string]string{vErr.Field: vErr.Reason},
		})
	case errors.As(err, &aErr):
		status := http.StatusUnauthorized
		if aErr.Kind == errs.AlreadyExists {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": aErr.Error()})
	case errors.As(err, &nfErr):
		c.JSON(http.StatusNotFound, gin.H{"error": nfErr.Resource + " not found"})
	case errors.As(err, &pdErr):
		logger.Error(op+" error", zap.Error(err), zap.String("file_id", pdErr.ID))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "file content removed but its record could not be deleted",
			"partial": true,
		})
	case errors.As(err, &sErr):
		logger.Error(op+" error", zap.Error(err), zap.String("op", sErr.Op))
		c.JSON(http.StatusBadGateway, gin.H{"error": "storage unavailable"})
	default:
		logger.Error(op+" error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
