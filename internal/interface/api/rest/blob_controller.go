package rest

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/blob/local"
)

// BlobServer is the read side of the local blob store.
type BlobServer interface {
	Verify(p, expires, sig string) error
	Open(p string) (afero.File, os.FileInfo, error)
}

// BlobController serves signed links minted by the local blob store. It is only
// registered when blobs live on the local filesystem.
type BlobController struct {
	blobs  BlobServer
	logger *zap.Logger
}

func NewBlobController(r *gin.Engine, blobs BlobServer, logger *zap.Logger) *BlobController {
	bc := &BlobController{
		blobs:  blobs,
		logger: logger,
	}

	r.GET(RouteBlobs, bc.ServeHandler)
	r.HEAD(RouteBlobs, bc.ServeHandler)

	return bc
}

func (bc *BlobController) ServeHandler(c *gin.Context) {
	p := strings.TrimPrefix(c.Param("path"), "/")

	err := bc.blobs.Verify(p, c.Query("expires"), c.Query("sig"))
	switch {
	case errors.Is(err, local.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"error": "link expired"})
		return
	case err != nil:
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid link"})
		return
	}

	f, info, err := bc.blobs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		bc.logger.Error("Open() error", zap.Error(err), zap.String("blob_path", p))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer f.Close()

	c.Header("Cache-Control", "private, no-store")
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
