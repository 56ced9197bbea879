package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
	domain "github.com/Nithin3003/cloud-share-it/internal/domain/file"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/jwt"
	"github.com/Nithin3003/cloud-share-it/internal/interface/api/rest/dto/file"
	"github.com/Nithin3003/cloud-share-it/internal/interface/api/rest/middleware"
	"github.com/Nithin3003/cloud-share-it/internal/interface/api/rest/validator"
)

type FileController struct {
	registry ports.FileRegistry
	logger   *zap.Logger
	maxSize  int64
}

func NewFileController(
	r *gin.Engine,
	registry ports.FileRegistry,
	logger *zap.Logger,
	jwtService *jwt.Service,
	sessions ports.SessionStore,
	maxSize int64,
) *FileController {
	fc := &FileController{
		registry: registry,
		logger:   logger,
		maxSize:  maxSize,
	}

	authMw := middleware.AuthMiddleware(jwtService, sessions, logger)

	r.POST(RouteFiles, authMw, fc.UploadHandler)
	r.GET(RouteFiles, authMw, fc.ListHandler)
	r.GET(RouteFile, authMw, fc.GetHandler)
	r.DELETE(RouteFile, authMw, fc.DeleteHandler)

	return fc
}

func (fc *FileController) UploadHandler(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fh.Size > fc.maxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	body, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file part"})
		fc.logger.Error("FormFile.Open() error", zap.Error(err))
		return
	}
	defer body.Close()

	f, err := fc.registry.Upload(c.Request.Context(), middleware.UserID(c), ports.UploadInput{
		Body:     body,
		Name:     fh.Filename,
		Size:     fh.Size,
		MimeType: fh.Header.Get("Content-Type"),
	})
	if err != nil {
		respondError(c, fc.logger, "Upload()", err)
		return
	}

	c.JSON(http.StatusCreated, file.ToResponseFile(*f))
}

func (fc *FileController) ListHandler(c *gin.Context) {
	files, err := fc.registry.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, fc.logger, "List()", err)
		return
	}

	c.JSON(http.StatusOK, file.ResponseData{
		Data: file.ToResponseFiles(domain.FilterByName(files, c.Query("q"))),
	})
}

func (fc *FileController) GetHandler(c *gin.Context) {
	ok, id := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "file_id must be a valid UUID"},
		)
		return
	}

	f, err := fc.registry.GetByID(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, fc.logger, "GetByID()", err)
		return
	}
	if f == nil {
		c.JSON(
			http.StatusNotFound,
			gin.H{"error": "file not found"},
		)
		return
	}

	c.JSON(http.StatusOK, file.ToResponseFile(*f))
}

func (fc *FileController) DeleteHandler(c *gin.Context) {
	ok, id := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "file_id must be a valid UUID"},
		)
		return
	}

	if err := fc.registry.DeleteByID(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, fc.logger, "DeleteByID()", err)
		return
	}

	c.Status(http.StatusNoContent)
}
