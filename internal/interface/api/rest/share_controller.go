package rest

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
	"github.com/Nithin3003/cloud-share-it/internal/domain/errs"
	domain "github.com/Nithin3003/cloud-share-it/internal/domain/file"
	"github.com/Nithin3003/cloud-share-it/internal/interface/api/rest/dto/file"
	"github.com/Nithin3003/cloud-share-it/internal/interface/api/rest/validator"
)

//go:embed templates/*.html
var templatesFS embed.FS

const msgFileNotFound = "File not found or has been removed"

// ShareController serves the unauthenticated side of a share link.
type ShareController struct {
	resolver ports.PublicResolver
	logger   *zap.Logger
}

type sharePage struct {
	domain.File
	Size        string
	Kind        string
	DownloadURL string
}

func NewShareController(r *gin.Engine, resolver ports.PublicResolver, logger *zap.Logger) *ShareController {
	sc := &ShareController{
		resolver: resolver,
		logger:   logger,
	}

	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	r.GET(RoutePublicFile, sc.PublicFileHandler)
	r.GET(RouteSharePage, sc.SharePageHandler)
	r.GET(RouteShareDownload, sc.DownloadHandler)

	return sc
}

func (sc *ShareController) PublicFileHandler(c *gin.Context) {
	ok, id := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "file_id must be a valid UUID"},
		)
		return
	}

	f, err := sc.resolver.Resolve(c.Request.Context(), id)
	if err != nil {
		respondError(c, sc.logger, "Resolve()", err)
		return
	}

	c.JSON(http.StatusOK, file.ToResponseFile(*f))
}

func (sc *ShareController) SharePageHandler(c *gin.Context) {
	f, ok := sc.resolveHTML(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "share.html", sharePage{
		File:        *f,
		Size:        domain.FormatSize(f.Size),
		Kind:        domain.Kind(f.MimeType),
		DownloadURL: strings.TrimSuffix(c.Request.URL.Path, "/") + "/download",
	})
}

// DownloadHandler redirects to a freshly minted access URL.
func (sc *ShareController) DownloadHandler(c *gin.Context) {
	f, ok := sc.resolveHTML(c)
	if !ok {
		return
	}

	c.Redirect(http.StatusFound, f.AccessURL)
}

func (sc *ShareController) resolveHTML(c *gin.Context) (*domain.File, bool) {
	ok, id := validator.IsUUID(c.Param("file_id"))
	if !ok {
		sc.message(c, http.StatusNotFound, "Not found", msgFileNotFound)
		return nil, false
	}

	f, err := sc.resolver.Resolve(c.Request.Context(), id)
	switch {
	case err == nil:
		return f, true
	case errors.Is(err, errs.ErrNotFound):
		sc.message(c, http.StatusNotFound, "Not found", msgFileNotFound)
	default:
		sc.logger.Error("Resolve() error", zap.Error(err), zap.String("file_id", id.String()))
		sc.message(c, http.StatusBadGateway, "Unavailable", "The file cannot be reached right now. Try again later.")
	}
	return nil, false
}

func (sc *ShareController) message(c *gin.Context, status int, title, msg string) {
	c.HTML(status, "message.html", gin.H{"Title": title, "Message": msg})
}
