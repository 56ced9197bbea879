package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
	"github.com/Nithin3003/cloud-share-it/internal/domain/errs"
	domainFile "github.com/Nithin3003/cloud-share-it/internal/domain/file"
	domainUser "github.com/Nithin3003/cloud-share-it/internal/domain/user"
)

func testFile(owner uuid.UUID, name string) *domainFile.File {
	id := uuid.New()
	return &domainFile.File{
		ID:         id,
		OwnerID:    owner,
		Name:       name,
		Size:       2048,
		MimeType:   "application/pdf",
		BlobPath:   owner.String() + "/1_" + name,
		ShareURL:   "http://share.test/file/" + id.String(),
		AccessURL:  "http://share.test/blobs/x?sig=y",
		UploadedAt: time.Now(),
	}
}

func TestFileController_UploadHandler(t *testing.T) {
	owner := uuid.New()
	content := []byte("hello world")

	tests := []struct {
		name       string
		headers    map[string]string
		fileName   string
		content    []byte
		upload     func(ctx context.Context, o domainUser.UUID, in ports.UploadInput) (*domainFile.File, error)
		wantStatus int
		wantJSON   map[string]any
	}{
		{
			name:       "no token -> 401",
			fileName:   "a.txt",
			content:    content,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing file -> 400",
			headers:    authHeader(t, owner.String()),
			wantStatus: http.StatusBadRequest,
			wantJSON:   map[string]any{"error": "file is required"},
		},
		{
			name:       "too large -> 413",
			headers:    authHeader(t, owner.String()),
			fileName:   "big.bin",
			content:    make([]byte, testMaxSize+1),
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:     "validation error -> 400",
			headers:  authHeader(t, owner.String()),
			fileName: "a.txt",
			content:  content,
			upload: func(ctx context.Context, o domainUser.UUID, in ports.UploadInput) (*domainFile.File, error) {
				return nil, &errs.ValidationError{Field: "file", Reason: "file is empty"}
			},
			wantStatus: http.StatusBadRequest,
			wantJSON:   map[string]any{"details": map[string]any{"file": "file is empty"}},
		},
		{
			name:     "storage down -> 502",
			headers:  authHeader(t, owner.String()),
			fileName: "a.txt",
			content:  content,
			upload: func(ctx context.Context, o domainUser.UUID, in ports.UploadInput) (*domainFile.File, error) {
				return nil, &errs.StorageError{Op: "put blob", Err: errors.New("timeout")}
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:     "success",
			headers:  authHeader(t, owner.String()),
			fileName: "report.pdf",
			content:  content,
			upload: func(ctx context.Context, o domainUser.UUID, in ports.UploadInput) (*domainFile.File, error) {
				if o != owner {
					return nil, errs.ErrNotAuthenticated
				}
				b, err := io.ReadAll(in.Body)
				if err != nil || string(b) != "hello world" || in.Size != int64(len(b)) {
					return nil, errors.New("body not forwarded")
				}
				return testFile(o, in.Name), nil
			},
			wantStatus: http.StatusCreated,
			wantJSON:   map[string]any{"name": "report.pdf", "kind": "pdf", "size_human": "2.0 KB"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(t, nil, &FakeFileRegistry{UploadFunc: tt.upload})

			rr := doMultipartReq(t, r, RouteFiles, "file", tt.fileName, tt.content, tt.headers)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			resp := decodeBody(t, rr)
			for k, v := range tt.wantJSON {
				assert.Equal(t, v, resp[k], "field %q mismatch", k)
			}
		})
	}
}

func TestFileController_ListHandler(t *testing.T) {
	owner := uuid.New()
	fr := &FakeFileRegistry{
		ListFunc: func(ctx context.Context, o domainUser.UUID) (domainFile.Files, error) {
			return domainFile.Files{testFile(o, "Q3-Report.pdf"), testFile(o, "cat.png")}, nil
		},
	}
	r := setupRouter(t, nil, fr)

	rr := doReq(t, r, http.MethodGet, RouteFiles, nil, authHeader(t, owner.String()))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody(t, rr)["data"], 2)

	rr = doReq(t, r, http.MethodGet, RouteFiles+"?q=report", nil, authHeader(t, owner.String()))
	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeBody(t, rr)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Q3-Report.pdf", data[0].(map[string]any)["name"])

	failing := setupRouter(t, nil, &FakeFileRegistry{})
	rr = doReq(t, failing, http.MethodGet, RouteFiles, nil, authHeader(t, owner.String()))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestFileController_GetHandler(t *testing.T) {
	owner := uuid.New()
	f := testFile(owner, "a.txt")

	tests := []struct {
		name       string
		path       string
		get        func(ctx context.Context, o domainUser.UUID, id domainFile.ID) (*domainFile.File, error)
		wantStatus int
		wantJSON   map[string]any
	}{
		{
			name:       "bad id",
			path:       RouteFiles + "/not-a-uuid",
			wantStatus: http.StatusBadRequest,
			wantJSON:   map[string]any{"error": "file_id must be a valid UUID"},
		},
		{
			name: "not found",
			path: RouteFiles + "/" + uuid.NewString(),
			get: func(ctx context.Context, o domainUser.UUID, id domainFile.ID) (*domainFile.File, error) {
				return nil, nil
			},
			wantStatus: http.StatusNotFound,
			wantJSON:   map[string]any{"error": "file not found"},
		},
		{
			name: "found",
			path: RouteFiles + "/" + f.ID.String(),
			get: func(ctx context.Context, o domainUser.UUID, id domainFile.ID) (*domainFile.File, error) {
				if id != f.ID || o != owner {
					return nil, nil
				}
				return f, nil
			},
			wantStatus: http.StatusOK,
			wantJSON:   map[string]any{"id": f.ID.String(), "share_url": f.ShareURL},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(t, nil, &FakeFileRegistry{GetByIDFunc: tt.get})

			rr := doReq(t, r, http.MethodGet, tt.path, nil, authHeader(t, owner.String()))
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			resp := decodeBody(t, rr)
			for k, v := range tt.wantJSON {
				assert.Equal(t, v, resp[k], "field %q mismatch", k)
			}
		})
	}
}

func TestFileController_DeleteHandler(t *testing.T) {
	owner := uuid.New()
	id := uuid.New()

	tests := []struct {
		name       string
		del        func(ctx context.Context, o domainUser.UUID, id domainFile.ID) error
		wantStatus int
		wantJSON   map[string]any
	}{
		{
			name: "other owner or missing -> 404",
			del: func(ctx context.Context, o domainUser.UUID, fid domainFile.ID) error {
				return &errs.NotFoundError{Resource: "file", ID: fid.String()}
			},
			wantStatus: http.StatusNotFound,
			wantJSON:   map[string]any{"error": "file not found"},
		},
		{
			name: "partial delete -> 500",
			del: func(ctx context.Context, o domainUser.UUID, fid domainFile.ID) error {
				return &errs.PartialDeleteError{ID: fid.String(), BlobPath: "p", Err: errors.New("db down")}
			},
			wantStatus: http.StatusInternalServerError,
			wantJSON:   map[string]any{"partial": true},
		},
		{
			name: "blob removal failed -> 502",
			del: func(ctx context.Context, o domainUser.UUID, fid domainFile.ID) error {
				return &errs.StorageError{Op: "remove blob", Err: errors.New("denied")}
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "deleted",
			del: func(ctx context.Context, o domainUser.UUID, fid domainFile.ID) error {
				if o != owner || fid != id {
					return errors.New("wrong args")
				}
				return nil
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(t, nil, &FakeFileRegistry{DeleteByIDFunc: tt.del})

			rr := doReq(t, r, http.MethodDelete, RouteFiles+"/"+id.String(), nil, authHeader(t, owner.String()))
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			if len(tt.wantJSON) == 0 {
				return
			}
			resp := decodeBody(t, rr)
			for k, v := range tt.wantJSON {
				assert.Equal(t, v, resp[k], "field %q mismatch", k)
			}
		})
	}
}
