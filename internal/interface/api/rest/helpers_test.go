package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
	domainFile "github.com/Nithin3003/cloud-share-it/internal/domain/file"
	domainUser "github.com/Nithin3003/cloud-share-it/internal/domain/user"
	jwtSvc "github.com/Nithin3003/cloud-share-it/internal/infrastructure/jwt"
)

const (
	testSecret  = "test-secret"
	testTokenID = "jti-test"
	testMaxSize = 64
)

type FakeAuthService struct {
	RegisterFunc  func(ctx context.Context, email, password, name string) (*ports.Session, error)
	LoginFunc     func(ctx context.Context, email, password string) (*ports.Session, error)
	LogoutFunc    func(ctx context.Context, tokenID string, expiresAt time.Time)
	PrincipalFunc func(ctx context.Context, userUUID domainUser.UUID) (*domainUser.User, error)
}

func (f *FakeAuthService) Register(ctx context.Context, email, password, name string) (*ports.Session, error) {
	if f.RegisterFunc == nil {
		return nil, errors.New("not used")
	}
	return f.RegisterFunc(ctx, email, password, name)
}

func (f *FakeAuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	if f.LoginFunc == nil {
		return nil, errors.New("not used")
	}
	return f.LoginFunc(ctx, email, password)
}

func (f *FakeAuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) {
	if f.LogoutFunc != nil {
		f.LogoutFunc(ctx, tokenID, expiresAt)
	}
}

func (f *FakeAuthService) Principal(ctx context.Context, userUUID domainUser.UUID) (*domainUser.User, error) {
	if f.PrincipalFunc == nil {
		return nil, errors.New("not used")
	}
	return f.PrincipalFunc(ctx, userUUID)
}

type FakeFileRegistry struct {
	UploadFunc     func(ctx context.Context, owner domainUser.UUID, in ports.UploadInput) (*domainFile.File, error)
	ListFunc       func(ctx context.Context, owner domainUser.UUID) (domainFile.Files, error)
	GetByIDFunc    func(ctx context.Context, owner domainUser.UUID, id domainFile.ID) (*domainFile.File, error)
	DeleteByIDFunc func(ctx context.Context, owner domainUser.UUID, id domainFile.ID) error
}

func (f *FakeFileRegistry) Upload(ctx context.Context, owner domainUser.UUID, in ports.UploadInput) (*domainFile.File, error) {
	if f.UploadFunc == nil {
		return nil, errors.New("not used")
	}
	return f.UploadFunc(ctx, owner, in)
}

func (f *FakeFileRegistry) List(ctx context.Context, owner domainUser.UUID) (domainFile.Files, error) {
	if f.ListFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ListFunc(ctx, owner)
}

func (f *FakeFileRegistry) GetByID(ctx context.Context, owner domainUser.UUID, id domainFile.ID) (*domainFile.File, error) {
	if f.GetByIDFunc == nil {
		return nil, errors.New("not used")
	}
	return f.GetByIDFunc(ctx, owner, id)
}

func (f *FakeFileRegistry) DeleteByID(ctx context.Context, owner domainUser.UUID, id domainFile.ID) error {
	if f.DeleteByIDFunc == nil {
		return errors.New("not used")
	}
	return f.DeleteByIDFunc(ctx, owner, id)
}

type FakePublicResolver struct {
	ResolveFunc func(ctx context.Context, id domainFile.ID) (*domainFile.File, error)
}

func (f *FakePublicResolver) Resolve(ctx context.Context, id domainFile.ID) (*domainFile.File, error) {
	if f.ResolveFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ResolveFunc(ctx, id)
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupRouter(t *testing.T, as ports.Auth, fr ports.FileRegistry) *gin.Engine {
	t.Helper()

	r := newTestEngine(t)
	logger := zap.NewNop()
	j := jwtSvc.New(testSecret)

	if as != nil {
		NewAuthController(r, logger, as, j, nil)
	}
	if fr != nil {
		NewFileController(r, fr, logger, j, nil, testMaxSize)
	}
	return r
}

func SignJWT(secret, userID string, exp time.Duration) (string, error) {
	claims := jwtSvc.Claims{
		UserID: userID,
		Email:  "user@example.com",
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        testTokenID,
			Subject:   userID,
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(exp)),
		},
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func authHeader(t *testing.T, userID string) map[string]string {
	t.Helper()
	tok, err := SignJWT(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + tok}
}

func doReq(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func doMultipartReq(t *testing.T, r *gin.Engine, path, fileField, fileName string, fileContent []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	if fileField != "" && fileName != "" && fileContent != nil {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, _ = fw.Write(fileContent)
	} else {
		require.NoError(t, w.WriteField("note", "no file"))
	}

	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, path, &b)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}
