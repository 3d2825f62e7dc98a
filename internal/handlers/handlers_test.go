package handlers_test

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/handlers"
	"github.com/Totarae/PersonalAccount/internal/model"
	"github.com/Totarae/PersonalAccount/internal/router"
	"github.com/Totarae/PersonalAccount/internal/service"
	"github.com/Totarae/PersonalAccount/internal/service/mocks"
	"github.com/Totarae/PersonalAccount/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type testServer struct {
	handler http.Handler
	store   *storage.MemoryStore
}

func newHandler(store *storage.MemoryStore, avatars service.ObjectStore, logger *zap.Logger, emptyNotFound bool) *handlers.Handler {
	var avatarSvc *service.AvatarService
	if avatars != nil {
		avatarSvc = service.NewAvatarService(store, avatars, logger)
	}
	return handlers.NewHandler(
		service.NewUserService(store, logger),
		service.NewShelfService(store, store, logger),
		service.NewTagService(store, store, logger),
		avatarSvc,
		store,
		logger,
		emptyNotFound,
	)
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := storage.NewMemoryStore()
	h := newHandler(store, nil, logger, true)
	return &testServer{handler: router.NewRouter(h, logger, router.Options{}), store: store}
}

func (s *testServer) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("x-user-id", userID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, userID string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/users/register", userID,
		`{"login":"testuser","first_name":"Test","last_name":"User"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		userID string
		body   string
		status int
		want   string
	}{
		{"ok", "/users/register", "1", `{"login":"a","first_name":"b","last_name":"c"}`, http.StatusOK, `{"message":"User successfully registered"}`},
		{"duplicate", "/users/register", "1", `{"login":"a","first_name":"b","last_name":"c"}`, http.StatusBadRequest, `{"detail":"User already exists"}`},
		{"short path", "/register", "2", `{"login":"a","first_name":"b","last_name":"c"}`, http.StatusOK, `{"message":"User successfully registered"}`},
		{"no header", "/users/register", "", `{"login":"a","first_name":"b","last_name":"c"}`, http.StatusBadRequest, `{"detail":"x-user-id header is required"}`},
		{"bad header", "/users/register", "abc", `{"login":"a","first_name":"b","last_name":"c"}`, http.StatusBadRequest, `{"detail":"invalid x-user-id header"}`},
		{"bad json", "/users/register", "3", `{"login":`, http.StatusBadRequest, `{"detail":"invalid request body"}`},
		{"missing field", "/users/register", "3", `{"login":"a","first_name":"b"}`, http.StatusBadRequest, `{"detail":"last_name is required"}`},
		{"empty strings", "/users/register", "4", `{"login":"","first_name":"","last_name":""}`, http.StatusOK, `{"message":"User successfully registered"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, tt.path, tt.userID, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestGetUser(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "1")

	rec := s.do(t, http.MethodGet, "/users/get", "1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"login":"testuser","first_name":"Test","last_name":"User"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/users/get", "999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"User with id 999 not found"}`, rec.Body.String())
}

func TestShelvesFlow(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "1")

	rec := s.do(t, http.MethodPost, "/bookmarks/create_shelf", "1", `{"name":"Reading"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var created model.CreateShelfResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Shelf successfully created", created.Message)

	for i, title := range []string{"A", "B", "C", "D"} {
		body, _ := json.Marshal(model.AddBookmarkRequest{BookmarkID: int64(i + 1), Title: title, ShelfID: created.ID})
		rec = s.do(t, http.MethodPost, "/bookmarks/add_bookmark", "1", string(body))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"message":"Bookmark successfully added"}`, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/bookmarks/get_shelves", "1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var shelves model.ShelvesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shelves))
	assert.Equal(t, []model.ShelfView{{ID: created.ID, Name: "Reading", Bookmarks: []string{"A", "B", "C"}}}, shelves.Shelves)

	rec = s.do(t, http.MethodGet, "/bookmarks/get_only_shelves", "1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var ids model.ShelfIDsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ids))
	assert.Equal(t, []int64{created.ID}, ids.ID)

	rec = s.do(t, http.MethodGet, "/bookmarks/get_bookmarks?shelf_id=1", "1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var bookmarks model.BookmarksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bookmarks))
	assert.Len(t, bookmarks.Bookmarks, 4)

	rec = s.do(t, http.MethodPost, "/bookmarks/delete_bookmark_from_shelf", "1", `{"bookmark_id":1,"shelf_id":1}`)
	assert.JSONEq(t, `{"message":"Bookmark removed from shelf"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/bookmarks/delete_shelf", "1", `{"shelf_id":1}`)
	assert.JSONEq(t, `{"message":"Shelf removed"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/bookmarks/delete_shelf", "1", `{"shelf_id":1}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Nothing to remove"}`, rec.Body.String())
}

func TestShelvesErrors(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "1")
	s.register(t, "2")

	rec := s.do(t, http.MethodPost, "/bookmarks/create_shelf", "2", `{"name":"Other"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		name   string
		method string
		path   string
		userID string
		body   string
		status int
		want   string
	}{
		{"no shelves", http.MethodGet, "/bookmarks/get_shelves", "1", "", http.StatusNotFound, `{"detail":"No bookmarks found for this user"}`},
		{"unknown user", http.MethodGet, "/bookmarks/get_shelves", "999", "", http.StatusNotFound, `{"detail":"User with id 999 not found"}`},
		{"foreign shelf", http.MethodGet, "/bookmarks/get_bookmarks?shelf_id=1", "1", "", http.StatusNotFound, `{"detail":"Shelf not found"}`},
		{"bad shelf id", http.MethodGet, "/bookmarks/get_bookmarks?shelf_id=x", "1", "", http.StatusBadRequest, `{"detail":"shelf_id must be a positive integer"}`},
		{"add to foreign shelf", http.MethodPost, "/bookmarks/add_bookmark", "1", `{"bookmark_id":1,"title":"A","shelf_id":1}`, http.StatusNotFound, `{"detail":"Shelf not found"}`},
		{"blank title", http.MethodPost, "/bookmarks/add_bookmark", "2", `{"bookmark_id":1,"title":"  ","shelf_id":1}`, http.StatusBadRequest, `{"detail":"Bookmark title cannot be empty"}`},
		{"empty shelf list", http.MethodGet, "/bookmarks/get_only_shelves", "1", "", http.StatusOK, `{"id":[]}`},
		{"delete foreign shelf", http.MethodPost, "/bookmarks/delete_shelf", "1", `{"shelf_id":1}`, http.StatusOK, `{"message":"Nothing to remove"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.userID, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestGetShelves_EmptyList(t *testing.T) {
	logger := zaptest.NewLogger(t)
	store := storage.NewMemoryStore()
	r := router.NewRouter(newHandler(store, nil, logger, false), logger, router.Options{})
	s := &testServer{handler: r, store: store}
	s.register(t, "1")

	rec := s.do(t, http.MethodGet, "/bookmarks/get_shelves", "1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"shelves":[]}`, rec.Body.String())
}

func TestTagsFlow(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "1")

	rec := s.do(t, http.MethodPost, "/tags/update", "1", `{"tags":[" ",""]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Tags list cannot be empty or some tags is empty"}`, rec.Body.String())
	assert.Equal(t, 0, s.store.TagCount())

	rec = s.do(t, http.MethodGet, "/tags/get", "1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"No tags found for this user"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/tags/update", "1", `{"tags":["x","y"]}`)
	assert.JSONEq(t, `{"message":"Tags successfully saved"}`, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/tags/update", "1", `{"tags":["y","z"," "]}`)
	assert.JSONEq(t, `{"message":"Tags successfully saved"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/tags/get", "1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tags":["x","y","z"]}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/tags/delete", "1", `{"tags":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Tags list cannot be empty"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/tags/delete", "1", `{"tags":["x"]}`)
	assert.JSONEq(t, `{"message":"Tags successfully deleted"}`, rec.Body.String())
	assert.Equal(t, 2, s.store.UserTagCount(1))
	assert.Equal(t, 3, s.store.TagCount())

	rec = s.do(t, http.MethodPost, "/tags/update", "999", `{"tags":["x"]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"User with id 999 not found"}`, rec.Body.String())
}

func TestTags_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	tags := mocks.NewMockTagRepository(ctrl)
	logger := zaptest.NewLogger(t)

	users.EXPECT().UserExists(gomock.Any(), int64(1)).Return(true, nil)
	tags.EXPECT().MergeTags(gomock.Any(), int64(1), []string{"a"}, gomock.Any()).
		Return(0, apperrors.Store("failed to merge tags", errors.New("deadlock detected")))

	h := handlers.NewHandler(
		service.NewUserService(users, logger),
		nil,
		service.NewTagService(users, tags, logger),
		nil,
		storage.NewMemoryStore(),
		logger,
		true,
	)
	s := &testServer{handler: router.NewRouter(h, logger, router.Options{})}

	rec := s.do(t, http.MethodPost, "/tags/update", "1", `{"tags":["a"]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"internal server error"}`, rec.Body.String())
}

func TestGzipResponse(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "1")
	_ = s.do(t, http.MethodPost, "/tags/update", "1", `{"tags":["go"]}`)

	req := httptest.NewRequest(http.MethodGet, "/tags/get", nil)
	req.Header.Set("x-user-id", "1")
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":["go"]}`, string(body))
}

func TestPing(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/ping", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFilesNotMounted(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "1")

	rec := s.do(t, http.MethodGet, "/files/icon-get-link", "1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newAvatarServer(t *testing.T, objects *mocks.MockObjectStore) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := storage.NewMemoryStore()
	h := newHandler(store, objects, logger, true)
	s := &testServer{handler: router.NewRouter(h, logger, router.Options{}), store: store}
	s.register(t, "1")
	return s
}

func TestUploadIcon(t *testing.T) {
	ctrl := gomock.NewController(t)
	objects := mocks.NewMockObjectStore(ctrl)
	s := newAvatarServer(t, objects)

	objects.EXPECT().
		Upload(gomock.Any(), "icons/1", gomock.Any(), int64(len(pngHeader)), "image/png").
		Return("http://localhost:9000/static/icons/1?X-Amz-Signature=abc", nil)

	body, contentType := multipartBody(t, "me.png", pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/files/icon-upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-user-id", "1")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"http://localhost:9000/static/icons/1?X-Amz-Signature=abc"`, rec.Body.String())
}

func TestUploadIcon_Rejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newAvatarServer(t, mocks.NewMockObjectStore(ctrl))

	body, contentType := multipartBody(t, "notes.txt", []byte("just text"))
	req := httptest.NewRequest(http.MethodPost, "/files/icon-upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-user-id", "1")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"file must be an image"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/files/icon-upload", strings.NewReader(""))
	req.Header.Set("x-user-id", "1")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"file is required"}`, rec.Body.String())
}

func TestGetIconLink(t *testing.T) {
	ctrl := gomock.NewController(t)
	objects := mocks.NewMockObjectStore(ctrl)
	s := newAvatarServer(t, objects)

	gomock.InOrder(
		objects.EXPECT().GetLink(gomock.Any(), "icons/1").Return("", apperrors.NotFound("File not found")),
		objects.EXPECT().GetLink(gomock.Any(), "icons/1").Return("http://localhost:9000/static/icons/1", nil),
	)

	rec := s.do(t, http.MethodGet, "/files/icon-get-link", "1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"File not found"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/files/icon-get-link", "1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"http://localhost:9000/static/icons/1"`, rec.Body.String())
}
