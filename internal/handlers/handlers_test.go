package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"github.com/anonto42/socialhub/backend/internal/middleware"
	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/repositories/repotest"
	"github.com/anonto42/socialhub/backend/internal/services"
	"github.com/anonto42/socialhub/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userHeader = "X-Test-User"

// headerAuth trusts the test header as the principal.
func headerAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(userHeader)
		if id == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
		}
		middleware.SetPrincipal(c, id)
		return next(c)
	}
}

type testServer struct {
	e             *echo.Echo
	users         *repotest.UserStore
	posts         *repotest.ContentStore
	notifications *repotest.NotificationStore
}

func newTestServer(t *testing.T, users ...models.User) *testServer {
	t.Helper()
	clock := repotest.NewClock()
	s := &testServer{
		e:             echo.New(),
		users:         repotest.NewUserStore(clock),
		posts:         repotest.NewContentStore(models.KindPost, clock),
		notifications: repotest.NewNotificationStore(clock),
	}
	s.users.Seed(users...)
	products := repotest.NewContentStore(models.KindProduct, clock)
	messages := repotest.NewMessageStore(clock)

	s.e.HTTPErrorHandler = ErrorHandler
	s.e.Validator = validators.NewValidator()
	notifier := services.NewNotificationService(s.notifications, s.users)
	postSvc := services.NewContentService(models.KindPost, s.posts, s.users, notifier, nil)
	productSvc := services.NewContentService(models.KindProduct, products, s.users, notifier, nil)

	api := s.e.Group("/api/v1")
	NewContentHandler(postSvc, services.NewFeedService(s.posts, s.users, s.users, 2)).
		RegisterPostRoutes(api.Group("/posts"), headerAuth)
	NewContentHandler(productSvc, services.NewFeedService(products, s.users, s.users, 2)).
		RegisterProductRoutes(api.Group("/products"), headerAuth)
	NewNotificationHandler(notifier).RegisterNotificationRoutes(api, headerAuth)
	NewMessageHandler(services.NewMessageService(messages, notifier)).RegisterMessageRoutes(api, headerAuth)
	userSvc := services.NewUserService(s.users, s.users, notifier)
	NewUserHandler(userSvc).RegisterProfileRoutes(api, headerAuth)
	NewFollowHandler(userSvc).RegisterFollowRoutes(api, headerAuth)
	return s
}

func (s *testServer) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, kind apperrors.Kind) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, kind, body.Kind)
	assert.NotEmpty(t, body.Error)
}

var (
	alice = models.User{ID: "alice", Username: "alice", Email: "alice@example.com"}
	bob   = models.User{ID: "bob", Username: "bob", Email: "bob@example.com", Followings: []string{"alice"}}
)

func TestPostLifecycle(t *testing.T) {
	s := newTestServer(t, alice, bob)

	rec := s.do(t, http.MethodPost, "/api/v1/posts", "", `{"desc":"hello from alice"}`)
	assertError(t, rec, http.StatusUnauthorized, apperrors.KindUnauthorized)

	rec = s.do(t, http.MethodPost, "/api/v1/posts", "alice", `{"desc":"short"}`)
	assertError(t, rec, http.StatusBadRequest, apperrors.KindValidation)

	rec = s.do(t, http.MethodPost, "/api/v1/posts", "alice", `{"desc":"hello from alice","mediaType":"image"}`)
	assertError(t, rec, http.StatusBadRequest, apperrors.KindValidation)

	rec = s.do(t, http.MethodPost, "/api/v1/posts", "alice", `{"desc":"hello from alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decode[models.Content](t, rec)
	id := post.ID.Hex()
	assert.Equal(t, "alice", post.OwnerID)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/"+id, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/posts/"+id, "bob", `{"desc":"bob was here now"}`)
	assertError(t, rec, http.StatusForbidden, apperrors.KindForbidden)

	rec = s.do(t, http.MethodPut, "/api/v1/posts/"+id, "alice", `{"desc":"edited by alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited by alice", decode[models.Content](t, rec).Desc)

	rec = s.do(t, http.MethodPut, "/api/v1/posts/"+id+"/like", "bob", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/v1/posts/"+id+"/like", "bob", "")
	assertError(t, rec, http.StatusConflict, apperrors.KindConflict)
	rec = s.do(t, http.MethodPut, "/api/v1/posts/"+id+"/dislike", "bob", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/v1/posts/"+id+"/dislike", "bob", "")
	assertError(t, rec, http.StatusConflict, apperrors.KindConflict)

	rec = s.do(t, http.MethodDelete, "/api/v1/posts/"+id, "bob", "")
	assertError(t, rec, http.StatusForbidden, apperrors.KindForbidden)
	rec = s.do(t, http.MethodDelete, "/api/v1/posts/"+id, "alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/"+id, "", "")
	assertError(t, rec, http.StatusNotFound, apperrors.KindNotFound)
	rec = s.do(t, http.MethodGet, "/api/v1/posts/not-an-id", "", "")
	assertError(t, rec, http.StatusNotFound, apperrors.KindNotFound)
}

func TestPostReviews(t *testing.T) {
	s := newTestServer(t, alice, bob)
	rec := s.do(t, http.MethodPost, "/api/v1/posts", "alice", `{"desc":"rate this post please"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[models.Content](t, rec).ID.Hex()

	rec = s.do(t, http.MethodPost, "/api/v1/posts/"+id+"/reviews", "bob", `{"rating":6,"comment":"better than perfect"}`)
	assertError(t, rec, http.StatusBadRequest, apperrors.KindValidation)

	rec = s.do(t, http.MethodPost, "/api/v1/posts/"+id+"/reviews", "bob", `{"rating":3,"comment":"decent but not great"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/v1/posts/"+id+"/reviews", "bob", `{"rating":4,"comment":"grew on me over time"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/"+id+"/reviews", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Review](t, rec), 2)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/"+id+"/rating", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 3.5, decode[map[string]float64](t, rec)["averageRating"], 1e-9)
}

func TestTimelineEndpoint(t *testing.T) {
	s := newTestServer(t, alice, bob)
	for _, body := range []string{`{"desc":"alice first post"}`, `{"desc":"alice second post"}`} {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/posts", "alice", body).Code)
	}
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/posts", "bob", `{"desc":"bob only post"}`).Code)

	rec := s.do(t, http.MethodGet, "/api/v1/posts/timeline", "", "")
	assertError(t, rec, http.StatusUnauthorized, apperrors.KindUnauthorized)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/timeline", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]models.Content](t, rec)
	require.Len(t, items, 3)
	assert.Equal(t, "bob only post", items[0].Desc)
	assert.Equal(t, "alice second post", items[1].Desc)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/timeline", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Content](t, rec), 2)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/timeline?limit=2", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.TimelinePage](t, rec)
	assert.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/timeline?limit=2&cursor="+url.QueryEscape(page.NextCursor), "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[models.TimelinePage](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice first post", page.Items[0].Desc)
	assert.Empty(t, page.NextCursor)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/timeline?cursor=yesterday", "bob", "")
	assertError(t, rec, http.StatusBadRequest, apperrors.KindValidation)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/timeline?limit=zero", "bob", "")
	assertError(t, rec, http.StatusBadRequest, apperrors.KindValidation)

	rec = s.do(t, http.MethodGet, "/api/v1/posts/timeline", "ghost", "")
	assertError(t, rec, http.StatusNotFound, apperrors.KindNotFound)
}

func TestProductRoutes(t *testing.T) {
	s := newTestServer(t, alice, bob)

	rec := s.do(t, http.MethodPost, "/api/v1/products", "alice",
		`{"desc":"vintage film camera","productLink":"https://shop.example.com/cam","productDetails":"35mm"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[models.Content](t, rec)
	id := product.ID.Hex()
	assert.Equal(t, models.KindProduct, product.Kind)

	rec = s.do(t, http.MethodGet, "/api/v1/products/find/"+id, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/products/find/userposts/alice", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Content](t, rec), 1)

	rec = s.do(t, http.MethodPut, "/api/v1/products/likeProductPost/"+id, "bob", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/v1/products/dislikeProductPost/"+id, "bob", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/products/timelineProductPosts", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Content](t, rec), 1)

	rec = s.do(t, http.MethodPut, "/api/v1/products/updateProductPost/"+id, "alice", `{"desc":"mint condition camera"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/v1/products/deleteProductPost/"+id, "bob", "")
	assertError(t, rec, http.StatusForbidden, apperrors.KindForbidden)
	rec = s.do(t, http.MethodDelete, "/api/v1/products/deleteProductPost/"+id, "alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/products/all", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Content](t, rec))

	rec = s.do(t, http.MethodGet, "/api/v1/posts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Content](t, rec))
}

func TestMessagesAndNotifications(t *testing.T) {
	s := newTestServer(t, alice, bob)

	rec := s.do(t, http.MethodPost, "/api/v1/messages", "", `{"senderId":"alice","recipientId":"bob","text":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/messages", "", `{"senderId":"alice","recipientId":"bob"}`)
	assertError(t, rec, http.StatusBadRequest, apperrors.KindValidation)

	rec = s.do(t, http.MethodGet, "/api/v1/messages/alice", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	convo := decode[[]models.Message](t, rec)
	require.Len(t, convo, 1)
	assert.Equal(t, "hi", convo[0].Text)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications", "bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.EnrichedNotification](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationMessage, list[0].Type)
	assert.Equal(t, "sent you a message.", list[0].Message)
	require.NotNil(t, list[0].Sender)
	assert.Equal(t, "alice", list[0].Sender.Username)

	rec = s.do(t, http.MethodPost, "/api/v1/notifications", "bob", `{"receiverId":"alice","type":"poke"}`)
	assertError(t, rec, http.StatusBadRequest, apperrors.KindValidation)

	rec = s.do(t, http.MethodPost, "/api/v1/notifications", "bob", `{"receiverId":"alice","type":"follow"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	n := decode[models.Notification](t, rec)
	assert.Equal(t, "bob", n.SenderID)
	assert.Equal(t, "started following you.", n.Message)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications", "", "")
	assertError(t, rec, http.StatusUnauthorized, apperrors.KindUnauthorized)
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t, alice)

	rec := s.do(t, http.MethodPost, "/api/v1/users", "carol", `{"username":"carol","email":"carol@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/v1/users", "carol", `{"username":"carol","email":"carol@example.com"}`)
	assertError(t, rec, http.StatusConflict, apperrors.KindConflict)

	rec = s.do(t, http.MethodPut, "/api/v1/users/alice/follow", "carol", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/v1/users/alice/follow", "carol", "")
	assertError(t, rec, http.StatusConflict, apperrors.KindConflict)
	rec = s.do(t, http.MethodPut, "/api/v1/users/carol/follow", "carol", "")
	assertError(t, rec, http.StatusBadRequest, apperrors.KindValidation)

	rec = s.do(t, http.MethodGet, "/api/v1/users/carol", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"alice"}, decode[models.User](t, rec).Followings)
	rec = s.do(t, http.MethodGet, "/api/v1/users/carol/followings", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"alice"}, decode[[]string](t, rec))

	rec = s.do(t, http.MethodPut, "/api/v1/users/alice/unfollow", "carol", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/v1/users/alice/unfollow", "carol", "")
	assertError(t, rec, http.StatusConflict, apperrors.KindConflict)

	rec = s.do(t, http.MethodGet, "/api/v1/users/ghost", "", "")
	assertError(t, rec, http.StatusNotFound, apperrors.KindNotFound)
}

func TestErrorHandlerHidesInternalCauses(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(apperrors.Internal(errors.New("pq: password authentication failed")), c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, apperrors.KindInternal, body.Kind)
	assert.NotContains(t, body.Error, "password")

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	ErrorHandler(context.DeadlineExceeded, c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, apperrors.KindUnavailable, decode[ErrorResponse](t, rec).Kind)
}

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	require.NoError(t, NewHealthHandler(map[string]Pinger{"mongo": ok, "postgres": ok}).HealthCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	require.NoError(t, NewHealthHandler(map[string]Pinger{"mongo": ok, "postgres": down}).HealthCheck(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, map[string]any{"mongo": "up", "postgres": "down"}, body["dependencies"])
}

type rejectAll struct{}

func (rejectAll) Validate(interface{}) error {
	return apperrors.Validation("rejected by validator")
}

func TestHandlersUseEchoValidator(t *testing.T) {
	s := newTestServer(t, alice)
	s.e.Validator = rejectAll{}

	rec := s.do(t, http.MethodPost, "/api/v1/posts", "alice", `{"desc":"a perfectly valid post"}`)
	assertError(t, rec, http.StatusBadRequest, apperrors.KindValidation)
	assert.Equal(t, "rejected by validator", decode[ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodPost, "/api/v1/posts", "alice", `{"desc":`)
	assertError(t, rec, http.StatusBadRequest, apperrors.KindValidation)
	assert.Equal(t, "Invalid request payload", decode[ErrorResponse](t, rec).Error)
}

func TestValidationMessageNamesField(t *testing.T) {
	s := newTestServer(t, alice)

	rec := s.do(t, http.MethodPost, "/api/v1/posts", "alice", `{"desc":"short"}`)
	assertError(t, rec, http.StatusBadRequest, apperrors.KindValidation)
	assert.Equal(t, "desc must be at least 10 characters", decode[ErrorResponse](t, rec).Error)
}
