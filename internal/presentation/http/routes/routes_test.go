package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundroad/fundroad-go/internal/application/container"
	"github.com/fundroad/fundroad-go/internal/application/services"
	"github.com/fundroad/fundroad-go/internal/infrastructure/content"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/persistence/database/dbtest"
	"github.com/fundroad/fundroad-go/internal/presentation/http/middleware"
)

type testEnv struct {
	router    *gin.Engine
	container *container.Container
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loaded, err := content.Load("")
	require.NoError(t, err)

	c := container.NewContainer(container.Dependencies{
		Logger:    logging.NewDiscardLogger(),
		DB:        dbtest.NewSQLite(t),
		Content:   loaded,
		JWTSecret: "test-secret",
	})
	return &testEnv{router: SetupRoutes(c), container: c}
}

type requestOption func(*http.Request)

func withSession(id string) requestOption {
	return func(r *http.Request) { r.Header.Set(middleware.SessionHeader, id) }
}

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func (e *testEnv) do(method, target, body string, opts ...requestOption) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) signup(t *testing.T, email string) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/v1/auth/signup", `{"email":"`+email+`","password":"motdepasse","displayName":"Test"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result services.AuthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestStepRouteNotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/roadmap/step/abc", "/roadmap/step/99", "/roadmap/step/1/inconnue"} {
		w := env.do(http.MethodGet, target, "")
		require.Equal(t, http.StatusNotFound, w.Code, target)
		body := decode(t, w)
		assert.Equal(t, "step not found", body["error"])
		assert.Equal(t, "/roadmap", body["back"])
	}
}

func TestLegacyRoutesRedirect(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/step/3?tab=course", "")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/roadmap/step/3?tab=course", w.Header().Get("Location"))

	w = env.do(http.MethodGet, "/roadmap/2", "")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/roadmap/step/2", w.Header().Get("Location"))

	w = env.do(http.MethodGet, "/roadmap/3/bmc", "")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	location := w.Header().Get("Location")
	assert.Equal(t, "/roadmap/step/3/"+url.PathEscape("Business Model Canvas"), location)

	w = env.do(http.MethodGet, location, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestStepViewTabs(t *testing.T) {
	env := newTestEnv(t)
	session := withSession("tab-session")

	w := env.do(http.MethodGet, "/roadmap/step/1", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	var view services.StepView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 1, view.Step.ID)
	assert.Equal(t, "overview", string(view.ActiveTab))
	assert.Nil(t, view.PreviousStepID)
	require.NotNil(t, view.NextStepID)
	assert.Equal(t, 2, *view.NextStepID)

	w = env.do(http.MethodGet, "/roadmap/step/1?tab=course", "", session)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "course", string(view.ActiveTab))

	w = env.do(http.MethodGet, "/roadmap/step/1/recherche?resource=Persona", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.NotNil(t, view.ActiveSubStep)
	assert.Equal(t, "Recherche utilisateur", view.ActiveSubStep.Title)
	assert.Equal(t, "resources", string(view.ActiveTab))
}

func TestToggleRequiresAuthAndUpdatesProgress(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/journey/toggle", `{"stepId":1,"substep":"probleme"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := env.signup(t, "fondatrice@example.org")

	w = env.do(http.MethodPost, "/api/v1/journey/toggle", `{"stepId":1,"substep":"probleme"}`, withToken(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["completed"])

	w = env.do(http.MethodGet, "/api/v1/journey", "", withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	progress := decode(t, w)["progress"].(map[string]any)
	assert.EqualValues(t, 1, progress["completedSubsteps"])
	assert.EqualValues(t, 3, progress["percentage"])

	w = env.do(http.MethodGet, "/api/v1/journey", "")
	progress = decode(t, w)["progress"].(map[string]any)
	assert.EqualValues(t, 0, progress["percentage"])

	w = env.do(http.MethodPost, "/api/v1/journey/toggle", `{"stepId":42}`, withToken(token))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPut, "/api/v1/journey/completion", `{"stepId":1,"completed":true}`, withToken(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(http.MethodGet, "/api/v1/journey", "", withToken(token))
	progress = decode(t, w)["progress"].(map[string]any)
	assert.EqualValues(t, 1, progress["completedSteps"])
}

func TestReturnPathLifecycle(t *testing.T) {
	env := newTestEnv(t)
	session := withSession("nav-session")

	w := env.do(http.MethodPut, "/api/v1/navigation/return-path", `{"path":"/roadmap/step/2?tab=resources"}`, session)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/v1/navigation/return-path", "", session)
	assert.Equal(t, "/roadmap/step/2?tab=resources", decode(t, w)["path"])

	w = env.do(http.MethodPost, "/api/v1/navigation/return", "", session)
	assert.Equal(t, "/roadmap/step/2?tab=resources", decode(t, w)["path"])
	w = env.do(http.MethodPost, "/api/v1/navigation/return", "", session)
	assert.Nil(t, decode(t, w)["path"])

	w = env.do(http.MethodPut, "/api/v1/navigation/return-path", `{"path":"//evil.example"}`, session)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Without a session nothing is remembered and nothing fails.
	w = env.do(http.MethodPut, "/api/v1/navigation/return-path", `{"path":"/roadmap"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodGet, "/api/v1/navigation/return-path", "")
	assert.Nil(t, decode(t, w)["path"])

	w = env.do(http.MethodDelete, "/api/v1/navigation/return-path", "", session)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestResourceSaveRecordsOutcome(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "canvas@example.org")
	session := withSession("resource-session")

	w := env.do(http.MethodGet, "/api/v1/navigation/save-result", "", session)
	assert.Equal(t, false, decode(t, w)["successful"])

	w = env.do(http.MethodPut, "/api/v1/resources/3/bmc/business_model_canvas",
		`{"payload":{"segments":["PME industrielles"]}}`, withToken(token), session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Business Model Canvas", decode(t, w)["substepTitle"])

	w = env.do(http.MethodGet, "/api/v1/navigation/save-result", "", session)
	body := decode(t, w)
	assert.Equal(t, true, body["successful"])
	assert.NotNil(t, body["at"])

	w = env.do(http.MethodGet, "/api/v1/resources/3/Business%20Model%20Canvas/business_model_canvas", "", withToken(token))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/v1/resources", "", withToken(token))
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = env.do(http.MethodPut, "/api/v1/resources/3/bmc/business_model_canvas", `{"payload":[1,2]}`, withToken(token), session)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(http.MethodGet, "/api/v1/navigation/save-result", "", session)
	assert.Equal(t, false, decode(t, w)["successful"])

	w = env.do(http.MethodGet, "/api/v1/resources/3/inconnu/business_model_canvas", "", withToken(token))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/v1/resources/3/bmc/business_model_canvas/attachments", "", withToken(token))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.do(http.MethodGet, "/api/v1/resources", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFunctionsWithoutProviders(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/functions/translate", `{"text":"","target_lang":"EN"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "", decode(t, w)["translatedText"])

	w = env.do(http.MethodPost, "/api/v1/functions/translate", `{"text":"Bonjour","target_lang":"EN"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Bonjour", body["translatedText"])
	assert.NotEmpty(t, body["error"])

	w = env.do(http.MethodPost, "/api/v1/functions/contact", `{"name":"Léa"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])

	w = env.do(http.MethodPost, "/api/v1/functions/contact", `{"name":"Léa","email":"lea@example.org","projectType":"SaaS",
		"message":"Bonjour","recipientEmail":"relay@example.com","subject":"Contact"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/v1/functions/contact", `{"name":"Léa","email":"lea@example.org","projectType":"SaaS",
		"message":"Bonjour","recipientEmail":"contact@fundroad.fr","subject":"Contact"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPublicEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/journey/steps", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 5, decode(t, w)["count"])

	w = env.do(http.MethodGet, "/api/v1/financing", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotZero(t, decode(t, w)["count"])

	w = env.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = env.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fundroad_http_request_duration_seconds")
}

func TestLiveSessionOverWebsocket(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/journey/live"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Len(t, resp.Header.Get(middleware.SessionHeader), 32, "a fresh 24-byte url-safe token")

	require.NoError(t, conn.WriteJSON(services.LiveClientMessage{Type: services.LiveNavigate, Path: "/roadmap/step/2", Query: "tab=course"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var sawTab, sawView bool
	for !(sawTab && sawView) {
		var msg services.LiveServerMessage
		require.NoError(t, conn.ReadJSON(&msg))
		switch msg.Type {
		case services.LiveTab:
			sawTab = true
			assert.Equal(t, "course", string(msg.Tab.Tab))
		case services.LiveView:
			sawView = true
			assert.Equal(t, uint64(1), msg.Generation)
			assert.Len(t, msg.View.Steps, 5)
		}
	}
}
