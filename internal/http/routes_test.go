package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"task_manager/internal/config"
	"task_manager/internal/domain"
	"task_manager/internal/http/handlers"
	"task_manager/internal/repository/memstore"
	"task_manager/internal/service"
	"task_manager/internal/ws"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-0123456789"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		StoreDriver:        config.DriverMemory,
		JWTSecret:          testSecret,
		JWTIssuer:          "task-manager",
		TokenTTL:           time.Hour,
		BcryptCost:         bcrypt.MinCost,
		APIRateLimit:       1000,
		APIRateWindow:      time.Minute,
		AuthRateLimit:      1000,
		AuthRateWindow:     time.Minute,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		AppVersion:         "test",
	}

	store := memstore.New()
	hub := ws.NewHub()
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	audit := service.NewAuditService(store.Audit())
	auth := service.NewAuthService(store.Users(), service.NewPasswordHasher(cfg.BcryptCost), tokens, audit)
	tasks := service.NewTaskService(store.Tasks(), hub, audit)

	r := gin.New()
	RegisterRoutes(r, Deps{
		Config:  cfg,
		Handler: handlers.NewHandler(auth, tasks, audit),
		Health:  handlers.NewHealthHandler(map[string]handlers.Check{"database": store.Ping}, cfg.AppVersion),
		Tokens:  tokens,
		Hub:     hub,
	})
	return r
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

type authBody struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Token   string `json:"token"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func signupAndLogin(t *testing.T, r http.Handler, name, email, password string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/user/signup", "", gin.H{"name": name, "email": email, "password": password})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: %d %s", email, w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodPost, "/user/login", "", gin.H{"email": email, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}
	return decode[authBody](t, w).Token
}

func TestSignupLoginCreateListScenario(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/user/signup", "", gin.H{"name": "Alice", "email": "a@x.com", "password": "pw1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}
	if body := decode[authBody](t, w); body.Token == "" || body.Name != "Alice" {
		t.Fatalf("signup body = %+v", body)
	}

	w = do(t, r, http.MethodPost, "/user/login", "", gin.H{"email": "a@x.com", "password": "pw1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	login := decode[authBody](t, w)
	if login.Name != "Alice" || login.Token == "" {
		t.Fatalf("login body = %+v", login)
	}
	token := login.Token

	w = do(t, r, http.MethodPost, "/task/newtask", token, gin.H{"title": "T1", "description": "first"})
	if w.Code != http.StatusOK {
		t.Fatalf("newtask: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/tasks", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tasks: %d %s", w.Code, w.Body.String())
	}
	list := decode[[]domain.Task](t, w)
	if len(list) != 1 || list[0].Title != "T1" || list[0].Priority != domain.PriorityLow || list[0].Status != domain.StatusPending {
		t.Fatalf("tasks = %+v", list)
	}
	if list[0].OwnerEmail != "a@x.com" {
		t.Fatalf("owner email = %q", list[0].OwnerEmail)
	}

	w = do(t, r, http.MethodPost, "/task/newtask", token, gin.H{"title": "T1", "description": "again"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate newtask: %d %s", w.Code, w.Body.String())
	}
	if e := decode[errorBody](t, w); e.Code != "DUPLICATE_TITLE" {
		t.Fatalf("duplicate code = %q", e.Code)
	}
}

func TestSignupDuplicateAndLoginFailures(t *testing.T) {
	r := newTestRouter(t)
	signupAndLogin(t, r, "Alice", "a@x.com", "pw1")

	w := do(t, r, http.MethodPost, "/user/signup", "", gin.H{"name": "Other", "email": "a@x.com", "password": "zzz"})
	if w.Code != http.StatusBadRequest || decode[errorBody](t, w).Code != "DUPLICATE_EMAIL" {
		t.Fatalf("duplicate signup: %d %s", w.Code, w.Body.String())
	}

	unknown := do(t, r, http.MethodPost, "/user/login", "", gin.H{"email": "nobody@x.com", "password": "pw1"})
	wrong := do(t, r, http.MethodPost, "/user/login", "", gin.H{"email": "a@x.com", "password": "nope"})
	if unknown.Code != http.StatusBadRequest || wrong.Code != http.StatusBadRequest {
		t.Fatalf("login failures: %d, %d", unknown.Code, wrong.Code)
	}
	if unknown.Body.String() != wrong.Body.String() {
		t.Fatalf("login failures distinguishable: %s vs %s", unknown.Body.String(), wrong.Body.String())
	}

	w = do(t, r, http.MethodPost, "/user/signup", "", gin.H{"name": "Bad", "email": "not-an-email", "password": "pw"})
	if w.Code != http.StatusBadRequest || decode[errorBody](t, w).Code != "VALIDATION_ERROR" {
		t.Fatalf("invalid email: %d %s", w.Code, w.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/tasks", "", nil)
	if w.Code != http.StatusUnauthorized || decode[errorBody](t, w).Code != "MISSING_TOKEN" {
		t.Fatalf("no token: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/tasks", "not.a.jwt", nil)
	if w.Code != http.StatusUnauthorized || decode[errorBody](t, w).Code != "INVALID_TOKEN" {
		t.Fatalf("bad token: %d %s", w.Code, w.Body.String())
	}

	other := service.NewTokenIssuer("a-different-secret-value", "task-manager", time.Hour)
	forged, _, err := other.Issue("u1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	w = do(t, r, http.MethodPost, "/task/newtask", forged, gin.H{"title": "T", "description": "d"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("forged token: %d %s", w.Code, w.Body.String())
	}
}

func TestTasksAreIsolatedBetweenUsers(t *testing.T) {
	r := newTestRouter(t)
	alice := signupAndLogin(t, r, "Alice", "a@x.com", "pw1")
	bob := signupAndLogin(t, r, "Bob", "b@x.com", "pw2")

	if w := do(t, r, http.MethodPost, "/task/newtask", alice, gin.H{"title": "Shared", "description": "alice"}); w.Code != http.StatusOK {
		t.Fatalf("alice create: %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/task/newtask", bob, gin.H{"title": "Shared", "description": "bob"}); w.Code != http.StatusOK {
		t.Fatalf("bob create same title: %d %s", w.Code, w.Body.String())
	}

	w := do(t, r, http.MethodGet, "/tasks", bob, nil)
	list := decode[[]domain.Task](t, w)
	if len(list) != 1 || list[0].Description != "bob" {
		t.Fatalf("bob sees %+v", list)
	}

	// bob cannot touch alice's task even by title
	w = do(t, r, http.MethodDelete, "/task/deletetask", bob, gin.H{"title": "Shared"})
	if w.Code != http.StatusOK {
		t.Fatalf("bob delete own: %d", w.Code)
	}
	w = do(t, r, http.MethodGet, "/tasks", alice, nil)
	if list := decode[[]domain.Task](t, w); len(list) != 1 || list[0].Description != "alice" {
		t.Fatalf("alice lost her task: %+v", list)
	}
}

func TestListTasksEmptyIsArray(t *testing.T) {
	r := newTestRouter(t)
	token := signupAndLogin(t, r, "Alice", "a@x.com", "pw1")

	w := do(t, r, http.MethodGet, "/tasks", token, nil)
	if w.Code != http.StatusOK || bytes.TrimSpace(w.Body.Bytes())[0] != '[' {
		t.Fatalf("empty list: %d %s", w.Code, w.Body.String())
	}
}

func TestUpdateAndDeleteTask(t *testing.T) {
	r := newTestRouter(t)
	token := signupAndLogin(t, r, "Alice", "a@x.com", "pw1")

	do(t, r, http.MethodPost, "/task/newtask", token, gin.H{"title": "My Task", "description": "d"})
	do(t, r, http.MethodPost, "/task/newtask", token, gin.H{"title": "Other", "description": "d"})

	path := "/task/" + url.PathEscape("My Task")

	w := do(t, r, http.MethodPut, path, token, gin.H{"title": "My Task", "description": "d"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("partial update: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, path, token, gin.H{"title": "Other", "description": "d", "priority": "High", "status": "Completed"})
	if w.Code != http.StatusBadRequest || decode[errorBody](t, w).Code != "DUPLICATE_TITLE" {
		t.Fatalf("rename collision: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, "/task/missing", token, gin.H{"title": "x", "description": "d", "priority": "High", "status": "Completed"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing update: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, path, token, gin.H{"title": "Renamed", "description": "new", "priority": "High", "status": "In Progress"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	updated := decode[struct {
		Message string      `json:"message"`
		Task    domain.Task `json:"task"`
	}](t, w)
	if updated.Task.Title != "Renamed" || updated.Task.Status != domain.StatusInProgress {
		t.Fatalf("updated = %+v", updated.Task)
	}

	w = do(t, r, http.MethodDelete, "/task/deletetask", token, gin.H{"title": "nope"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete missing: %d", w.Code)
	}
	if list := decode[[]domain.Task](t, do(t, r, http.MethodGet, "/tasks", token, nil)); len(list) != 2 {
		t.Fatalf("failed delete changed tasks: %+v", list)
	}

	w = do(t, r, http.MethodDelete, "/task/deletetask", token, gin.H{"title": "Renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	del := decode[struct {
		Message        string        `json:"message"`
		RemainingTasks []domain.Task `json:"remainingTasks"`
	}](t, w)
	if len(del.RemainingTasks) != 1 || del.RemainingTasks[0].Title != "Other" {
		t.Fatalf("remaining = %+v", del.RemainingTasks)
	}
}

func TestMeAndActivity(t *testing.T) {
	r := newTestRouter(t)
	token := signupAndLogin(t, r, "Alice", "a@x.com", "pw1")

	w := do(t, r, http.MethodGet, "/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d", w.Code)
	}
	me := decode[map[string]any](t, w)
	if me["name"] != "Alice" || me["email"] != "a@x.com" {
		t.Fatalf("me = %v", me)
	}

	w = do(t, r, http.MethodGet, "/me/activity", token, nil)
	entries := decode[[]domain.AuditLog](t, w)
	if len(entries) != 2 || entries[0].Action != domain.AuditActionLogin {
		t.Fatalf("activity = %+v", entries)
	}
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		if w := do(t, r, http.MethodGet, path, "", nil); w.Code != http.StatusOK {
			t.Fatalf("%s: %d", path, w.Code)
		}
	}
	if w := do(t, r, http.MethodGet, "/nope", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown route: %d", w.Code)
	}
}

func TestUpdateTaskWithSlashInTitle(t *testing.T) {
	r := newTestRouter(t)
	token := signupAndLogin(t, r, "Alice", "a@x.com", "pw1")

	if w := do(t, r, http.MethodPost, "/task/newtask", token, gin.H{"title": "a/b", "description": "d"}); w.Code != http.StatusOK {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}

	w := do(t, r, http.MethodPut, "/task/"+url.PathEscape("a/b"), token,
		gin.H{"title": "a/b", "description": "changed", "priority": "Medium", "status": "Completed"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	updated := decode[struct {
		Task domain.Task `json:"task"`
	}](t, w)
	if updated.Task.Title != "a/b" || updated.Task.Description != "changed" {
		t.Fatalf("updated = %+v", updated.Task)
	}
}

func TestSignupRejectsBlankName(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/user/signup", "", gin.H{"name": "   ", "email": "a@x.com", "password": "pw1"})
	if w.Code != http.StatusBadRequest || decode[errorBody](t, w).Code != "VALIDATION_ERROR" {
		t.Fatalf("blank name: %d %s", w.Code, w.Body.String())
	}
}
