package handlers

import (
	"context"
	"net/http"

	"task_manager/internal/models"
	"task_manager/internal/policy"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerUser *models.User
	registerErr  error
	loginUser    *models.User
	loginErr     error
	logoutErr    error
	sessions     map[string]*service.Session // bearer token -> session
	authErr      error

	lastRegister service.RegisterInput
	lastLogin    service.LoginInput
	lastLogout   string
	lastToken    string
	registered   int
}

func (m *mockAuth) Register(ctx context.Context, in service.RegisterInput) (*models.User, string, error) {
	m.registered++
	m.lastRegister = in
	if m.registerErr != nil {
		return nil, "", m.registerErr
	}
	return m.registerUser, "new-token", nil
}

func (m *mockAuth) Login(ctx context.Context, in service.LoginInput) (*models.User, string, error) {
	m.lastLogin = in
	if m.loginErr != nil {
		return nil, "", m.loginErr
	}
	return m.loginUser, "login-token", nil
}

func (m *mockAuth) Logout(ctx context.Context, tokenID string) error {
	m.lastLogout = tokenID
	return m.logoutErr
}

func (m *mockAuth) Authenticate(ctx context.Context, token string) (*service.Session, error) {
	m.lastToken = token
	if m.authErr != nil {
		return nil, m.authErr
	}
	sess, ok := m.sessions[token]
	if !ok {
		return nil, service.ErrUnauthenticated
	}
	return sess, nil
}

func (m *mockAuth) EnsureAdmin(ctx context.Context, username, password, fullName string) (bool, error) {
	return false, nil
}

type mockTasks struct {
	tasks     map[int]*models.Task
	createErr error
	updateErr error
	listErr   error

	lastScope   *int
	listCalls   int
	lastCreate  service.CreateTaskInput
	createCalls int
	lastUpdate  service.UpdateTaskInput
	updateCalls int
	deleted     []int
}

func (m *mockTasks) List(ctx context.Context, ownerID *int) ([]models.Task, error) {
	m.listCalls++
	m.lastScope = ownerID
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Task
	for _, t := range m.tasks {
		if ownerID == nil || t.UserID == *ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTasks) Get(ctx context.Context, id int) (*models.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTasks) Create(ctx context.Context, in service.CreateTaskInput) (*models.Task, error) {
	m.createCalls++
	m.lastCreate = in
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.Task{ID: 99, Title: in.Title, Description: in.Description, Status: in.Status, UserID: 2}, nil
}

func (m *mockTasks) Update(ctx context.Context, task *models.Task, in service.UpdateTaskInput) (*models.Task, error) {
	m.updateCalls++
	m.lastUpdate = in
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	out := *task
	if in.Title != nil {
		out.Title = *in.Title
	}
	return &out, nil
}

func (m *mockTasks) Delete(ctx context.Context, id int) error {
	if _, ok := m.tasks[id]; !ok {
		return service.ErrNotFound
	}
	delete(m.tasks, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockUsers struct {
	users []models.User
	err   error
	calls int
}

func (m *mockUsers) List(ctx context.Context) ([]models.User, error) {
	m.calls++
	return m.users, m.err
}

// ---- Shared Test Helpers ----

var (
	testAdmin = models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}
	testAlice = models.User{ID: 2, Username: "alice", Role: models.RoleUser}
	testBob   = models.User{ID: 3, Username: "bob", Role: models.RoleUser}
)

// newMockAuth knows the bearer tokens "admin", "alice" and "bob".
func newMockAuth() *mockAuth {
	return &mockAuth{
		sessions: map[string]*service.Session{
			"admin": {User: testAdmin, TokenID: "jti-admin"},
			"alice": {User: testAlice, TokenID: "jti-alice"},
			"bob":   {User: testBob, TokenID: "jti-bob"},
		},
	}
}

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWithPolicy(s, policy.Options{PublicRegistration: true})
}

func newTestRouterWithPolicy(s *service.Service, opts policy.Options) *gin.Engine {
	h := NewHandler(s, policy.New(opts), nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
