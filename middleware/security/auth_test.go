package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	usermodel "VProject/module/user/model"
	"VProject/service/storage"
	toolsec "VProject/tools/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthOptions(t *testing.T) (Options, *storage.MemoryUserDirectory) {
	t.Helper()
	dir := storage.NewMemoryUserDirectory()
	dir.Put(&usermodel.User{ID: 1, Username: "alice", Email: "alice@example.com"})
	return Options{
		JWT:       toolsec.DefaultOptions([]byte("auth-test-secret")),
		Directory: dir,
	}, dir
}

func runAuth(t *testing.T, opts Options, mutate func(*http.Request)) *usermodel.User {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/ws/chat/", nil)
	mutate(req)
	c.Request = req

	TokenAuth(opts)(c)
	return UserFrom(c)
}

func TestTokenAuthQueryParam(t *testing.T) {
	opts, _ := newAuthOptions(t)
	token, _, err := toolsec.Generate(opts.JWT, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	user := runAuth(t, opts, func(r *http.Request) {
		q := r.URL.Query()
		q.Set("token", token)
		r.URL.RawQuery = q.Encode()
	})
	if user == nil || user.ID != 1 {
		t.Fatalf("expected user 1, got %v", user)
	}
}

func TestTokenAuthBearerHeader(t *testing.T) {
	opts, _ := newAuthOptions(t)
	token, _, err := toolsec.Generate(opts.JWT, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	user := runAuth(t, opts, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	if user == nil || user.ID != 1 {
		t.Fatalf("expected user 1, got %v", user)
	}
}

func TestTokenAuthAnonymousPaths(t *testing.T) {
	opts, _ := newAuthOptions(t)
	valid, _, err := toolsec.Generate(opts.JWT, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	vanished, _, err := toolsec.Generate(opts.JWT, 99) // not in the directory
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	foreign, _, err := toolsec.Generate(toolsec.DefaultOptions([]byte("other-secret")), 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*http.Request)
	}{
		{"no token", func(r *http.Request) {}},
		{"garbage token", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", "not-a-jwt")
			r.URL.RawQuery = q.Encode()
		}},
		{"wrong signature", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", foreign)
			r.URL.RawQuery = q.Encode()
		}},
		{"vanished user", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", vanished)
			r.URL.RawQuery = q.Encode()
		}},
		{"malformed authorization header", func(r *http.Request) {
			r.Header.Set("Authorization", valid) // no Bearer prefix
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if user := runAuth(t, opts, tc.mutate); user != nil {
				t.Fatalf("expected anonymous, got %v", user)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/messages/2", nil)

	RequireAuth()(c)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/messages/2", nil)
	c.Set(CtxUserKey, &usermodel.User{ID: 1, Username: "alice"})

	RequireAuth()(c)
	if c.IsAborted() {
		t.Fatalf("authenticated request was aborted")
	}
}
