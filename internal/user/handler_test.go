package user

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/fleet-management/internal/auth"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var (
		repo   *mockRepository
		router *chi.Mux
	)

	withCaller := func(req *http.Request, id identity.Identity) *http.Request {
		return req.WithContext(identity.WithIdentity(context.Background(), id))
	}

	BeforeEach(func() {
		repo = &mockRepository{users: map[string]*User{
			"admin-1": {ID: "admin-1", Name: "Ada", Role: identity.RoleAdmin},
			"pub-1":   {ID: "pub-1", Name: "Pat", Role: identity.RolePublicUser},
		}}
		h := NewHandler(NewService(repo, auth.MustNewPolicy(slog.Default()), slog.Default()))
		router = chi.NewRouter()
		router.Get("/users/me", h.GetCurrentUser)
		router.Put("/users/{id}/role", h.AssignRole)
	})

	It("answers 401 without an identity", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("assigns a role", func() {
		req := httptest.NewRequest(http.MethodPut, "/users/pub-1/role", strings.NewReader(`{"role":"department_head"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withCaller(req, identity.Identity{UserID: "admin-1", Role: identity.RoleAdmin}))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body struct {
			User User `json:"user"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.User.Role).To(Equal(identity.RoleDepartmentHead))
	})

	It("answers 400 for an invalid role", func() {
		req := httptest.NewRequest(http.MethodPut, "/users/pub-1/role", strings.NewReader(`{"role":"boss"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withCaller(req, identity.Identity{UserID: "admin-1", Role: identity.RoleAdmin}))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("answers 403 for non-admins", func() {
		req := httptest.NewRequest(http.MethodPut, "/users/pub-1/role", strings.NewReader(`{"role":"admin"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withCaller(req, identity.Identity{UserID: "pub-1", Role: identity.RolePublicUser}))
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})
})
