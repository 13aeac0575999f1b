package middleware_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/fleet-management/internal/auth"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/transport/middleware"
	chiMiddleware "github.com/go-chi/chi/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(rec *httptest.ResponseRecorder) errorBody {
	var body errorBody
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

var _ = Describe("RequirePermission", func() {
	var guarded http.Handler

	BeforeEach(func() {
		guarded = middleware.RequirePermission(auth.MustNewPolicy(slog.Default()), identity.ResourceDashboard, identity.ActionRead)(ok)
	})

	serve := func(id *identity.Identity) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		if id != nil {
			req = req.WithContext(identity.WithIdentity(req.Context(), *id))
		}
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		return rec
	}

	It("passes an allowed role through", func() {
		rec := serve(&identity.Identity{UserID: "a-1", Role: identity.RoleAdmin})
		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})

	It("forbids a role the policy does not list", func() {
		rec := serve(&identity.Identity{UserID: "d-1", Role: identity.RoleDriver})
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(decodeError(rec).Error.Type).To(Equal("FORBIDDEN"))
	})

	It("rejects a request without an identity", func() {
		rec := serve(nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(decodeError(rec).Error.Code).To(Equal("MISSING_CREDENTIALS"))
	})
})

var _ = Describe("RequestID", func() {
	var seen string

	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = chiMiddleware.GetReqID(r.Context())
	}))

	BeforeEach(func() {
		seen = ""
	})

	It("keeps the caller's request id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		Expect(seen).To(Equal("req-42"))
		Expect(rec.Header().Get(middleware.RequestIDHeader)).To(Equal("req-42"))
	})

	It("mints an id when none is sent", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(seen).NotTo(BeEmpty())
		Expect(rec.Header().Get(middleware.RequestIDHeader)).To(Equal(seen))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("answers a panic with an internal error body", func() {
		handler := middleware.RecoveryMiddleware(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		body := decodeError(rec)
		Expect(body.Error.Type).To(Equal("INTERNAL_ERROR"))
		Expect(body.Error.Message).NotTo(ContainSubstring("boom"))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("leaves the request body readable for the handler", func() {
		var got string
		handler := middleware.LoggingMiddleware(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			got = string(body)
			w.WriteHeader(http.StatusCreated)
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.c","password":"secret"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(got).To(ContainSubstring(`"password":"secret"`))
	})
})
