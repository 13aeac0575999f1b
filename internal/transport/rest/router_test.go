package rest_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/auth"
	"github.com/frahmantamala/fleet-management/internal/dashboard"
	"github.com/frahmantamala/fleet-management/internal/feedback"
	"github.com/frahmantamala/fleet-management/internal/fuel"
	"github.com/frahmantamala/fleet-management/internal/maintenance"
	"github.com/frahmantamala/fleet-management/internal/notification"
	"github.com/frahmantamala/fleet-management/internal/report"
	"github.com/frahmantamala/fleet-management/internal/testutil"
	"github.com/frahmantamala/fleet-management/internal/transport/rest"
	"github.com/frahmantamala/fleet-management/internal/transport/swagger"
	"github.com/frahmantamala/fleet-management/internal/trip"
	"github.com/frahmantamala/fleet-management/internal/user"
	"github.com/frahmantamala/fleet-management/internal/vehicle"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const apiPrefix = "/api/v1"

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rest Suite")
}

var _ = Describe("Router", func() {
	var (
		gormDB *gorm.DB
		router *chi.Mux
		doc    *openapi3.T
	)

	BeforeEach(func() {
		var err error
		gormDB, err = testutil.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := gormDB.DB()
		Expect(err).NotTo(HaveOccurred())

		doc, err = swagger.Load(context.Background(), "../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		cfg := internal.ServerConfig{AllowedOrigins: "https://fleet.example.com"}
		rest.RegisterAllRoutes(router, cfg, auth.MustNewPolicy(slog.Default()), rest.Handlers{
			Health:       rest.NewHealthHandler(sqlx.NewDb(sqlDB, "sqlite3")),
			Auth:         auth.NewHandler(nil),
			User:         user.NewHandler(nil),
			Vehicle:      vehicle.NewHandler(nil),
			Trip:         trip.NewHandler(nil),
			Fuel:         fuel.NewHandler(nil),
			Maintenance:  maintenance.NewHandler(nil),
			Report:       report.NewHandler(nil),
			Notification: notification.NewHandler(nil),
			Feedback:     feedback.NewHandler(nil),
			Dashboard:    dashboard.NewHandler(nil),
		}, slog.Default())
	})

	AfterEach(func() {
		testutil.Close(gormDB)
	})

	routes := func() map[string]bool {
		found := map[string]bool{}
		err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			if !strings.HasPrefix(route, apiPrefix) {
				return nil
			}
			path := strings.TrimPrefix(route, apiPrefix)
			if len(path) > 1 {
				path = strings.TrimSuffix(path, "/")
			}
			found[method+" "+path] = true
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		return found
	}

	It("documents every mounted route", func() {
		for key := range routes() {
			parts := strings.SplitN(key, " ", 2)
			Expect(swagger.Documents(doc, parts[0], parts[1])).To(BeTrue(), "undocumented route %s", key)
		}
	})

	It("mounts every documented operation", func() {
		mounted := routes()
		for path, item := range doc.Paths.Map() {
			for method := range item.Operations() {
				Expect(mounted).To(HaveKey(method+" "+path), "unrouted operation %s %s", method, path)
			}
		}
	})

	It("reports the database as ready", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, apiPrefix+"/health/ready", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Components).To(HaveKey("postgres"))
		Expect(resp.Status).To(Equal(rest.HealthHealthy))
	})

	It("rejects protected routes without a bearer token", func() {
		for _, path := range []string{"/vehicles", "/dashboard", "/notifications"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, apiPrefix+path, nil))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized), path)
		}
	})

	It("answers CORS preflight for configured origins", func() {
		req := httptest.NewRequest(http.MethodOptions, apiPrefix+"/vehicles", nil)
		req.Header.Set("Origin", "https://fleet.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://fleet.example.com"))
	})

	It("echoes the request id", func() {
		req := httptest.NewRequest(http.MethodGet, apiPrefix+"/health", nil)
		req.Header.Set("X-Request-ID", "trace-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("X-Request-ID")).To(Equal("trace-1"))
	})
})
