package feedback

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/fleet-management/internal/auth"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var (
		repo   *mockRepository
		router *chi.Mux
	)

	BeforeEach(func() {
		repo = &mockRepository{items: map[string]*Feedback{}}
		h := NewHandler(NewService(repo, &recordingNotifier{}, auth.MustNewPolicy(slog.Default()), slog.Default()))
		router = chi.NewRouter()
		router.Post("/feedback", h.SubmitFeedback)
		router.Get("/feedback", h.ListFeedback)
	})

	It("accepts anonymous submissions", func() {
		body := `{"name":"Pat","email":"pat@example.com","message":"Great service"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(body)))

		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Body.String()).To(ContainSubstring("Feedback submitted successfully"))
		Expect(repo.items).To(HaveLen(1))
	})

	It("answers 400 for malformed JSON", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(`{"name":`)))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("answers 401 when listing without an identity", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feedback", nil))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
