package auth

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/notification"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Module Suite")
}

type mockAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{accounts: map[string]*Account{}}
}

func (m *mockAccountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccountRepository) Create(ctx context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

type sentNotification struct {
	Target  notification.Target
	Message string
	Type    notification.Type
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Notify(ctx context.Context, target notification.Target, message string, typ notification.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{Target: target, Message: message, Type: typ})
	return nil
}

var _ = Describe("Service", func() {
	var (
		repo     *mockAccountRepository
		notifier *recordingNotifier
		tokens   *JWTTokenGenerator
		service  *Service
		ctx      context.Context
	)

	BeforeEach(func() {
		repo = newMockAccountRepository()
		notifier = &recordingNotifier{}
		tokens = NewJWTTokenGenerator("test-secret-that-is-long-enough-for-hs256", time.Hour)
		service = NewService(repo, tokens, notifier, bcrypt.MinCost, slog.Default())
		ctx = context.Background()

		hash, err := service.HashPassword("driverpass")
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Create(ctx, &Account{
			ID:           "driver-1",
			Name:         "Dina Driver",
			Email:        "dina@fleet.test",
			PasswordHash: hash,
			Role:         identity.RoleDriver,
		})).To(Succeed())
	})

	Describe("Authenticate", func() {
		It("issues a token carrying the user's role", func() {
			resp, err := service.Authenticate(ctx, LoginDTO{Email: "Dina@Fleet.test ", Password: "driverpass"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.ID).To(Equal("driver-1"))
			Expect(resp.User.Role).To(Equal(identity.RoleDriver))

			claims, err := tokens.ValidateToken(resp.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("driver-1"))
			Expect(claims.Role).To(Equal(identity.RoleDriver))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Email: "dina@fleet.test", Password: "nope-nope"})
			Expect(err).To(MatchError(ErrInvalidCredentials))
		})

		It("does not reveal unknown emails", func() {
			_, err := service.Authenticate(ctx, LoginDTO{Email: "ghost@fleet.test", Password: "whatever1"})
			Expect(err).To(MatchError(ErrInvalidCredentials))
		})

		It("requires both fields", func() {
			_, err := service.Authenticate(ctx, LoginDTO{})
			Expect(internal.ErrorTypeOf(err)).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("Register", func() {
		It("creates a public user and notifies the admins", func() {
			resp, err := service.Register(ctx, RegisterDTO{Name: "Pat Public", Email: "pat@fleet.test", Password: "password1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.Role).To(Equal(identity.RolePublicUser))
			Expect(resp.Token).NotTo(BeEmpty())

			stored, err := repo.GetByEmail(ctx, "pat@fleet.test")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.PasswordHash).NotTo(Equal("password1"))

			Expect(notifier.sent).To(HaveLen(1))
			Expect(notifier.sent[0].Target).To(Equal(notification.Admins()))
			Expect(notifier.sent[0].Type).To(Equal(notification.TypeUser))
			Expect(notifier.sent[0].Message).To(Equal("New user registered: Pat Public (pat@fleet.test). Assign a role if necessary."))
		})

		It("refuses a taken email", func() {
			_, err := service.Register(ctx, RegisterDTO{Name: "Dup", Email: "dina@fleet.test", Password: "password1"})
			Expect(err).To(MatchError(ErrEmailTaken))
			Expect(internal.ErrorTypeOf(err)).To(Equal(internal.ErrorTypeConflict))
			Expect(notifier.sent).To(BeEmpty())
		})

		It("validates the payload", func() {
			_, err := service.Register(ctx, RegisterDTO{Name: "", Email: "not-an-email", Password: "short"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors).To(HaveLen(3))
		})
	})

	Describe("Verify", func() {
		It("reflects the stored role rather than the token's", func() {
			resp, err := service.Authenticate(ctx, LoginDTO{Email: "dina@fleet.test", Password: "driverpass"})
			Expect(err).NotTo(HaveOccurred())

			repo.accounts["driver-1"].Role = identity.RoleAdmin

			caller, err := service.Verify(ctx, resp.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(caller.Role).To(Equal(identity.RoleAdmin))
			Expect(caller.Email).To(Equal("dina@fleet.test"))
		})

		It("rejects a token for a deleted account", func() {
			token, _, err := tokens.GenerateAccessToken("gone", identity.RoleDriver)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Verify(ctx, token)
			Expect(err).To(MatchError(ErrInvalidToken))
		})

		It("rejects garbage", func() {
			_, err := service.Verify(ctx, "not.a.jwt")
			Expect(err).To(MatchError(ErrInvalidToken))
			Expect(internal.ErrorTypeOf(err)).To(Equal(internal.ErrorTypeUnauthorized))
		})
	})
})

var _ = Describe("JWTTokenGenerator", func() {
	It("reports expired tokens", func() {
		gen := NewJWTTokenGenerator("test-secret-that-is-long-enough-for-hs256", time.Minute)
		gen.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := gen.GenerateAccessToken("u-1", identity.RoleAdmin)
		Expect(err).NotTo(HaveOccurred())

		gen.now = time.Now
		_, err = gen.ValidateToken(token)
		Expect(err).To(MatchError(ErrTokenExpired))
	})

	It("rejects tokens signed with another secret", func() {
		a := NewJWTTokenGenerator("secret-a-secret-a-secret-a-secret-a", time.Hour)
		b := NewJWTTokenGenerator("secret-b-secret-b-secret-b-secret-b", time.Hour)
		token, _, err := a.GenerateAccessToken("u-1", identity.RoleAdmin)
		Expect(err).NotTo(HaveOccurred())
		_, err = b.ValidateToken(token)
		Expect(err).To(MatchError(ErrInvalidToken))
	})

	It("defaults the lifetime to five hours", func() {
		gen := NewJWTTokenGenerator("test-secret-that-is-long-enough-for-hs256", 0)
		Expect(gen.AccessTokenTTL).To(Equal(5 * time.Hour))
	})
})
