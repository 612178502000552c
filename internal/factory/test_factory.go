package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/arise-roster/internal/dependencies/mocks"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/services/accounts"
	"github.com/mcoot/arise-roster/internal/services/auth"
	"github.com/mcoot/arise-roster/internal/storage/memory"
	"github.com/mcoot/arise-roster/internal/testutil"
)

// TestPassword satisfies the password policy and is used for every
// account seeded by TestApp
const TestPassword = "Passw0rd"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked
// dependencies. The hub is running; call Close when done.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}

	app := newWithDependencies(store, mockClock, mockRandom, hasher, auth.DefaultConfig(), testutil.NopLogger())
	app.Start()

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// CreateAccount seeds an account with TestPassword
func (t *TestApp) CreateAccount(ctx context.Context, username string, role model.Role, team model.Team) (*model.Summary, error) {
	return t.AccountsService.Create(ctx, accounts.SystemSession(), accounts.CreateInput{
		Username: username,
		Password: TestPassword,
		Role:     string(role),
		Team:     string(team),
	})
}

// Login signs in a seeded account
func (t *TestApp) Login(ctx context.Context, username string) (*model.Session, error) {
	return t.AuthService.Login(ctx, username, TestPassword, "")
}
