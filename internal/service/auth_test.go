package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tasklist/tasklist-api/internal/crypto"
	"github.com/tasklist/tasklist-api/internal/model"
)

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), model.RegisterRequest{
		Name:     "",
		Email:    "not-an-email",
		Password: "123",
	})
	wantFieldError(t, err, "name")
	wantFieldError(t, err, "email")
	wantFieldError(t, err, "password")
}

func TestRegister_IssuesToken(t *testing.T) {
	env := newTestEnv(t)
	res := env.register(t, "a@example.com")

	if res.Token == "" {
		t.Fatal("Register() returned empty token")
	}
	if res.User.ID == "" || res.User.Email != "a@example.com" {
		t.Errorf("Register() user = %+v", res.User)
	}
	if res.User.Password == "secret123" {
		t.Error("password stored in plaintext")
	}

	sess, err := env.auth.Authenticate(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("Authenticate() unexpected error: %v", err)
	}
	if sess.User.ID != res.User.ID {
		t.Errorf("Authenticate() user = %s, want %s", sess.User.ID, res.User.ID)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dup@example.com")

	_, err := env.auth.Register(context.Background(), model.RegisterRequest{
		Name: "Other", Email: "dup@example.com", Password: "secret123",
	})
	wantFieldError(t, err, "email")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@example.com")
	ctx := context.Background()

	res, err := env.auth.Login(ctx, model.LoginRequest{Email: "a@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	if res.Token == "" || !res.ExpiresAt.Equal(env.clock.Now().Add(time.Hour)) {
		t.Errorf("Login() = %+v", res)
	}

	if _, err := env.auth.Login(ctx, model.LoginRequest{Email: "a@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := env.auth.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "secret123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown email) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_RehashesLegacyPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	legacy, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	user := &model.User{Name: "Old", Email: "old@example.com", Password: string(legacy)}
	if err := env.users.Create(ctx, user); err != nil {
		t.Fatal(err)
	}

	if _, err := env.auth.Login(ctx, model.LoginRequest{Email: "old@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}

	stored, _ := env.users.GetByID(ctx, user.ID)
	if crypto.NeedsRehash(stored.Password) {
		t.Errorf("password not rehashed, still %q", stored.Password[:4])
	}
}

func TestAuthenticate_Classification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.register(t, "a@example.com")

	if _, err := env.auth.Authenticate(ctx, ""); !errors.Is(err, ErrTokenMissing) {
		t.Errorf("empty token error = %v, want ErrTokenMissing", err)
	}
	if _, err := env.auth.Authenticate(ctx, "garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("garbage token error = %v, want ErrTokenInvalid", err)
	}

	env.clock.Advance(59 * time.Minute)
	if _, err := env.auth.Authenticate(ctx, res.Token); err != nil {
		t.Errorf("token before expiry error = %v", err)
	}

	env.clock.Advance(2 * time.Minute)
	if _, err := env.auth.Authenticate(ctx, res.Token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("token past expiry error = %v, want ErrTokenExpired", err)
	}
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.register(t, "a@example.com")

	if err := env.users.SoftDelete(ctx, res.User.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.auth.Authenticate(ctx, res.Token); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Authenticate() error = %v, want ErrUserNotFound", err)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.register(t, "a@example.com")

	sess, err := env.auth.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatal(err)
	}
	if err := env.auth.Logout(ctx, sess); err != nil {
		t.Fatalf("Logout() unexpected error: %v", err)
	}

	if _, err := env.auth.Authenticate(ctx, res.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Authenticate() after logout error = %v, want ErrTokenInvalid", err)
	}
	if _, err := env.auth.Refresh(ctx, res.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Refresh() after logout error = %v, want ErrTokenInvalid", err)
	}
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.register(t, "a@example.com")

	env.clock.Advance(time.Second)
	refreshed, err := env.auth.Refresh(ctx, res.Token)
	if err != nil {
		t.Fatalf("Refresh() unexpected error: %v", err)
	}
	if refreshed.Token == res.Token {
		t.Fatal("Refresh() returned the same token")
	}
	if refreshed.User.ID != res.User.ID {
		t.Errorf("Refresh() user = %s, want %s", refreshed.User.ID, res.User.ID)
	}

	if _, err := env.auth.Authenticate(ctx, res.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("old token after refresh error = %v, want ErrTokenInvalid", err)
	}
	if _, err := env.auth.Authenticate(ctx, refreshed.Token); err != nil {
		t.Errorf("new token error = %v", err)
	}
}

func TestRefresh_GraceWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := env.register(t, "a@example.com")
	env.clock.Advance(2 * time.Hour)
	if _, err := env.auth.Refresh(ctx, res.Token); err != nil {
		t.Errorf("Refresh() inside grace window error = %v", err)
	}

	late := env.register(t, "b@example.com")
	env.clock.Advance(25 * time.Hour)
	if _, err := env.auth.Refresh(ctx, late.Token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Refresh() past grace window error = %v, want ErrTokenExpired", err)
	}

	if _, err := env.auth.Refresh(ctx, ""); !errors.Is(err, ErrTokenMissing) {
		t.Errorf("Refresh(\"\") error = %v, want ErrTokenMissing", err)
	}
}

func TestIsAuthFailure(t *testing.T) {
	for _, err := range []error{ErrTokenMissing, ErrTokenExpired, ErrTokenInvalid, ErrInvalidCredentials, ErrUserNotFound} {
		if !IsAuthFailure(err) {
			t.Errorf("IsAuthFailure(%v) = false", err)
		}
	}
	if IsAuthFailure(ErrNotFound) {
		t.Error("IsAuthFailure(ErrNotFound) = true")
	}
}

func TestLookupUser_CancelledCallerDoesNotFailOthers(t *testing.T) {
	env := newTestEnv(t)
	res := env.register(t, "shared@example.com")
	ctx := context.Background()

	// The test store has a single connection; holding it in a transaction
	// keeps the shared lookup in flight while both callers wait on it.
	tx, err := env.db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}

	ctxA, cancelA := context.WithCancel(ctx)
	defer cancelA()
	errA := make(chan error, 1)
	go func() {
		_, err := env.auth.lookupUser(ctxA, res.User.ID)
		errA <- err
	}()
	time.Sleep(50 * time.Millisecond)

	type outcome struct {
		user model.User
		err  error
	}
	outB := make(chan outcome, 1)
	go func() {
		u, err := env.auth.lookupUser(ctx, res.User.ID)
		outB <- outcome{u, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller err = %v, want context.Canceled", err)
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	select {
	case b := <-outB:
		if b.err != nil {
			t.Fatalf("healthy caller err = %v", b.err)
		}
		if b.user.ID != res.User.ID {
			t.Errorf("user = %q, want %q", b.user.ID, res.User.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("healthy caller did not return")
	}
}
