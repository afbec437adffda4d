package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kayushan/JSTREAM/internal/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t)
	svc, err := NewService(db.Conn, "", testutil.NopLogger())
	require.NoError(t, err)
	return svc
}

func TestCreateAccountAndSignIn(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateAccount(ctx, "Viewer@Example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "viewer@example.com", user.Email)
	assert.NotEmpty(t, user.ID)

	session, err := svc.SignIn(ctx, "viewer@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestSignInWrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "viewer@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "viewer@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "viewer@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, "viewer@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "viewer@example.com", "hunter22")
	require.NoError(t, err)
	session, err := svc.SignIn(ctx, "viewer@example.com", "hunter22")
	require.NoError(t, err)

	got := svc.GetSession(ctx, session.Token)
	require.NotNil(t, got)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "viewer@example.com", got.Email)

	// A bad token is no session, not an error surface.
	assert.Nil(t, svc.GetSession(ctx, "not-a-token"))
}

func TestSignOut(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "viewer@example.com", "hunter22")
	require.NoError(t, err)
	session, err := svc.SignIn(ctx, "viewer@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, session.Token))
	assert.Nil(t, svc.GetSession(ctx, session.Token))

	// Repeated sign-out and garbage tokens both succeed quietly.
	assert.NoError(t, svc.SignOut(ctx, session.Token))
	assert.NoError(t, svc.SignOut(ctx, "garbage"))
}

func TestEnsureDefaultAccount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultAccount(ctx, "admin@example.com", "changeme"))

	session, err := svc.SignIn(ctx, "admin@example.com", "changeme")
	require.NoError(t, err)
	assert.NotNil(t, session)

	// A populated table is left alone.
	require.NoError(t, svc.EnsureDefaultAccount(ctx, "other@example.com", "pw"))
	_, err = svc.SignIn(ctx, "other@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPruneExpiredSessions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "viewer@example.com", "hunter22")
	require.NoError(t, err)
	session, err := svc.SignIn(ctx, "viewer@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-time.Hour), session.ID)
	require.NoError(t, err)

	pruned, err := svc.PruneExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{session.ID}, pruned)
	assert.Nil(t, svc.GetSession(ctx, session.Token))
}

func TestSecretPersistence(t *testing.T) {
	db := testutil.NewTestDB(t)

	first, err := NewService(db.Conn, "", testutil.NopLogger())
	require.NoError(t, err)

	_, err = first.CreateAccount(context.Background(), "viewer@example.com", "hunter22")
	require.NoError(t, err)
	session, err := first.SignIn(context.Background(), "viewer@example.com", "hunter22")
	require.NoError(t, err)

	// A second service over the same database reuses the stored secret,
	// so tokens issued before a restart stay valid.
	second, err := NewService(db.Conn, "", testutil.NopLogger())
	require.NoError(t, err)
	assert.NotNil(t, second.GetSession(context.Background(), session.Token))
}

func TestRequireSessionMiddleware(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "viewer@example.com", "hunter22")
	require.NoError(t, err)
	session, err := svc.SignIn(ctx, "viewer@example.com", "hunter22")
	require.NoError(t, err)

	e := echo.New()
	handler := svc.RequireSession()(func(c echo.Context) error {
		got := SessionFromContext(c)
		require.NotNil(t, got)
		return c.String(http.StatusOK, got.UserID)
	})

	run := func(authorize func(*http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authorize != nil {
			authorize(req)
		}
		rec := httptest.NewRecorder()
		err := handler(e.NewContext(req, rec))
		if err != nil {
			e.HTTPErrorHandler(err, e.NewContext(req, rec))
		}
		return rec
	}

	rec := run(func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+session.Token)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.UserID, rec.Body.String())

	rec = run(func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// An unrelated auth scheme on the header must not mask the cookie.
	rec = run(func(r *http.Request) {
		r.Header.Set("Authorization", "Basic cHJveHk6c2VjcmV0")
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = run(nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = run(func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer bogus")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
