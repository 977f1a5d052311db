package sessionecho

import (
	"bytes"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auth0/go-session-middleware/codec"
	"github.com/auth0/go-session-middleware/core"
)

func newTestManager(t *testing.T) *core.Manager {
	t.Helper()

	tokenCodec, err := codec.New(codec.WithSecret([]byte("echo-adapter-test-secret")))
	require.NoError(t, err)
	manager, err := core.New(core.WithCodec(tokenCodec))
	require.NoError(t, err)
	return manager
}

func newTestServer(t *testing.T, opts ...Option) *echo.Echo {
	t.Helper()

	sessions, err := New(newTestManager(t), opts...)
	require.NoError(t, err)

	e := echo.New()
	e.Use(sessions.Handler)
	e.POST("/login", func(c echo.Context) error {
		if err := Establish(c, core.Claims{Subject: c.QueryParam("user"), ScopeContext: c.QueryParam("scope")}); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.POST("/logout", func(c echo.Context) error {
		Destroy(c)
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/me", func(c echo.Context) error {
		identity, err := CurrentUser(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, identity)
	}, sessions.RequireSession)
	e.GET("/late", func(c echo.Context) error {
		if err := c.String(http.StatusOK, "body first"); err != nil {
			return err
		}
		assert.ErrorIs(t, Establish(c, core.Claims{Subject: "u1"}), core.ErrCookieUnavailable)
		return nil
	})
	return e
}

func TestMiddleware_Lifecycle(t *testing.T) {
	server := httptest.NewServer(newTestServer(t))
	defer server.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	get := func() (int, string) {
		response, err := client.Get(server.URL + "/me")
		require.NoError(t, err)
		defer response.Body.Close()
		var body bytes.Buffer
		_, err = body.ReadFrom(response.Body)
		require.NoError(t, err)
		return response.StatusCode, body.String()
	}

	status, body := get()
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"code":"unauthorized","message":"Session is missing or invalid."}`, body)

	response, err := client.Post(server.URL+"/login?user=u1", "", nil)
	require.NoError(t, err)
	require.NoError(t, response.Body.Close())
	require.Equal(t, http.StatusNoContent, response.StatusCode)

	cookies := response.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "auth", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "/", cookies[0].Path)

	status, body = get()
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"userId":"u1"}`, body)

	response, err = client.Post(server.URL+"/logout", "", nil)
	require.NoError(t, err)
	require.NoError(t, response.Body.Close())

	status, _ = get()
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestEstablish_AfterCommit(t *testing.T) {
	recorder := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/late", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, recorder.Result().Cookies())
}

func TestDestroy_WithoutSessionCookie(t *testing.T) {
	recorder := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, recorder.Result().Cookies())
}

func TestHelpers_WithoutHandler(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := Establish(c, core.Claims{Subject: "u1"})
	assert.ErrorIs(t, err, core.ErrCookieUnavailable)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = CurrentUser(c)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NotPanics(t, func() { Destroy(c) })
}

func TestRequireSession_CustomErrorHandler(t *testing.T) {
	e := newTestServer(t, WithErrorHandler(func(c echo.Context, err error) error {
		return c.String(http.StatusForbidden, core.ErrorCode(err))
	}))

	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, core.ErrorCodeTokenMissing, recorder.Body.String())
}

func TestDefaultErrorHandler(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "unauthorized", err: core.ErrUnauthorized, wantStatus: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "cookie unavailable", err: core.ErrCookieUnavailable, wantStatus: http.StatusInternalServerError, wantCode: "cookie_unavailable"},
		{name: "other", err: assert.AnError, wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), recorder)

			require.NoError(t, DefaultErrorHandler(c, testCase.err))
			assert.Equal(t, testCase.wantStatus, recorder.Code)
			assert.Contains(t, recorder.Body.String(), `"code":"`+testCase.wantCode+`"`)
		})
	}
}
