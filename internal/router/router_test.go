package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/DavidJaure/CRUDapiDB/internal/config"
	"github.com/DavidJaure/CRUDapiDB/internal/dto"
	"github.com/DavidJaure/CRUDapiDB/internal/infra"
	"github.com/DavidJaure/CRUDapiDB/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                 8000,
		Env:                  "test",
		CORSOrigins:          "*",
		DatabaseDriver:       "sqlite",
		JWTSecret:            testSecret,
		JWTExpirationMinutes: 30,
		BcryptCost:           bcrypt.MinCost,
		LoginRateLimit:       100,
	}
}

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, err := infra.NewDatabase(infra.DatabaseOptions{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "router.db"),
	})
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return New(testConfig(), db, nil), db
}

type client struct {
	t *testing.T
	r http.Handler
}

func (c client) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

func (c client) register(username, password, displayName string) dto.PerfilResponse {
	c.t.Helper()
	w := c.do(http.MethodPost, "/auth/register", "", gin.H{
		"username": username, "password": password, "displayName": displayName,
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	var p dto.PerfilResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func (c client) login(username, password string) string {
	c.t.Helper()
	w := c.do(http.MethodPost, "/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func profilePath(id uint) string {
	return "/biciusuarios/" + strconv.FormatUint(uint64(id), 10)
}

func TestWalkthrough(t *testing.T) {
	r, db := newTestServer(t)
	c := client{t: t, r: r}

	ana := c.register("ana", "pw1", "Ana")
	assert.Empty(t, ana.Bicycles)
	assert.Empty(t, ana.Registrations)

	token := c.login("ana", "pw1")

	w := c.do(http.MethodPut, profilePath(ana.ID), token, gin.H{
		"bicycles": []gin.H{{"serial": "S1", "marca": "Trek"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p dto.PerfilResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Len(t, p.Bicycles, 1)
	assert.Equal(t, "S1", p.Bicycles[0].Serial)
	assert.Equal(t, "Trek", *p.Bicycles[0].Marca)
	assert.Nil(t, p.Bicycles[0].Modelo)

	// The same patch again is a no-op on the collection.
	w = c.do(http.MethodPut, profilePath(ana.ID), token, gin.H{
		"bicycles": []gin.H{{"serial": "S1", "marca": "Trek"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Len(t, p.Bicycles, 1)

	beto := c.register("beto", "pw2", "Beto")
	w = c.do(http.MethodPut, profilePath(beto.ID), token, gin.H{"displayName": "hack"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodDelete, profilePath(ana.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"biciusuario eliminado"}`, w.Body.String())

	var bikes int64
	require.NoError(t, db.Model(&model.Bicicleta{}).Where("serial = ?", "S1").Count(&bikes).Error)
	assert.Zero(t, bikes)

	// The token outlives the profile; the deleted id is now a 404.
	w = c.do(http.MethodGet, profilePath(ana.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	r, _ := newTestServer(t)
	c := client{t: t, r: r}
	c.register("ana", "pw1", "Ana")

	w := c.do(http.MethodPost, "/auth/register", "", gin.H{"username": "ana", "password": "x", "displayName": "X"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"detail"`)
}

func TestLogin_Failures(t *testing.T) {
	r, _ := newTestServer(t)
	c := client{t: t, r: r}
	c.register("ana", "pw1", "Ana")

	wrong := c.do(http.MethodPost, "/auth/login", "", gin.H{"username": "ana", "password": "nope"})
	unknown := c.do(http.MethodPost, "/auth/login", "", gin.H{"username": "nadie", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())

	missing := c.do(http.MethodPost, "/auth/login", "", gin.H{"username": "ana"})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRateLimit = 2
	db, err := infra.NewDatabase(infra.DatabaseOptions{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "rl.db")})
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	c := client{t: t, r: New(cfg, db, nil)}

	for i := 0; i < 2; i++ {
		w := c.do(http.MethodPost, "/auth/login", "", gin.H{"username": "ana", "password": "x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := c.do(http.MethodPost, "/auth/login", "", gin.H{"username": "ana", "password": "x"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := newTestServer(t)
	c := client{t: t, r: r}

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/biciusuarios", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/biciusuarios/1", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPut, "/biciusuarios/1", "bad.token.value", gin.H{"displayName": "x"}).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodDelete, "/biciusuarios/1", "", nil).Code)
}

func TestForbiddenDoesNotRevealExistence(t *testing.T) {
	r, _ := newTestServer(t)
	c := client{t: t, r: r}
	ana := c.register("ana", "pw1", "Ana")
	beto := c.register("beto", "pw2", "Beto")
	token := c.login("ana", "pw1")

	existing := c.do(http.MethodDelete, profilePath(beto.ID), token, nil)
	missing := c.do(http.MethodDelete, "/biciusuarios/9999", token, nil)
	assert.Equal(t, http.StatusForbidden, existing.Code)
	assert.Equal(t, http.StatusForbidden, missing.Code)
	assert.Equal(t, existing.Body.String(), missing.Body.String())

	w := c.do(http.MethodGet, profilePath(ana.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListAndGetNeverExposePasswords(t *testing.T) {
	r, _ := newTestServer(t)
	c := client{t: t, r: r}
	ana := c.register("ana", "pw1", "Ana")
	c.register("beto", "pw2", "Beto")
	token := c.login("ana", "pw1")

	list := c.do(http.MethodGet, "/biciusuarios", token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	var perfiles []map[string]any
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &perfiles))
	require.Len(t, perfiles, 2)
	for _, p := range perfiles {
		assert.NotContains(t, p, "password")
		assert.NotContains(t, p, "passwordHash")
		assert.NotContains(t, p, "password_hash")
	}
	assert.NotContains(t, list.Body.String(), "$2a$")

	get := c.do(http.MethodGet, profilePath(ana.ID), token, nil)
	assert.NotContains(t, get.Body.String(), "$2a$")
}

func TestUpdate_RenameRestampsRegistrations(t *testing.T) {
	r, _ := newTestServer(t)
	c := client{t: t, r: r}
	ana := c.register("ana", "pw1", "Ana")
	token := c.login("ana", "pw1")

	w := c.do(http.MethodPut, profilePath(ana.ID), token, gin.H{
		"registrations": []gin.H{{"serial": "R1"}, {"serial": "R2"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodPut, profilePath(ana.ID), token, gin.H{"displayName": "Ana Maria"})
	require.Equal(t, http.StatusOK, w.Code)
	var p dto.PerfilResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Len(t, p.Registrations, 2)
	for _, reg := range p.Registrations {
		assert.Equal(t, "Ana Maria", reg.DisplayName)
	}
}

func TestUpdate_SerialOfAnotherUser(t *testing.T) {
	r, _ := newTestServer(t)
	c := client{t: t, r: r}
	c.register("beto", "pw2", "Beto")
	betoToken := c.login("beto", "pw2")
	beto := c.do(http.MethodGet, "/biciusuarios", betoToken, nil)
	require.Equal(t, http.StatusOK, beto.Code)

	w := c.do(http.MethodPost, "/auth/register", "", gin.H{
		"username": "ana", "password": "pw1", "displayName": "Ana",
		"bicycles": []gin.H{{"serial": "S1"}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var perfiles []dto.PerfilResponse
	require.NoError(t, json.Unmarshal(beto.Body.Bytes(), &perfiles))
	w = c.do(http.MethodPut, profilePath(perfiles[0].ID), betoToken, gin.H{
		"bicycles": []gin.H{{"serial": "S1"}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdate_EmptyPatch(t *testing.T) {
	r, _ := newTestServer(t)
	c := client{t: t, r: r}
	ana := c.register("ana", "pw1", "Ana")
	token := c.login("ana", "pw1")

	w := c.do(http.MethodPut, profilePath(ana.ID), token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdate_PasswordChange(t *testing.T) {
	r, _ := newTestServer(t)
	c := client{t: t, r: r}
	ana := c.register("ana", "pw1", "Ana")
	token := c.login("ana", "pw1")

	w := c.do(http.MethodPut, profilePath(ana.ID), token, gin.H{"password": "pw-nueva"})
	require.Equal(t, http.StatusOK, w.Code)

	old := c.do(http.MethodPost, "/auth/login", "", gin.H{"username": "ana", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, old.Code)
	assert.NotEmpty(t, c.login("ana", "pw-nueva"))
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t)
	w := client{t: t, r: r}.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"db":"connected","redis":"disabled"}`, w.Body.String())
}

func postLoginFrom(r http.Handler, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		bytes.NewBufferString(`{"username":"ana","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestLogin_RateLimitIgnoresForwardedForByDefault(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRateLimit = 2
	db, err := infra.NewDatabase(infra.DatabaseOptions{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "xff.db")})
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	r := New(cfg, db, nil)

	assert.Equal(t, http.StatusUnauthorized, postLoginFrom(r, "198.51.100.1"))
	assert.Equal(t, http.StatusUnauthorized, postLoginFrom(r, "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, postLoginFrom(r, "198.51.100.3"))
}

func TestLogin_RateLimitHonorsTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRateLimit = 1
	// httptest requests come from 192.0.2.1.
	cfg.TrustedProxies = "192.0.2.1"
	db, err := infra.NewDatabase(infra.DatabaseOptions{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "proxy.db")})
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	r := New(cfg, db, nil)

	assert.Equal(t, http.StatusUnauthorized, postLoginFrom(r, "198.51.100.1"))
	assert.Equal(t, http.StatusUnauthorized, postLoginFrom(r, "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, postLoginFrom(r, "198.51.100.2"))
}

func TestPasswordOverByteLimitIsBadRequest(t *testing.T) {
	r, _ := newTestServer(t)
	c := client{t: t, r: r}
	long := strings.Repeat("ñ", 40)

	w := c.do(http.MethodPost, "/auth/register", "", gin.H{"username": "ana", "password": long, "displayName": "Ana"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ana := c.register("ana", "pw1", "Ana")
	token := c.login("ana", "pw1")
	w = c.do(http.MethodPut, profilePath(ana.ID), token, gin.H{"password": long})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, c.login("ana", "pw1"))
}
