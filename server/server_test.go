package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/playvault/server/logger"
	"github.com/playvault/server/models"
	"github.com/playvault/server/persistence"
	"github.com/playvault/server/services"
	"github.com/playvault/server/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// newTestServer wires the whole API over the in-memory database. Monitor
// and Uploader stay nil, the hub is absent.
func newTestServer(t *testing.T) (*httptest.Server, persistence.Database) {
	t.Helper()
	db := persistence.NewMemoryDatabase()
	sessions := session.NewManager(nil, time.Hour)
	srv := New(":0", Deps{
		Sessions: sessions,
		Catalog:  services.NewCatalogService(db),
		Users:    services.NewUserService(db),
		Comments: services.NewCommentService(db, nil),
		Wishlist: services.NewWishlistService(db, nil),
		Cart:     services.NewCartService(db, nil),
		Checkout: services.NewCheckoutService(db, nil, nil),
		Stats:    services.NewStatsService(db),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, db
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// registerAndLogin creates an account and returns its access token and id.
func registerAndLogin(t *testing.T, ts *httptest.Server, username string) (string, int64) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/users", "", map[string]interface{}{
		"username": username,
		"password": "secret123",
		"f_name":   "Minh",
		"l_name":   "Nguyễn",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.User
	decodeInto(t, resp, &created)

	resp = doJSON(t, http.MethodPost, ts.URL+"/login", "", map[string]string{
		"email":    username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login models.LoginResponse
	decodeInto(t, resp, &login)
	require.NotEmpty(t, login.AccessToken)
	return login.AccessToken, created.ID
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts, _ := newTestServer(t)
	registerAndLogin(t, ts, "minh")

	resp := doJSON(t, http.MethodPost, ts.URL+"/login", "", map[string]string{
		"email":    "minh",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var apiErr models.APIError
	decodeInto(t, resp, &apiErr)
	assert.Equal(t, "Đăng nhập thất bại", apiErr.Error)
}

func TestRegisterNeverReturnsPassword(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/users", "", map[string]interface{}{
		"username": "lan",
		"password": "secret123",
		"f_name":   "Lan",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var raw map[string]interface{}
	decodeInto(t, resp, &raw)
	_, present := raw["password"]
	assert.False(t, present, "response body leaks the password field")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/cart", "/wishlist", "/purchases", "/statistics/current"} {
		resp := doJSON(t, http.MethodGet, ts.URL+path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		var apiErr models.APIError
		decodeInto(t, resp, &apiErr)
		assert.Equal(t, "Yêu cầu đăng nhập", apiErr.Error, path)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	ts, _ := newTestServer(t)
	token, _ := registerAndLogin(t, ts, "minh")

	resp := doJSON(t, http.MethodPost, ts.URL+"/logout", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/cart", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestGamesCarryDisplayPrice(t *testing.T) {
	ts, db := newTestServer(t)
	require.NoError(t, db.CreateGame(&models.Game{Name: "Elden Ring", Price: 1200000}))
	require.NoError(t, db.CreateGame(&models.Game{Name: "Demo", Price: 0}))

	resp := doJSON(t, http.MethodGet, ts.URL+"/games", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var games []models.Game
	decodeInto(t, resp, &games)
	require.Len(t, games, 2)
	assert.Equal(t, "1.200.000 đ", games[0].DisplayPrice)
	assert.Equal(t, "Miễn phí", games[1].DisplayPrice)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/games/%d", ts.URL, games[0].ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var game models.Game
	decodeInto(t, resp, &game)
	assert.Equal(t, "Elden Ring", game.Name)
}

func TestGetGameNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/games/42", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestWishlistToggleFlow(t *testing.T) {
	ts, db := newTestServer(t)
	require.NoError(t, db.CreateGame(&models.Game{Name: "Hades", Price: 250000}))
	token, _ := registerAndLogin(t, ts, "minh")

	// Toggle on.
	resp := doJSON(t, http.MethodPost, ts.URL+"/wishlist/toggle", token, map[string]int64{"game_id": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var toggled struct {
		Added bool `json:"added"`
	}
	decodeInto(t, resp, &toggled)
	assert.True(t, toggled.Added)

	// Toggle off.
	resp = doJSON(t, http.MethodPost, ts.URL+"/wishlist/toggle", token, map[string]int64{"game_id": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &toggled)
	assert.False(t, toggled.Added)

	resp = doJSON(t, http.MethodGet, ts.URL+"/wishlist", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var wishlist models.Wishlist
	decodeInto(t, resp, &wishlist)
	assert.Empty(t, wishlist.FavGameIDs)
}

func TestCartCheckoutPurchaseFlow(t *testing.T) {
	ts, db := newTestServer(t)
	require.NoError(t, db.CreateGame(&models.Game{Name: "A", Price: 300000}))
	require.NoError(t, db.CreateGame(&models.Game{Name: "B", Price: 700000}))
	token, _ := registerAndLogin(t, ts, "minh")

	for _, id := range []int64{1, 2} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/cart", token, map[string]int64{"game_id": id})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/cart", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view models.CartView
	decodeInto(t, resp, &view)
	require.Len(t, view.Items, 2)
	assert.Equal(t, int64(1000000), view.Total)
	assert.Equal(t, "1.000.000 đ", view.DisplayTotal)

	resp = doJSON(t, http.MethodPost, ts.URL+"/cart/checkout", token, map[string]interface{}{"all": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var receipt services.CheckoutReceipt
	decodeInto(t, resp, &receipt)
	assert.Len(t, receipt.Items, 2)
	assert.Equal(t, int64(1000000), receipt.Total)

	// The cart is empty afterwards and the purchase record has both games.
	resp = doJSON(t, http.MethodGet, ts.URL+"/cart", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &view)
	assert.Empty(t, view.Items)

	resp = doJSON(t, http.MethodGet, ts.URL+"/purchases", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var purchases []models.Purchase
	decodeInto(t, resp, &purchases)
	require.Len(t, purchases, 1)
	assert.Len(t, purchases[0].GamesPurchased, 2)
}

func TestCheckoutWithoutSelection(t *testing.T) {
	ts, _ := newTestServer(t)
	token, _ := registerAndLogin(t, ts, "minh")

	resp := doJSON(t, http.MethodPost, ts.URL+"/cart/checkout", token, map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var apiErr models.APIError
	decodeInto(t, resp, &apiErr)
	assert.Equal(t, "Vui lòng chọn ít nhất một game để thanh toán!", apiErr.Message)
}

func TestCheckoutEmptyCart(t *testing.T) {
	ts, _ := newTestServer(t)
	token, _ := registerAndLogin(t, ts, "minh")

	resp := doJSON(t, http.MethodPost, ts.URL+"/cart/checkout", token, map[string]interface{}{"all": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var apiErr models.APIError
	decodeInto(t, resp, &apiErr)
	assert.Equal(t, "Thanh toán thất bại", apiErr.Error)
}

func TestPurchasesEmptyArrayForNewUser(t *testing.T) {
	ts, _ := newTestServer(t)
	token, _ := registerAndLogin(t, ts, "minh")

	resp := doJSON(t, http.MethodGet, ts.URL+"/purchases", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var purchases []models.Purchase
	decodeInto(t, resp, &purchases)
	assert.Empty(t, purchases)
}

func TestCommentsJoinUsers(t *testing.T) {
	ts, db := newTestServer(t)
	require.NoError(t, db.CreateGame(&models.Game{Name: "Hades", Price: 250000}))
	token, userID := registerAndLogin(t, ts, "minh")

	resp := doJSON(t, http.MethodPost, ts.URL+"/comments", token, map[string]interface{}{
		"game_id": 1,
		"user_id": userID,
		"comment": "Quá hay!",
		"rating":  5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/comments?game_id=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var comments []models.CommentWithUser
	decodeInto(t, resp, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "Minh Nguyễn", comments[0].User.Name)
	assert.True(t, comments[0].IsPositive)
}

func TestDeleteUserSoftDeletes(t *testing.T) {
	ts, db := newTestServer(t)
	token, userID := registerAndLogin(t, ts, "minh")

	resp := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/users/%d", ts.URL, userID), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// The row survives with the deleted flag.
	user, err := db.GetUser(userID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusDeleted, user.Status)

	// And logging in again fails.
	resp = doJSON(t, http.MethodPost, ts.URL+"/login", "", map[string]string{
		"email":    "minh",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/games", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
