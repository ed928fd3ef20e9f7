package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/internal/auth"
	"foodshare/internal/config"
	"foodshare/internal/food"
)

func testConfig() config.App {
	return config.App{
		Env:           "test",
		JWTIssuer:     "foodshare",
		JWTSigningKey: "test-signing-secret",
		TokenTTL:      5 * time.Hour,
	}
}

func newTestServer(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}

	svc := food.NewService(food.NewRepository(db), nil, time.Minute)
	h := New(svc, testConfig())

	r := gin.New()
	h.Routes(r)
	return r, mock, db
}

func sessionCookie(t *testing.T, email string) *http.Cookie {
	t.Helper()
	cfg := testConfig()
	tok, err := auth.Issue(email, "", cfg.JWTIssuer, cfg.JWTSigningKey, cfg.TokenTTL)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.CookieName, Value: tok}
}

func doJSON(r *gin.Engine, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------- Session ----------

func TestIssueToken_SetsCookie(t *testing.T) {
	r, _, db := newTestServer(t)
	defer db.Close()

	w := doJSON(r, http.MethodPost, "/jwt", `{"email":"donor@x.com","name":"Donor"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestIssueToken_MissingEmail(t *testing.T) {
	r, _, db := newTestServer(t)
	defer db.Close()

	w := doJSON(r, http.MethodPost, "/jwt", `{"name":"nobody"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	r, _, db := newTestServer(t)
	defer db.Close()

	w := doJSON(r, http.MethodPost, "/logout", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.LessOrEqual(t, cookies[0].MaxAge, 0)
}

// ---------- Auth gating ----------

func TestProtectedRoute_NoCookie(t *testing.T) {
	r, _, db := newTestServer(t)
	defer db.Close()

	w := doJSON(r, http.MethodGet, "/manage-my-foods?email=a@x.com", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoute_BadToken(t *testing.T) {
	r, _, db := newTestServer(t)
	defer db.Close()

	w := doJSON(r, http.MethodGet, "/manage-my-foods?email=a@x.com", "",
		&http.Cookie{Name: auth.CookieName, Value: "not-a-token"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMyFoods_EmailMismatchForbidden(t *testing.T) {
	r, mock, db := newTestServer(t)
	defer db.Close()

	w := doJSON(r, http.MethodGet, "/manage-my-foods?email=a@x.com", "", sessionCookie(t, "b@x.com"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Forbidden")
	// no data may be fetched on a forbidden call
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMyFoods_OwnerSeesOwnListings(t *testing.T) {
	r, mock, db := newTestServer(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "food_name", "food_img", "food_quantity", "location", "expire_date",
		"additional_notes", "status", "donator_email", "donator_name", "donator_image", "created_at",
	}).AddRow("f1", "Rice Pack", "", 4, "Dhaka", now, "", food.StatusAvailable, "a@x.com", "A", "", now)

	mock.ExpectQuery(`WHERE donator_email = \$1\s+ORDER BY created_at DESC`).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	w := doJSON(r, http.MethodGet, "/manage-my-foods?email=a@x.com", "", sessionCookie(t, "a@x.com"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rice Pack")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMyClaims_EmailMismatchForbidden(t *testing.T) {
	r, mock, db := newTestServer(t)
	defer db.Close()

	w := doJSON(r, http.MethodGet, "/request-foods?email=a@x.com", "", sessionCookie(t, "b@x.com"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------- Listing reads ----------

func TestListFoods_PassesFilterToStore(t *testing.T) {
	r, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectQuery(`FROM foods WHERE status = \$1 AND food_name ILIKE \$2 ORDER BY expire_date ASC`).
		WithArgs(food.StatusAvailable, "%rice%").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "food_name", "food_img", "food_quantity", "location", "expire_date",
			"additional_notes", "status", "donator_email", "donator_name", "donator_image", "created_at",
		}))

	w := doJSON(r, http.MethodGet, "/all-foods?available&search=rice&sort=asc", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFood_NotFound(t *testing.T) {
	r, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectQuery(`FROM foods WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	w := doJSON(r, http.MethodGet, "/all-foods/ghost", "", sessionCookie(t, "a@x.com"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ---------- Writes ----------

func TestCreateFood_ReturnsInsertAck(t *testing.T) {
	r, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO foods`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))

	body := `{"foodName":"Bread","foodQuantity":10,"donator":{"donatorEmail":"a@x.com","donatorName":"A"}}`
	w := doJSON(r, http.MethodPost, "/all-foods", body, sessionCookie(t, "a@x.com"))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["acknowledged"])
	assert.NotEmpty(t, resp["insertedId"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitClaim_PayloadIdentityMismatch(t *testing.T) {
	r, mock, db := newTestServer(t)
	defer db.Close()

	body := `{"food_id":"f1","user_email":"someone-else@x.com","status":"Requested"}`
	w := doJSON(r, http.MethodPost, "/request-foods", body, sessionCookie(t, "caller@x.com"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitClaim_HappyPath(t *testing.T) {
	r, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO food_requests`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))
	mock.ExpectExec(`UPDATE foods SET status = \$2 WHERE id = \$1 AND status = \$3`).
		WithArgs("f1", food.StatusRequested, food.StatusAvailable).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := `{"food_id":"f1","user_email":"caller@x.com","status":"Requested","notes":"pickup at noon"}`
	w := doJSON(r, http.MethodPost, "/request-foods", body, sessionCookie(t, "caller@x.com"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "insertedId")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitClaim_AlreadyRequestedConflict(t *testing.T) {
	r, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO food_requests`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))
	mock.ExpectExec(`UPDATE foods SET status = \$2 WHERE id = \$1 AND status = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	body := `{"food_id":"f1","user_email":"caller@x.com"}`
	w := doJSON(r, http.MethodPost, "/request-foods", body, sessionCookie(t, "caller@x.com"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFood_NonOwnerForbidden(t *testing.T) {
	r, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE foods\s+SET food_name = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT donator_email FROM foods WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"donator_email"}).AddRow("owner@x.com"))

	body := `{"foodName":"Hijacked"}`
	w := doJSON(r, http.MethodPatch, "/all-foods/f1", body, sessionCookie(t, "intruder@x.com"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteFood_IdempotentOnMissingID(t *testing.T) {
	r, mock, db := newTestServer(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM foods WHERE id = \$1`).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := doJSON(r, http.MethodDelete, "/all-foods/gone", "", sessionCookie(t, "a@x.com"))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(0), resp["deletedCount"])
}
