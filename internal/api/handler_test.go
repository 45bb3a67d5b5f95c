package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"running-rooms-backend/config"
	"running-rooms-backend/internal/auth"
	"running-rooms-backend/internal/db"
	"running-rooms-backend/internal/model"
	"running-rooms-backend/internal/occupancy"
	"running-rooms-backend/internal/report"
	"running-rooms-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTL: 30 * time.Second},
		Auth: config.AuthConfig{
			JWTSecret:            "user-secret",
			AdminSecret:          "admin-secret",
			AdminTokenTTLMinutes: 60,
			PasswordStorage:      "plaintext",
		},
		Reports: config.ReportsConfig{PageSize: 10},
	}
}

func setupRouter(t *testing.T) *gin.Engine {
	testDB, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(testDB))

	cfg := testConfig()
	s := store.NewGormStore(testDB)
	hasher, err := auth.NewPasswordHasher(cfg.Auth.PasswordStorage)
	require.NoError(t, err)
	authSvc := auth.NewService(s, auth.NewTokens(cfg.Auth), hasher, cfg.Auth.VerifyAdminCredentials)
	return NewRouter(cfg, authSvc, occupancy.NewService(s, cfg.Occupancy))
}

func do(r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, username string) map[string]string {
	w := do(r, http.MethodPost, "/register", gin.H{"username": username, "password": "pw1"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(r, http.MethodPost, "/login", gin.H{"username": username, "password": "pw1"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return map[string]string{"Authorization": resp.Token}
}

func createBuilding(t *testing.T, r *gin.Engine, headers map[string]string, body gin.H) model.Building {
	w := do(r, http.MethodPost, "/buildings", body, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var b model.Building
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return b
}

func TestHealthz(t *testing.T) {
	r := setupRouter(t)
	w := do(r, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(r, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/healthz"`)
}

func TestRegisterAndLogin(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodPost, "/register", gin.H{"username": "alice", "password": "pw1"}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"User registered successfully"}`, w.Body.String())

	w = do(r, http.MethodPost, "/register", gin.H{"username": "alice", "password": "other"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"username already exists"}`, w.Body.String())

	w = do(r, http.MethodPost, "/register", gin.H{"username": "bob"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/login", gin.H{"username": "alice", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid username or password"}`, w.Body.String())

	w = do(r, http.MethodPost, "/login", gin.H{"username": "alice", "password": "pw1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User["username"])
	assert.NotEmpty(t, resp.User["id"])
	assert.NotContains(t, resp.User, "password")
}

func TestAdminRoutes(t *testing.T) {
	r := setupRouter(t)
	login(t, r, "alice")

	w := do(r, http.MethodPost, "/admin/register", gin.H{"username": "root", "password": "pw"}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	// any credentials pass while admin verification is off
	w = do(r, http.MethodPost, "/admin/login", gin.H{"username": "whoever", "password": "x"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success    bool   `json:"success"`
		AdminToken string `json:"adminToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	w = do(r, http.MethodGet, "/getallusers", nil, map[string]string{"admintoken": resp.AdminToken})
	require.Equal(t, http.StatusOK, w.Code)
	var users []model.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "pw1", users[0].Password)

	w = do(r, http.MethodGet, "/getallusers", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(r, http.MethodGet, "/getallusers", nil, map[string]string{"admintoken": "garbage"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBuildingRoutes_RequireToken(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodGet, "/buildings", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/buildings", nil, map[string]string{"Authorization": "garbage"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBuildingCRUD(t *testing.T) {
	r := setupRouter(t)
	alice := login(t, r, "alice")
	bob := login(t, r, "bob")

	w := do(r, http.MethodGet, "/buildings", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	created := createBuilding(t, r, alice, gin.H{
		"name":  "Hostel A",
		"rooms": []gin.H{{"roomNumber": 1, "roomName": "Garden"}, {"roomNumber": 2}, {"roomNumber": 3}},
	})
	require.Len(t, created.Rooms, 3)
	assert.Equal(t, "Garden", created.Rooms[0].RoomName)
	assert.Equal(t, 3, created.Rooms[2].RoomNumber)
	assert.NotNil(t, created.Rooms[0].Logs)

	counted := createBuilding(t, r, alice, gin.H{"name": "Annex", "roomCount": 2})
	assert.Len(t, counted.Rooms, 2)

	w = do(r, http.MethodPost, "/buildings", gin.H{"rooms": []gin.H{}}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/buildings", gin.H{"name": "Huge", "roomCount": 1 << 62}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/buildings/"+created.ID, nil, alice)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodGet, "/buildings/"+created.ID, nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPut, "/buildings/"+created.ID, gin.H{}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/buildings/"+created.ID, gin.H{
		"name":  "Hostel B",
		"rooms": []gin.H{{"roomNumber": 4, "roomName": "Loft"}},
	}, alice)
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.Building
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Hostel B", updated.Name)
	assert.Len(t, updated.Rooms, 4)

	w = do(r, http.MethodPut, "/buildings/"+created.ID, gin.H{"rooms": []gin.H{{"roomName": "No number"}}}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/buildings/"+created.ID, gin.H{"name": "Stolen"}, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/buildings/"+created.ID, nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodDelete, "/buildings/"+created.ID, nil, alice)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(r, http.MethodGet, "/buildings/"+created.ID, nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/buildings", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	var remaining []model.Building
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &remaining))
	require.Len(t, remaining, 1)
	assert.Equal(t, "Annex", remaining[0].Name)
}

func TestCheckInOutErrors(t *testing.T) {
	r := setupRouter(t)
	alice := login(t, r, "alice")
	b := createBuilding(t, r, alice, gin.H{"name": "Hostel A", "roomCount": 1})
	roomPath := "/buildings/" + b.ID + "/rooms/" + b.Rooms[0].ID

	testCases := []struct {
		name       string
		path       string
		body       gin.H
		wantStatus int
	}{
		{
			name:       "Check-out without check-in",
			path:       roomPath + "/checkout",
			body:       gin.H{"day": "2024-01-02", "outTime": "08:00"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Check-in missing guest",
			path:       roomPath + "/checkin",
			body:       gin.H{"day": "2024-01-01", "inTime": "10:00"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Check-in with malformed time",
			path:       roomPath + "/checkin",
			body:       gin.H{"name": "Bob", "day": "2024-01-01", "inTime": "10am"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Unknown room",
			path:       "/buildings/" + b.ID + "/rooms/nope/checkin",
			body:       gin.H{"name": "Bob", "day": "2024-01-01", "inTime": "10:00"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "Unknown building",
			path:       "/buildings/nope/rooms/" + b.Rooms[0].ID + "/checkout",
			body:       gin.H{"day": "2024-01-02", "outTime": "08:00"},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodPost, tc.path, tc.body, alice)
			assert.Equal(t, tc.wantStatus, w.Code, w.Body.String())
		})
	}

	w := do(r, http.MethodPost, roomPath+"/checkout", gin.H{"day": "2024-01-02", "outTime": "08:00"}, alice)
	assert.JSONEq(t, `{"error":"invalid room state: no check-in record found or check-out already logged"}`, w.Body.String())

	w = do(r, http.MethodPost, roomPath+"/checkin", gin.H{"name": "Bob", "day": "2024-01-01", "inTime": "10:00"}, alice)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodPost, roomPath+"/checkin", gin.H{"name": "Eve", "day": "2024-01-01", "inTime": "11:00"}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportRoutes(t *testing.T) {
	r := setupRouter(t)
	alice := login(t, r, "alice")

	w := do(r, http.MethodGet, "/export", nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)

	b := createBuilding(t, r, alice, gin.H{"name": "Hostel A", "roomCount": 2})
	roomPath := "/buildings/" + b.ID + "/rooms/" + b.Rooms[0].ID
	w = do(r, http.MethodPost, roomPath+"/checkin", gin.H{"name": "Bob", "day": "2024-03-01", "inTime": "09:00"}, alice)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodPost, roomPath+"/checkout", gin.H{"day": "2024-03-01", "outTime": "17:00"}, alice)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("Availability", func(t *testing.T) {
		w := do(r, http.MethodGet, "/reports/availability", nil, alice)
		require.Equal(t, http.StatusOK, w.Code)
		var got []report.BuildingAvailability
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].TotalRooms)
		assert.Equal(t, 2, got[0].AvailableRooms)
	})

	t.Run("Peak hours", func(t *testing.T) {
		w := do(r, http.MethodGet, "/reports/peak-hours?date=2024-03-01", nil, alice)
		require.Equal(t, http.StatusOK, w.Code)
		var got report.PeakHoursReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 1, got.Hours[9].Count)
		assert.Equal(t, 0, got.Hours[18].Count)
		assert.Equal(t, "9:00 AM", got.Hours[9].Label)

		w = do(r, http.MethodGet, "/reports/peak-hours?date=March", nil, alice)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Arrivals", func(t *testing.T) {
		w := do(r, http.MethodGet, "/reports/arrivals?name=bo", nil, alice)
		require.Equal(t, http.StatusOK, w.Code)
		var got report.ArrivalPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 1, got.Total)
		assert.Equal(t, 10, got.PageSize)
		require.Len(t, got.Rows, 1)
		assert.Equal(t, "Hostel A", got.Rows[0].BuildingName)

		w = do(r, http.MethodGet, "/reports/arrivals?page=zero", nil, alice)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = do(r, http.MethodGet, "/reports/arrivals?page=9223372036854775807", nil, alice)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Empty(t, got.Rows)
		assert.Equal(t, 1, got.Total)
	})

	t.Run("Stats", func(t *testing.T) {
		w := do(r, http.MethodGet, "/reports/stats?day=2024-03-01", nil, alice)
		require.Equal(t, http.StatusOK, w.Code)
		var got report.ArrivalStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 1, got.DailyCount)
		assert.Equal(t, 31, got.DaysInMonth)
	})

	t.Run("Export", func(t *testing.T) {
		w := do(r, http.MethodGet, "/export", nil, alice)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "alice_Data_")

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		rows, err := f.GetRows(report.ExportSheet)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Bob", rows[1][2])
		assert.Equal(t, "No Logs", rows[2][2])
	})
}
