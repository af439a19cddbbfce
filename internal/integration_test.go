package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"equipment-reservation-backend/config"
	"equipment-reservation-backend/internal/api"
	"equipment-reservation-backend/internal/booking"
	"equipment-reservation-backend/internal/calendar"
	"equipment-reservation-backend/internal/db"
	"equipment-reservation-backend/internal/model"
	"equipment-reservation-backend/internal/mw"
	"equipment-reservation-backend/internal/sheet"
	"equipment-reservation-backend/internal/store"
)

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type eventLog struct {
	mu     sync.Mutex
	events []booking.Event
}

func (l *eventLog) Dispatch(ev booking.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) types() []booking.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]booking.EventType, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Type
	}
	return out
}

// TestReservationLifecycle drives a reservation from sheet import through
// submission, approval, calendar rendering, editing and deletion, and verifies
// the stored rows at each step.
func TestReservationLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// --- Test Setup ---

	// 1. Setup an in-memory SQLite database for testing.
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(testDB))

	appStore := store.NewGormStore(testDB)
	ctx := context.Background()

	// 2. Seed the store from a published sheet export.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("신청자,설비명 & 작업내용,날짜,시간,소요시간,비밀번호,상태,ID\n" +
			"Lab Manager,SGM #1,2024-06-10,9:00,2시간,0,승인완료,20240601090000.0\n"))
	}))
	defer server.Close()

	n, err := sheet.NewImporter(config.SheetConfig{Enabled: true, URL: server.URL}, appStore).ImportOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// A second import must not touch a populated store.
	n, err = sheet.NewImporter(config.SheetConfig{Enabled: true, URL: server.URL}, appStore).ImportOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// 3. Wire the service and router the way main does.
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	events := &eventLog{}
	clock := &tickingClock{now: time.Date(2024, 6, 5, 10, 0, 0, 0, seoul)}
	svc := booking.NewService(appStore, clock, booking.WithLocation(seoul), booking.WithNotifier(events))

	cfg := &config.Config{
		Server: config.ServerConfig{RateLimitPerSec: 100, RateLimitBurst: 100, CacheTTLSeconds: 60},
		Access: config.AccessConfig{EntryPassword: "board", AdminPassword: "boss"},
	}
	router := api.NewRouter(cfg, api.NewHandler(svc, appStore, calendar.NewPalette("Lab Manager"), nil))

	call := func(method, path string, body any, admin bool) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			json.NewEncoder(&buf).Encode(body)
		}
		req, _ := http.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(mw.EntryHeader, "board")
		if admin {
			req.Header.Set(mw.AdminHeader, "boss")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	rows := func() []model.ReservationRow {
		var out []model.ReservationRow
		require.NoError(t, testDB.Order("position").Find(&out).Error)
		return out
	}

	// --- Step 1: A request overlapping the imported booking is refused ---
	t.Log("Step 1: Submitting an overlapping request")
	w := call(http.MethodPost, "/api/reservations", gin.H{
		"applicant": "Kim", "equipment_task": "Lathe", "date": "2024-06-10",
		"time": "10:00", "duration": "1h", "password": "1234",
	}, false)
	assert.Equal(t, http.StatusConflict, w.Code)

	// --- Step 2: A free slot is accepted as pending ---
	t.Log("Step 2: Submitting a free slot")
	w = call(http.MethodPost, "/api/reservations", gin.H{
		"applicant": "Kim", "equipment_task": "Lathe", "date": "2024-06-10",
		"time": "11:00", "duration": "3h", "password": "1234",
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["id"].(string)
	assert.Equal(t, "20240605100001", id, "ids are second-granularity timestamps in board time")

	stored := rows()
	require.Len(t, stored, 2)
	assert.Equal(t, model.ReservationRow{
		Position: 2, ID: id, Applicant: "Kim", EquipmentTask: "Lathe", Date: "2024-06-10",
		Time: "11:00", Duration: "3h", Password: "1234", Status: "pending",
	}, stored[1])
	assert.Equal(t, "0000", stored[0].Password, "imported rows are stored normalised")

	// --- Step 3: Approval puts it on the calendar ---
	t.Log("Step 3: Approving and rendering the calendar")
	w = call(http.MethodPost, "/api/admin/reservations/"+id+"/approve", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var cal []calendar.Event
	require.NoError(t, json.Unmarshal(call(http.MethodGet, "/api/calendar", nil, false).Body.Bytes(), &cal))
	require.Len(t, cal, 2)
	assert.Equal(t, calendar.PrivilegedColor, cal[0].Color)
	assert.Equal(t, "2024-06-10T11:00", cal[1].Start)
	assert.Equal(t, "2024-06-10T14:00", cal[1].End)

	// --- Step 4: The submitter can no longer cancel it, but the admin can edit it ---
	t.Log("Step 4: Editing the approved reservation")
	w = call(http.MethodDelete, "/api/reservations/"+id, gin.H{"password": "1234"}, false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(http.MethodPut, "/api/admin/reservations/"+id, gin.H{
		"equipment_task": "Lathe / facing", "date": "2024-06-11", "time": "09:00", "duration": "5h+",
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stored = rows()
	assert.Equal(t, "2024-06-11", stored[1].Date)
	assert.Equal(t, "5h+", stored[1].Duration)
	assert.Equal(t, "approved", stored[1].Status)

	// --- Step 5: Admin delete empties the slot ---
	t.Log("Step 5: Deleting")
	w = call(http.MethodDelete, "/api/admin/reservations/"+id, nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	stored = rows()
	require.Len(t, stored, 1)
	assert.Equal(t, 1, stored[0].Position)

	assert.Equal(t, []booking.EventType{
		booking.EventSubmitted, booking.EventApproved, booking.EventEdited, booking.EventDeleted,
	}, events.types())
}
