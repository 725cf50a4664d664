package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-reservation/controllers"
	"github.com/yeremiapane/table-reservation/repository"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/testutil"
	"gorm.io/gorm"
)

func setupAPIRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewTestDB(t)
	booking := services.NewBookingService(repository.NewReservationRepository(db), nil)
	apiCtrl := controllers.NewAPIController(booking)

	router := gin.New()
	router.GET("/api/tables", apiCtrl.GetTables)
	router.GET("/api/reservations", apiCtrl.GetReservations)
	router.GET("/api/availability", apiCtrl.GetAvailability)
	return router, db
}

func getJSON(t *testing.T, router *gin.Engine, path string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestGetTables(t *testing.T) {
	router, _ := setupAPIRouter(t)

	code, response := getJSON(t, router, "/api/tables")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "List of tables", response["message"])
	data := response["data"].([]interface{})
	assert.Len(t, data, 10)
	assert.Equal(t, float64(1), data[0])
	assert.Equal(t, float64(10), data[9])
}

func TestGetReservations(t *testing.T) {
	router, db := setupAPIRouter(t)
	testutil.InsertReservation(t, db, 3, "2024-06-01", "18:00")
	testutil.InsertReservation(t, db, 4, "2024-06-01", "12:00")
	testutil.InsertReservation(t, db, 3, "2024-06-02", "18:00")

	code, response := getJSON(t, router, "/api/reservations?data=2024-06-01")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, response["data"].([]interface{}), 2)

	code, response = getJSON(t, router, "/api/reservations?data=2024-06-01&stolik_id=3")
	assert.Equal(t, http.StatusOK, code)
	data := response["data"].([]interface{})
	require.Len(t, data, 1)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "18:00", first["godzina"])
	assert.Equal(t, float64(3), first["stolik_id"])

	code, response = getJSON(t, router, "/api/reservations")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, response["status"])

	code, _ = getJSON(t, router, "/api/reservations?data=2024-06-01&stolik_id=x")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetAvailability(t *testing.T) {
	router, db := setupAPIRouter(t)
	testutil.InsertReservation(t, db, 3, "2024-06-01", "18:00")

	tests := []struct {
		query     string
		code      int
		available interface{}
	}{
		{"stolik_id=3&data=2024-06-01&godzina=19:00", http.StatusOK, false},
		{"stolik_id=3&data=2024-06-01&godzina=23:00", http.StatusOK, true},
		{"stolik_id=4&data=2024-06-01&godzina=18:00", http.StatusOK, true},
		{"stolik_id=3&data=2024-13-01&godzina=18:00", http.StatusBadRequest, nil},
		{"stolik_id=99&data=2024-06-01&godzina=18:00", http.StatusNotFound, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			code, response := getJSON(t, router, "/api/availability?"+tt.query)
			assert.Equal(t, tt.code, code)
			if tt.available != nil {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, tt.available, data["available"])
			}
		})
	}
}
