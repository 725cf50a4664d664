package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

var ErrDateRequired = errors.New("query parameter data is required")

type APIController struct {
	Booking *services.BookingService
}

func NewAPIController(booking *services.BookingService) *APIController {
	return &APIController{Booking: booking}
}

// GetTables -> list of bookable table ids
func (ac *APIController) GetTables(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "List of tables", services.TableIDs())
}

// GetReservations -> reservations for ?data= (optionally &stolik_id=)
func (ac *APIController) GetReservations(c *gin.Context) {
	date := c.Query(FieldDate)
	if date == "" {
		utils.RespondError(c, http.StatusBadRequest, ErrDateRequired)
		return
	}

	list, err := ac.Booking.ListReservations(c.Request.Context(), date, c.Query(FieldTableID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", list)
}

// GetAvailability -> whether ?stolik_id=&data=&godzina= could be booked now
func (ac *APIController) GetAvailability(c *gin.Context) {
	available, err := ac.Booking.CheckAvailability(c.Request.Context(),
		c.Query(FieldTableID), c.Query(FieldDate), c.Query(FieldTime))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Availability", gin.H{"available": available})
}

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownTable):
		utils.RespondError(c, http.StatusNotFound, services.ErrUnknownTable)
	case services.IsBookingRejected(err):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.ErrorLogger.Printf("api: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal error"))
	}
}
