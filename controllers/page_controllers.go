package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-reservation/middlewares"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

// Form field names of the booking form.
const (
	FieldTableID   = "stolik_id"
	FieldName      = "imie"
	FieldEmail     = "email"
	FieldPhone     = "telefon"
	FieldPartySize = "liczba_osob"
	FieldDate      = "data"
	FieldTime      = "godzina"
)

type PageController struct {
	Booking *services.BookingService
}

func NewPageController(booking *services.BookingService) *PageController {
	return &PageController{Booking: booking}
}

// Index -> landing page
func (pc *PageController) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Title": "Start"})
}

// BookingForm -> form with the list of bookable tables
func (pc *PageController) BookingForm(c *gin.Context) {
	c.HTML(http.StatusOK, "rezerwuj.html", gin.H{
		"Title":   "Rezerwacja",
		"Stoliki": services.TableIDs(),
	})
}

// CreateBooking handles the form POST. Every failure, whether bad input or
// a taken slot, ends on the same /error page; the reason is only logged.
func (pc *PageController) CreateBooking(c *gin.Context) {
	log := utils.InfoLogger.WithField("request_id", c.GetString(middlewares.RequestIDKey))

	req, missing := bindBookingForm(c)
	if missing != "" {
		log.WithField("field", missing).Info("booking failed: missing form field")
		c.Redirect(http.StatusFound, "/error")
		return
	}

	res, err := pc.Booking.Book(c.Request.Context(), req)
	if err != nil {
		fields := logrus.Fields{"stolik_id": req.TableID, "data": req.Date, "godzina": req.Time}
		if services.IsBookingRejected(err) {
			log.WithFields(fields).Infof("booking failed: %v", err)
		} else {
			utils.ErrorLogger.WithFields(fields).
				WithField("request_id", c.GetString(middlewares.RequestIDKey)).
				Errorf("booking failed: %v", err)
		}
		c.Redirect(http.StatusFound, "/error")
		return
	}

	log.Infof("Reservation %d created: table %d on %s at %s", res.ID, res.TableID, res.Date, res.Time)
	c.Redirect(http.StatusFound, "/sukces")
}

// Success -> static acknowledgment
func (pc *PageController) Success(c *gin.Context) {
	c.HTML(http.StatusOK, "sukces.html", gin.H{"Title": "Sukces"})
}

// Error -> generic failure page
func (pc *PageController) Error(c *gin.Context) {
	c.HTML(http.StatusOK, "error.html", gin.H{"Title": "Błąd"})
}

// bindBookingForm returns the name of the first missing field, if any.
func bindBookingForm(c *gin.Context) (services.BookingRequest, string) {
	var req services.BookingRequest
	targets := []struct {
		field string
		dst   *string
	}{
		{FieldTableID, &req.TableID},
		{FieldName, &req.Name},
		{FieldEmail, &req.Email},
		{FieldPhone, &req.Phone},
		{FieldPartySize, &req.PartySize},
		{FieldDate, &req.Date},
		{FieldTime, &req.Time},
	}
	for _, t := range targets {
		v, ok := c.GetPostForm(t.field)
		if !ok {
			return services.BookingRequest{}, t.field
		}
		*t.dst = v
	}
	return req, ""
}
