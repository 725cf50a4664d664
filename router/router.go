package router

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/board"
	"github.com/yeremiapane/table-reservation/controllers"
	"github.com/yeremiapane/table-reservation/middlewares"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/templates"
)

// Dependencies are the services the HTTP layer is built from.
type Dependencies struct {
	Booking         *services.BookingService
	Hub             *board.Hub
	RateLimiter     *middlewares.RateLimiter // nil disables limiting of booking POSTs
	CORSAllowOrigin string
	Templates       *template.Template // nil loads the embedded templates
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())

	tmpl := deps.Templates
	if tmpl == nil {
		tmpl = template.Must(templates.Load())
	}
	r.SetHTMLTemplate(tmpl)

	hub := deps.Hub
	if hub == nil {
		hub = board.NewHub()
	}

	pageCtrl := controllers.NewPageController(deps.Booking)
	apiCtrl := controllers.NewAPIController(deps.Booking)
	boardCtrl := controllers.NewBoardController(hub)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      HTML PAGES
	// ----------------------------------------------------------------
	r.GET("/", pageCtrl.Index)
	r.GET("/rezerwuj", pageCtrl.BookingForm)
	if deps.RateLimiter != nil {
		r.POST("/rezerwuj", deps.RateLimiter.RedirectWhenLimited("/error"), pageCtrl.CreateBooking)
	} else {
		r.POST("/rezerwuj", pageCtrl.CreateBooking)
	}
	r.GET("/sukces", pageCtrl.Success)
	r.GET("/error", pageCtrl.Error)

	// ----------------------------------------------------------------
	//                      READ-ONLY API
	// ----------------------------------------------------------------
	origin := deps.CORSAllowOrigin
	if origin == "" {
		origin = "*"
	}
	api := r.Group("/api")
	api.Use(middlewares.CORSMiddlewares(origin))
	{
		api.GET("/tables", apiCtrl.GetTables)
		api.GET("/reservations", apiCtrl.GetReservations)
		api.GET("/availability", apiCtrl.GetAvailability)
	}

	r.GET("/ws/board", boardCtrl.Connect)

	return r
}
