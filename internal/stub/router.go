package stub

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/GitGautamHub/smart-doctor-cli/internal/config"
)

// NewRouter wires the stub's routes. The paths the chat client calls keep
// their trailing slashes verbatim; the doctor and patient routes drop them
// so they can coexist with :id parameters, and gin's trailing-slash
// redirect covers callers that include one.
func NewRouter(db *gorm.DB, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.NoRoute(func(c *gin.Context) {
		detail(c, http.StatusNotFound, "Not Found")
	})
	r.NoMethod(func(c *gin.Context) {
		detail(c, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	h := NewHandler(db, cfg)

	r.GET("/", h.Root)
	r.POST("/register/", h.Register)
	r.POST("/token/", h.Token)

	authGroup := r.Group("/")
	authGroup.Use(h.AuthRequired())
	authGroup.GET("/users/me/", h.Me)
	authGroup.GET("/history/", h.History)
	authGroup.POST("/chat/", h.Chat)

	// Unauthenticated data and debugging routes, as on the backend.
	r.POST("/doctors", h.CreateDoctor)
	r.GET("/doctors", h.ListDoctors)
	r.GET("/doctors/:id", h.GetDoctor)
	r.GET("/doctors/:id/availability_direct", h.AvailabilityDirect)
	r.GET("/doctors/:id/summary_report_direct", h.SummaryDirect)
	r.POST("/patients", h.CreatePatient)
	r.GET("/patients", h.ListPatients)
	r.POST("/appointments_direct", h.BookDirect)

	return r
}
