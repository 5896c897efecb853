// Package stub is a development stand-in for the Smart Doctor Assistant
// backend. It speaks the same wire protocol on the same paths: JSON bodies,
// {"detail": ...} failures, OAuth2 password-flow login, bearer-token auth.
// The LLM agent is replaced by a keyword-scripted assistant so the whole
// system runs offline against an embedded database.
package stub

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/GitGautamHub/smart-doctor-cli/internal/config"
)

const userContextKey = "stub.current_user"

type Handler struct {
	Store     *Store
	Tokens    *TokenService
	Assistant *Assistant
	Log       *log.Logger
}

func NewHandler(db *gorm.DB, cfg config.Config) *Handler {
	store := NewStore(db)
	logger := log.New(os.Stdout, "[stub] ", log.LstdFlags)
	return &Handler{
		Store:     store,
		Tokens:    NewTokenService(cfg.JWTSecret, cfg.TokenTTL),
		Assistant: NewAssistant(store, logger),
		Log:       logger,
	}
}

// detail writes a failure the way FastAPI does.
func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

func currentUser(c *gin.Context) (*User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*User)
	return u, ok
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Smart Doctor Assistant API!"})
}

type registerReq struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = RolePatient
	}
	ctx := c.Request.Context()

	if _, err := h.Store.UserByEmail(ctx, req.Email); err == nil {
		detail(c, http.StatusBadRequest, "Email already registered")
		return
	} else if err != gorm.ErrRecordNotFound {
		h.Log.Printf("[register] lookup email=%s err=%v", req.Email, err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		h.Log.Printf("[register] hash password err=%v", err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}

	user := &User{Email: req.Email, HashedPassword: hash, Role: req.Role, IsActive: true}
	if err := h.Store.CreateUser(ctx, user); err != nil {
		// unique index race: same answer as the lookup above
		detail(c, http.StatusBadRequest, "Email already registered")
		return
	}

	if err := h.ensureProfile(c, user, req); err != nil {
		h.Log.Printf("[register] profile user_id=%d err=%v", user.ID, err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ensureProfile creates the role-specific profile row: a patient record
// keyed by email, or a doctor record when the registration carried a name
// and specialty.
func (h *Handler) ensureProfile(c *gin.Context, user *User, req registerReq) error {
	ctx := c.Request.Context()
	switch user.Role {
	case RolePatient:
		patient, err := h.Store.PatientByEmail(ctx, user.Email)
		if err == gorm.ErrRecordNotFound {
			uid := user.ID
			return h.Store.CreatePatient(ctx, &Patient{
				UserID: &uid,
				Name:   emailLocalPart(user.Email),
				Email:  user.Email,
			})
		}
		if err != nil {
			return err
		}
		if patient.UserID == nil {
			uid := user.ID
			patient.UserID = &uid
			return h.Store.SavePatient(ctx, patient)
		}
	case RoleDoctor:
		if req.Name == "" || req.Specialty == "" {
			return nil
		}
		if _, err := h.Store.DoctorByEmail(ctx, user.Email); err == gorm.ErrRecordNotFound {
			return h.Store.CreateDoctor(ctx, &Doctor{
				Name:      req.Name,
				Specialty: req.Specialty,
				Email:     user.Email,
			})
		} else if err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) Token(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.Store.UserByEmail(c.Request.Context(), username)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			h.Log.Printf("[token] lookup username=%s err=%v", username, err)
			detail(c, http.StatusInternalServerError, "An internal error occurred.")
			return
		}
		h.unauthorized(c)
		return
	}
	if !CheckPassword(user.HashedPassword, password) {
		h.unauthorized(c)
		return
	}

	token, err := h.Tokens.Sign(user.ID, user.Role)
	if err != nil {
		h.Log.Printf("[token] sign user_id=%d err=%v", user.ID, err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (h *Handler) unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	detail(c, http.StatusUnauthorized, "Incorrect username or password")
}

func (h *Handler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		detail(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) History(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		detail(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	rows, err := h.Store.HistoryForUser(c.Request.Context(), user.ID, limit)
	if err != nil {
		h.Log.Printf("[history] user_id=%d err=%v", user.ID, err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}
	if rows == nil {
		rows = []HistoryEntry{}
	}
	c.JSON(http.StatusOK, rows)
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReq struct {
	UserMessage string    `json:"user_message" binding:"required"`
	ChatHistory []chatMsg `json:"chat_history"`
}

func (h *Handler) Chat(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		detail(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	ctx := c.Request.Context()

	// 1) persist the human message before answering, like the backend does
	err := h.Store.AppendHistory(ctx, &HistoryEntry{UserID: user.ID, Role: MsgRoleHuman, Content: req.UserMessage})
	if err != nil {
		h.Log.Printf("[chat] save human message user_id=%d err=%v", user.ID, err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}

	// 2) scripted reply in place of the agent
	reply := h.Assistant.Reply(ctx, user, req.UserMessage)

	// 3) persist the answer
	err = h.Store.AppendHistory(ctx, &HistoryEntry{UserID: user.ID, Role: MsgRoleAI, Content: reply})
	if err != nil {
		h.Log.Printf("[chat] save ai message user_id=%d err=%v", user.ID, err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}

	// 4) echo the caller's history plus this exchange; the client replaces
	// its transcript with exactly this
	updated := append(req.ChatHistory,
		chatMsg{Role: MsgRoleHuman, Content: req.UserMessage},
		chatMsg{Role: MsgRoleAI, Content: reply},
	)
	c.JSON(http.StatusOK, gin.H{"ai_response": reply, "updated_chat_history": updated})
}

type doctorReq struct {
	Name      string `json:"name" binding:"required"`
	Specialty string `json:"specialty" binding:"required"`
	Email     string `json:"email" binding:"required"`
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req doctorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	doc := &Doctor{Name: req.Name, Specialty: req.Specialty, Email: req.Email}
	if err := h.Store.CreateDoctor(c.Request.Context(), doc); err != nil {
		h.Log.Printf("[doctors] create err=%v", err)
		detail(c, http.StatusBadRequest, "Could not create doctor")
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	doctors, err := h.Store.ListDoctors(c.Request.Context(), offset, limit)
	if err != nil {
		h.Log.Printf("[doctors] list err=%v", err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}
	if doctors == nil {
		doctors = []Doctor{}
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid doctor id")
		return
	}
	doc, err := h.Store.DoctorByID(c.Request.Context(), id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			detail(c, http.StatusNotFound, "Doctor not found")
			return
		}
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}
	c.JSON(http.StatusOK, doc)
}

type patientReq struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required"`
	PhoneNumber *string `json:"phone_number"`
	UserID      *uint64 `json:"user_id"`
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req patientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	p := &Patient{Name: req.Name, Email: req.Email, PhoneNumber: req.PhoneNumber, UserID: req.UserID}
	if err := h.Store.CreatePatient(c.Request.Context(), p); err != nil {
		h.Log.Printf("[patients] create err=%v", err)
		detail(c, http.StatusBadRequest, "Could not create patient")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	patients, err := h.Store.ListPatients(c.Request.Context(), offset, limit)
	if err != nil {
		h.Log.Printf("[patients] list err=%v", err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}
	if patients == nil {
		patients = []Patient{}
	}
	c.JSON(http.StatusOK, patients)
}

// AvailabilityDirect answers slot availability without the assistant,
// mirroring the backend's debugging endpoint.
func (h *Handler) AvailabilityDirect(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid doctor id")
		return
	}
	ctx := c.Request.Context()

	doc, err := h.Store.DoctorByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			detail(c, http.StatusNotFound, "Doctor not found")
			return
		}
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}

	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		detail(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	free, err := h.Store.FreeSlots(ctx, doc.ID, day)
	if err != nil {
		h.Log.Printf("[availability] doctor_id=%d err=%v", doc.ID, err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"doctor_name":     doc.Name,
		"date":            day.Format("2006-01-02"),
		"available_slots": free,
	})
}

type bookDirectReq struct {
	DoctorID        uint64  `json:"doctor_id" binding:"required"`
	PatientID       uint64  `json:"patient_id" binding:"required"`
	AppointmentDate string  `json:"appointment_date" binding:"required"`
	TimeSlot        string  `json:"time_slot" binding:"required"`
	Notes           *string `json:"notes"`
}

// BookDirect books without the assistant or any of its checks beyond the
// double-booking guard.
func (h *Handler) BookDirect(c *gin.Context) {
	var req bookDirectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	ctx := c.Request.Context()

	day, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		detail(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	if _, err := h.Store.DoctorByID(ctx, req.DoctorID); err != nil {
		if err == gorm.ErrRecordNotFound {
			detail(c, http.StatusNotFound, "Doctor not found")
			return
		}
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}
	if _, err := h.Store.PatientByID(ctx, req.PatientID); err != nil {
		if err == gorm.ErrRecordNotFound {
			detail(c, http.StatusNotFound, "Patient not found")
			return
		}
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}

	if _, err := h.Store.AppointmentAt(ctx, req.DoctorID, day, req.TimeSlot); err == nil {
		detail(c, http.StatusConflict, "Time slot already booked for this doctor.")
		return
	} else if err != gorm.ErrRecordNotFound {
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}

	appt := &Appointment{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		AppointmentDate: Day(day),
		TimeSlot:        req.TimeSlot,
		Status:          StatusPending,
		Notes:           req.Notes,
	}
	if err := h.Store.CreateAppointment(ctx, appt); err != nil {
		h.Log.Printf("[appointments] create doctor_id=%d err=%v", req.DoctorID, err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}
	c.JSON(http.StatusOK, appt)
}

// SummaryDirect returns headline counts for a doctor, mirroring the
// backend's report debugging endpoint.
func (h *Handler) SummaryDirect(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid doctor id")
		return
	}
	ctx := c.Request.Context()

	doc, err := h.Store.DoctorByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			detail(c, http.StatusNotFound, "Doctor not found")
			return
		}
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}

	today := Day(time.Now())
	yesterday := today.AddDate(0, 0, -1)

	totalVisited, err := h.Store.CountAppointments(ctx, doc.ID, time.Time{}, StatusCompleted)
	if err != nil {
		h.Log.Printf("[summary] doctor_id=%d err=%v", doc.ID, err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}
	todayCount, err := h.Store.CountAppointments(ctx, doc.ID, today, StatusPending, StatusConfirmed)
	if err != nil {
		h.Log.Printf("[summary] doctor_id=%d err=%v", doc.ID, err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}
	yesterdayCount, err := h.Store.CountAppointments(ctx, doc.ID, yesterday, StatusCompleted, StatusPending, StatusConfirmed)
	if err != nil {
		h.Log.Printf("[summary] doctor_id=%d err=%v", doc.ID, err)
		detail(c, http.StatusInternalServerError, "An internal error occurred.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"doctor_name":            doc.Name,
		"total_patients_visited": totalVisited,
		"appointments_today":     todayCount,
		"appointments_yesterday": yesterdayCount,
		"report_generated_at":    time.Now().Format(time.RFC3339),
	})
}
