package handlers

import (
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"expert_panel_go/config"
	"expert_panel_go/db"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
)

const (
	maxFieldLength   = 200
	maxMessageLength = 5000
	// Submissions faster than this are treated as bots
	minElapsedSeconds = 3
)

// PublicFormRequest covers both public lead forms. Website is the
// honeypot: humans never see it, bots fill it in. Elapsed is the
// seconds since the form rendered.
type PublicFormRequest struct {
	Name      string `json:"name" form:"name"`
	Email     string `json:"email" form:"email"`
	Phone     string `json:"phone" form:"phone"`
	Message   string `json:"message" form:"message"`
	Specialty string `json:"specialty" form:"specialty"`
	Website   string `json:"website" form:"website"`
	Elapsed   string `json:"_elapsed" form:"_elapsed"`
}

// isBotSubmission applies the honeypot and minimum-elapsed-time
// checks. Bot traffic gets a success-shaped response so the bot
// learns nothing, but no lead row and no email.
func isBotSubmission(req *PublicFormRequest) bool {
	if req.Website != "" {
		return true
	}
	elapsed, err := strconv.ParseFloat(req.Elapsed, 64)
	if err != nil || elapsed < minElapsedSeconds {
		return true
	}
	return false
}

func validatePublicForm(req *PublicFormRequest) string {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		return "Name is required"
	}
	if len(req.Name) > maxFieldLength || len(req.Phone) > maxFieldLength || len(req.Specialty) > maxFieldLength {
		return "Field too long"
	}
	if len(req.Message) > maxMessageLength {
		return "Message too long"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "A valid email address is required"
	}
	return ""
}

// SubmitContactForm handles POST /contact from the marketing site
func SubmitContactForm(c echo.Context) error {
	return handleLeadForm(c, models.LeadKindContact, "contact")
}

// SubmitJoinPanelForm handles POST /join-panel applications
func SubmitJoinPanelForm(c echo.Context) error {
	return handleLeadForm(c, models.LeadKindJoinPanel, "join the panel")
}

func handleLeadForm(c echo.Context, kind, formName string) error {
	cfg := c.Get("config").(*config.Config)

	req := new(PublicFormRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if isBotSubmission(req) {
		// Success-shaped response, nothing persisted, nothing sent
		return c.JSON(http.StatusOK, map[string]string{"status": "received"})
	}

	if msg := validatePublicForm(req); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}

	lead := &models.Lead{
		Kind:      kind,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   services.SanitizeText(req.Message),
		Specialty: req.Specialty,
	}
	if err := db.DB.Create(lead).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Something went wrong. Please try again.",
		})
	}

	services.Dispatch(services.BuildLeadEmail(cfg.AdminNotifyEmails, services.LeadEmailData{
		FormName:  formName,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Specialty: lead.Specialty,
		Message:   lead.Message,
	}))

	return c.JSON(http.StatusOK, map[string]string{"status": "received"})
}
