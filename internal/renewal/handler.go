package renewal

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claimdesk/claims-crm/internal/auth"
	"github.com/claimdesk/claims-crm/internal/httpx"
	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/notification"
	"github.com/claimdesk/claims-crm/internal/utils"
	"gorm.io/gorm"
)

const maxWindowDays = 365

var validStatuses = map[string]bool{
	models.RenewalStatusPending:   true,
	models.RenewalStatusOverdue:   true,
	models.RenewalStatusConverted: true,
	models.RenewalStatusLost:      true,
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Notifier   notification.Notifier
	// WindowDays is used when neither ?days= nor the settings row give one.
	WindowDays int
	Now        func() time.Time
}

func NewHandler(db *gorm.DB, notifier notification.Notifier, windowDays int) *Handler {
	if notifier == nil {
		notifier = notification.Noop{}
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Notifier:   notifier,
		WindowDays: windowDays,
		Now:        time.Now,
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		err = httpx.NotFound(err.Error())
	case errors.Is(err, ErrPolicyNotFound):
		err = httpx.Validation(err.Error(), map[string]string{"policyId": "does not exist"})
	case errors.Is(err, ErrUserNotAvailable):
		err = httpx.Validation(err.Error(), map[string]string{"userId": "must reference an active user"})
	case errors.Is(err, ErrSameStatus):
		err = httpx.Validation(err.Error(), map[string]string{"status": "must differ from the current status"})
	case errors.Is(err, ErrStatusChanged):
		err = httpx.Conflict(err.Error())
	}
	httpx.WriteError(w, r, err, "renewal")
}

func (h *Handler) windowDays(r *http.Request) (int, error) {
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 || days > maxWindowDays {
			return 0, httpx.Validation("invalid days", map[string]string{"days": "must be between 1 and 365"})
		}
		return days, nil
	}
	var s models.Settings
	err := h.DB.WithContext(r.Context()).Select("renewal_window_days").First(&s, 1).Error
	if err == nil && s.RenewalWindowDays > 0 {
		return s.RenewalWindowDays, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	return h.WindowDays, nil
}

// ListRenewals handles GET /api/renewals?days=&status= and returns renewals
// due between today and today+days.
func (h *Handler) ListRenewals(w http.ResponseWriter, r *http.Request) {
	days, err := h.windowDays(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && !validStatuses[status] {
		h.fail(w, r, httpx.Validation("invalid status filter", map[string]string{"status": "must be one of: pending overdue converted lost"}))
		return
	}

	from := utils.StartOfDay(h.Now().UTC())
	renewals, err := h.Repository.ListDue(h.DB.WithContext(r.Context()), DueFilter{
		From:   from,
		To:     from.AddDate(0, 0, days+1),
		Status: status,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"renewals": renewals, "windowDays": days})
}

func (h *Handler) CreateRenewal(w http.ResponseWriter, r *http.Request) {
	var req createRenewalRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	renewalDate, err := utils.ParseOptionalDate(req.RenewalDate)
	if err != nil {
		h.fail(w, r, httpx.Validation("invalid renewalDate", map[string]string{"renewalDate": err.Error()}))
		return
	}
	renewal := models.PolicyRenewal{
		PolicyID:       req.PolicyID,
		RenewalPremium: req.RenewalPremium,
		AssignedTo:     req.AssignedTo,
		RenewalNotes:   strings.TrimSpace(req.RenewalNotes),
	}
	if renewalDate != nil {
		renewal.RenewalDate = *renewalDate
	}
	if err := h.Repository.Create(h.DB.WithContext(r.Context()), &renewal); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"renewal": renewal})
}

// GetRenewal handles GET /api/renewals/{id}
func (h *Handler) GetRenewal(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.Repository.Detail(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// AssignRenewal handles PUT /api/renewals/{id}/assign. A null userId clears
// the assignment.
func (h *Handler) AssignRenewal(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req assignRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	renewal, err := h.Repository.Assign(h.DB.WithContext(r.Context()), id, req.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"renewal": renewal})
}

// ChangeStatus handles PUT /api/renewals/{id}/status. The session user is
// recorded as the author of the transition.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req statusRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	var changedBy *uint
	if uid, ok := auth.UserID(r.Context()); ok {
		changedBy = &uid
	}

	entry, err := h.Repository.ChangeStatus(h.DB.WithContext(r.Context()), id, req.Status, changedBy)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.Notifier.Notify(r.Context(), notification.NewEvent(notification.EventRenewalStatusChanged, map[string]any{
		"renewalId": id,
		"oldStatus": entry.OldStatus,
		"newStatus": entry.NewStatus,
		"changedBy": entry.ChangedBy,
	}))
	httpx.JSON(w, http.StatusOK, map[string]any{"history": entry})
}

// ListActivities handles GET /api/renewals/{id}/activities
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	activities, err := h.Repository.ListActivities(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"activities": activities})
}

// LogActivity handles POST /api/renewals/{id}/activities
func (h *Handler) LogActivity(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req activityRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	followUp, err := utils.ParseOptionalDate(req.NextFollowUpDate)
	if err != nil {
		h.fail(w, r, httpx.Validation("invalid nextFollowUpDate", map[string]string{"nextFollowUpDate": err.Error()}))
		return
	}
	activityDate, err := utils.ParseOptionalDate(req.ActivityDate)
	if err != nil {
		h.fail(w, r, httpx.Validation("invalid activityDate", map[string]string{"activityDate": err.Error()}))
		return
	}

	a := models.RenewalActivity{
		RenewalID:        id,
		ActivityType:     req.ActivityType,
		Subject:          strings.TrimSpace(req.Subject),
		Description:      req.Description,
		NextFollowUpDate: followUp,
	}
	if activityDate != nil {
		a.ActivityDate = *activityDate
	}
	if uid, ok := auth.UserID(r.Context()); ok {
		a.CreatedBy = &uid
	}
	if err := h.Repository.LogActivity(h.DB.WithContext(r.Context()), &a); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"activity": a})
}
