package claim

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/claimdesk/claims-crm/internal/auth"
	"github.com/claimdesk/claims-crm/internal/httpx"
	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/notification"
	"github.com/claimdesk/claims-crm/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validStatuses = map[string]bool{
	models.ClaimStatusPending:  true,
	models.ClaimStatusApproved: true,
	models.ClaimStatusRejected: true,
	models.ClaimStatusSurveyed: true,
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Notifier   notification.Notifier
}

func NewHandler(db *gorm.DB, notifier notification.Notifier) *Handler {
	if notifier == nil {
		notifier = notification.Noop{}
	}
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Notifier:   notifier,
	}
}

// fail maps claim errors onto the response envelope.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrPolicyNotFound):
		err = httpx.Validation(err.Error(), map[string]string{"policyId": "does not exist"})
	case errors.Is(err, ErrSurveyorNotFound):
		err = httpx.NotFound(err.Error())
	case errors.Is(err, ErrClaimNotFound), errors.Is(err, ErrAssignmentNotFound),
		errors.Is(err, ErrSurveyNotFound), errors.Is(err, ErrDocumentNotFound):
		err = httpx.NotFound(err.Error())
	case errors.Is(err, ErrNumbersExhausted):
		err = httpx.Conflict(err.Error())
	case errors.Is(err, gorm.ErrDuplicatedKey):
		err = httpx.Conflict("claim number already taken, retry the request")
	}
	httpx.WriteError(w, r, err, "claim")
}

// ListClaims handles GET /api/claims?status=
func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && !validStatuses[status] {
		h.fail(w, r, httpx.Validation("invalid status filter", map[string]string{"status": "must be one of: pending approved rejected surveyed"}))
		return
	}
	claims, err := h.Repository.List(h.DB.WithContext(r.Context()), status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"claims": claims})
}

// CreateClaim handles POST /api/claims. A claim is only returned once it is
// persisted; database failures surface as errors.
func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	var req createClaimRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	incident, err := utils.ParseDate(req.IncidentDate)
	if err != nil {
		h.fail(w, r, httpx.Validation("invalid incidentDate", map[string]string{"incidentDate": err.Error()}))
		return
	}
	report, err := utils.ParseDate(req.ReportDate)
	if err != nil {
		h.fail(w, r, httpx.Validation("invalid reportDate", map[string]string{"reportDate": err.Error()}))
		return
	}
	if report.Before(incident) {
		h.fail(w, r, httpx.Validation("reportDate cannot precede incidentDate", map[string]string{"reportDate": "must be on or after incidentDate"}))
		return
	}

	c := models.Claim{
		PolicyID:            req.PolicyID,
		IncidentDate:        incident,
		ReportDate:          report,
		IncidentLocation:    strings.TrimSpace(req.IncidentLocation),
		IncidentDescription: strings.TrimSpace(req.IncidentDescription),
		DamageDescription:   strings.TrimSpace(req.DamageDescription),
		EstimatedAmount:     req.EstimatedAmount,
	}
	if err := h.Repository.Create(h.DB.WithContext(r.Context()), &c); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"claim": c})
}

// GetClaim handles GET /api/claims/{id}
func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	detail, err := h.Repository.Detail(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

// UpdateClaimStatus handles PUT /api/claims/{id}
func (h *Handler) UpdateClaimStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req updateStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.Repository.UpdateStatus(h.DB.WithContext(r.Context()), id, req.Status, req.ApprovedAmount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.Notifier.Notify(r.Context(), notification.NewEvent(notification.EventClaimStatusChanged, map[string]any{
		"claimId":        c.ID,
		"claimNumber":    c.ClaimNumber,
		"status":         c.Status,
		"approvedAmount": c.ApprovedAmount,
	}))
	httpx.JSON(w, http.StatusOK, map[string]any{"claim": c})
}

// GetAssignment handles GET /api/claims/{id}/assign-surveyor
func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	a, err := h.Repository.FindAssignment(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignment": a})
}

// AssignSurveyor handles POST /api/claims/{id}/assign-surveyor
func (h *Handler) AssignSurveyor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req assignSurveyorRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	a, err := h.Repository.AssignSurveyor(h.DB.WithContext(r.Context()), id, req.SurveyorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignment": a})
}

// RemoveAssignment handles DELETE /api/claims/{id}/assign-surveyor
func (h *Handler) RemoveAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Repository.RemoveAssignment(h.DB.WithContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "surveyor unassigned"})
}

// GetSurvey handles GET /api/claims/{id}/survey
func (h *Handler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.Repository.FindSurvey(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"survey": s})
}

// UpsertSurvey handles POST /api/claims/{id}/survey
func (h *Handler) UpsertSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req surveyRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	surveyDate, err := utils.ParseDate(req.SurveyDate)
	if err != nil {
		h.fail(w, r, httpx.Validation("invalid surveyDate", map[string]string{"surveyDate": err.Error()}))
		return
	}

	s, err := h.Repository.UpsertSurvey(h.DB.WithContext(r.Context()), &models.ClaimSurvey{
		ClaimID:    id,
		SurveyorID: req.SurveyorID,
		SurveyDate: surveyDate,
		Location:   strings.TrimSpace(req.Location),
		Report:     req.Report,
		Amount:     req.Amount,
		Status:     req.Status,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if s.Status == models.SurveyStatusCompleted {
		h.Notifier.Notify(r.Context(), notification.NewEvent(notification.EventClaimSurveyed, map[string]any{
			"claimId":    s.ClaimID,
			"surveyorId": s.SurveyorID,
			"amount":     s.Amount,
		}))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"survey": s})
}

// DeleteSurvey handles DELETE /api/claims/{id}/survey
func (h *Handler) DeleteSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Repository.DeleteSurvey(h.DB.WithContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "survey deleted"})
}

// ListDocuments handles GET /api/claims/{id}/documents
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	docs, err := h.Repository.ListDocuments(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// CreateDocument records document metadata. No file bytes are stored; the
// path is synthetic.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req documentRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	fileName := path.Base(strings.ReplaceAll(strings.TrimSpace(req.FileName), "\\", "/"))
	if fileName == "." || fileName == "/" {
		h.fail(w, r, httpx.Validation("invalid fileName", map[string]string{"fileName": "is invalid"}))
		return
	}

	d := models.Document{
		ClaimID:      id,
		DocumentType: strings.TrimSpace(req.DocumentType),
		FileName:     fileName,
		FilePath:     fmt.Sprintf("claims/%d/%s-%s", id, uuid.NewString(), fileName),
		FileSize:     req.FileSize,
		MimeType:     req.MimeType,
	}
	if err := h.Repository.CreateDocument(h.DB.WithContext(r.Context()), &d); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"document": d})
}

// GetDocument handles GET /api/claims/{id}/documents/{docId}
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	claimID, docID, err := documentIDs(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.Repository.FindDocument(h.DB.WithContext(r.Context()), claimID, docID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"document": d})
}

// DeleteDocument handles DELETE /api/claims/{id}/documents/{docId}
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	claimID, docID, err := documentIDs(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Repository.DeleteDocument(h.DB.WithContext(r.Context()), claimID, docID); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}

// DownloadDocument returns generated placeholder text, flagged with
// X-Placeholder-Content, since document bytes are never stored.
func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	claimID, docID, err := documentIDs(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.Repository.FindDocument(h.DB.WithContext(r.Context()), claimID, docID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	body := fmt.Sprintf(
		"Placeholder for %s\nDocument type: %s\nClaim: %d\nStored path: %s\nUploaded: %s\n\nFile storage is not enabled; the original file content was not kept.\n",
		d.FileName, d.DocumentType, d.ClaimID, d.FilePath, d.UploadDate.UTC().Format("2006-01-02 15:04:05"),
	)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.FileName + ".txt"}))
	w.Header().Set("X-Placeholder-Content", "true")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// ListNotes handles GET /api/claims/{id}/notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	notes, err := h.Repository.ListNotes(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notes": notes})
}

// CreateNote appends a note authored by the session user.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req noteRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	n := models.ClaimNote{
		ClaimID:   id,
		NoteText:  strings.TrimSpace(req.NoteText),
		CreatedBy: auth.UserName(r.Context()),
	}
	if n.NoteText == "" {
		h.fail(w, r, httpx.Validation("validation failed", map[string]string{"noteText": "is required"}))
		return
	}
	if err := h.Repository.CreateNote(h.DB.WithContext(r.Context()), &n); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"note": n})
}

func documentIDs(r *http.Request) (uint, uint, error) {
	claimID, err := httpx.PathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	docID, err := httpx.PathID(r, "docId")
	if err != nil {
		return 0, 0, err
	}
	return claimID, docID, nil
}
