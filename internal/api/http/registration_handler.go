package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/logger"
	"ministry-admin-backend/internal/service"
)

type RegistrationHandler struct {
	workflow service.InvitationWorkflow
	auth     service.AuthService
}

func NewRegistrationHandler(workflow service.InvitationWorkflow, auth service.AuthService) *RegistrationHandler {
	return &RegistrationHandler{workflow: workflow, auth: auth}
}

type submitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type requestSummary struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Status    domain.RequestStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
}

func (h *RegistrationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var body submitRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}

	req, err := h.workflow.Submit(r.Context(), body.Name, body.Email, body.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, requestSummary{
		ID:        req.ID,
		Name:      req.Name,
		Email:     req.Email,
		Status:    req.Status,
		CreatedAt: req.CreatedAt,
	})
}

func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.RequestStatus(r.URL.Query().Get("status"))
	reqs, err := h.workflow.List(r.Context(), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": reqs})
}

func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.workflow.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type deleteRequest struct {
	ID string `json:"id"`
}

func (h *RegistrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var body deleteRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
			return
		}
	}
	if err := h.workflow.Delete(r.Context(), body.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": body.ID})
}

type approveResponse struct {
	ApprovalLink string    `json:"approvalLink"`
	EmailSent    bool      `json:"emailSent"`
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Warning      string    `json:"warning,omitempty"`
}

func (h *RegistrationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	approverID, _ := AccountIDFromContext(r.Context())

	res, err := h.workflow.Approve(r.Context(), mux.Vars(r)["id"], approverID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approveResponse{
		ApprovalLink: res.ApprovalLink,
		EmailSent:    res.EmailSent,
		Token:        res.Token,
		ExpiresAt:    res.ExpiresAt,
		Warning:      res.Warning,
	})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *RegistrationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var body rejectRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
			return
		}
	}

	req, err := h.workflow.Reject(r.Context(), mux.Vars(r)["id"], body.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *RegistrationHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	invitee, err := h.workflow.VerifyToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invitee)
}

type completeRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type sessionResponse struct {
	SessionToken string               `json:"sessionToken,omitempty"`
	Account      *domain.AdminAccount `json:"account"`
}

func (h *RegistrationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var body completeRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}

	account, err := h.workflow.Complete(r.Context(), body.Token, body.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// The account exists at this point; a missing session only means the
	// new admin has to log in.
	token, err := h.auth.IssueSession(r.Context(), account)
	if err != nil {
		logger.Warn("Failed to issue session after registration", "accountID", account.ID, "error", err)
	}
	writeJSON(w, http.StatusCreated, sessionResponse{SessionToken: token, Account: account})
}
