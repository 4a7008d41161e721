package agencies

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/puntaluxe/growth-engine/internal/http/middleware"
	"github.com/puntaluxe/growth-engine/pkg/logging"
)

type Handler struct {
	repo      *Repository
	jwtSecret string
	logger    *logging.Logger
}

func NewHandler(repo *Repository, jwtSecret string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, jwtSecret: jwtSecret, logger: logger}
}

type registerRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contactEmail"`
	Phone        string `json:"phone"`
}

// POST /partners/agencies
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.ContactEmail = strings.TrimSpace(req.ContactEmail)
	if req.Name == "" || req.ContactEmail == "" {
		http.Error(w, "name and contactEmail are required", http.StatusBadRequest)
		return
	}

	agency := &Agency{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Slug:         Slugify(req.Name),
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
	}
	if agency.Slug == "" {
		http.Error(w, "name must contain at least one letter or digit", http.StatusBadRequest)
		return
	}
	if err := h.repo.Create(r.Context(), agency); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			http.Error(w, "an agency with that name already exists", http.StatusConflict)
			return
		}
		h.logger.Error("agency registration failed", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	owner := &Member{
		ID:       uuid.NewString(),
		AgencyID: agency.ID,
		Email:    req.ContactEmail,
		Role:     RoleOwner,
	}
	if err := h.repo.AddMember(r.Context(), owner); err != nil {
		h.logger.Error("owner membership failed", "error", err, "agency_id", agency.ID)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	token, err := h.issueToken(agency.ID, owner)
	if err != nil {
		h.logger.Error("token issuance failed", "error", err, "agency_id", agency.ID)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"agency": agency,
		"owner":  owner,
		"token":  token,
	})
}

// GET /partners/agencies/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	agency, err := h.repo.Get(r.Context(), id)
	if err == ErrAgencyNotFound {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("agency lookup failed", "error", err, "agency_id", id)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	members, err := h.repo.ListMembers(r.Context(), id)
	if err != nil {
		h.logger.Error("member listing failed", "error", err, "agency_id", id)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"agency":  agency,
		"members": members,
	})
}

func (h *Handler) issueToken(agencyID string, m *Member) (string, error) {
	claims := middleware.PartnerClaims{
		AgencyID: agencyID,
		Role:     m.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   m.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
