package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/crypto/bcrypt"

	"forkful/models"
	"forkful/utils"
)

const tokenValidity = 24 * time.Hour

// Handler serves register/login/logout/refresh.
type Handler struct {
	Users UserStore
	Gate  *Gate

	secret  []byte
	revoked RevocationList
}

func NewHandler(users UserStore, gate *Gate, secret []byte, revoked RevocationList) *Handler {
	return &Handler{Users: users, Gate: gate, secret: secret, revoked: revoked}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	creds.Email = strings.TrimSpace(strings.ToLower(creds.Email))
	if creds.Email == "" || len(creds.Password) < 6 {
		utils.RespondWithError(w, http.StatusBadRequest, "email and a password of at least 6 characters are required")
		return
	}

	if _, err := h.Users.FindByEmail(r.Context(), creds.Email); err == nil {
		utils.RespondWithError(w, http.StatusConflict, "email already registered")
		return
	} else if !errors.Is(err, ErrUserNotFound) {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	user := &models.User{
		Email:        creds.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UnixMilli(),
	}
	id, err := h.Users.Insert(r.Context(), user)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"userId": id})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	creds.Email = strings.TrimSpace(strings.ToLower(creds.Email))

	user, err := h.Users.FindByEmail(r.Context(), creds.Email)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := GenerateToken(user.ID.Hex(), h.secret, tokenValidity)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": token, "userId": user.ID.Hex()})
}

// Logout revokes the presented token's jti until its natural expiry. With
// no revocation list configured it is a no-op beyond the client dropping
// the token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, err := h.Gate.Authorize(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		utils.RespondWithText(w, http.StatusUnauthorized, err.Error())
		return
	}

	if h.revoked != nil && claims.ID != "" && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if ttl > 0 {
			if err := h.revoked.Revoke(r.Context(), claims.ID, ttl); err != nil {
				utils.RespondWithError(w, http.StatusInternalServerError, "could not revoke token")
				return
			}
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "logged out"})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, err := h.Gate.Authorize(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		utils.RespondWithText(w, http.StatusUnauthorized, err.Error())
		return
	}

	token, err := GenerateToken(claims.UserID, h.secret, tokenValidity)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": token, "userId": claims.UserID})
}
