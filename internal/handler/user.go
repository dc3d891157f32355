package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/loja-escolar/backend/internal/auth"
	"github.com/loja-escolar/backend/internal/user"
)

const maxAvatarSize = 5 << 20 // 5 MB

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Senha    string  `json:"senha" validate:"required,min=6"`
	Nome     string  `json:"nome" validate:"required,min=2,max=100"`
	Telefone *string `json:"telefone"`
	Endereco *string `json:"endereco"`
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

type UpdateProfileRequest struct {
	Nome     *string `json:"nome" validate:"omitempty,min=2,max=100"`
	Telefone *string `json:"telefone"`
	Endereco *string `json:"endereco"`
}

type UserResponse struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Nome           string    `json:"nome"`
	Telefone       *string   `json:"telefone,omitempty"`
	Endereco       *string   `json:"endereco,omitempty"`
	AvatarFilename *string   `json:"avatar_filename"`
	IsAdmin        bool      `json:"is_admin"`
	CriadoEm       time.Time `json:"criado_em"`
	AtualizadoEm   time.Time `json:"atualizado_em"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

type UserHandler struct {
	svc       user.Service
	tokens    *auth.Manager
	validate  *validator.Validate
	avatarDir string
}

func NewUserHandler(svc user.Service, tokens *auth.Manager, avatarDir string) *UserHandler {
	return &UserHandler{
		svc:       svc,
		tokens:    tokens,
		validate:  validator.New(),
		avatarDir: avatarDir,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterRequest
	if !h.decode(w, r, &payload) {
		return
	}

	created, err := h.svc.Register(r.Context(), &user.User{
		Email:   payload.Email,
		Name:    payload.Nome,
		Phone:   payload.Telefone,
		Address: payload.Endereco,
	}, payload.Senha)
	if err != nil {
		h.respondUserError(w, err, "Failed to register user")
		return
	}

	h.respondWithToken(w, created)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginRequest
	if !h.decode(w, r, &payload) {
		return
	}

	authenticated, err := h.svc.Authenticate(r.Context(), payload.Email, payload.Senha)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			respondWithError(w, http.StatusUnauthorized, "Email ou senha incorretos")
			return
		}
		log.Error().Err(err).Msg("Failed to authenticate user")
		respondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	h.respondWithToken(w, authenticated)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Token de acesso necessário")
		return
	}

	current, err := h.svc.GetByID(r.Context(), claims.UserID)
	if err != nil {
		h.respondUserError(w, err, "Failed to load profile")
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(current))
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Token de acesso necessário")
		return
	}

	var payload UpdateProfileRequest
	if !h.decode(w, r, &payload) {
		return
	}

	updated, err := h.svc.UpdateProfile(r.Context(), claims.UserID, user.ProfileUpdate{
		Name:    payload.Nome,
		Phone:   payload.Telefone,
		Address: payload.Endereco,
	})
	if err != nil {
		h.respondUserError(w, err, "Failed to update profile")
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(updated))
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Token de acesso necessário")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+4096)
	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read avatar upload")
		respondWithError(w, http.StatusBadRequest, "Arquivo inválido")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		respondWithError(w, http.StatusBadRequest, "Arquivo deve ser uma imagem")
		return
	}
	if header.Size > maxAvatarSize {
		respondWithError(w, http.StatusBadRequest, "Arquivo muito grande. Máximo 5MB")
		return
	}

	filename, err := h.saveAvatarFile(file, header.Filename, claims.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to store avatar file")
		respondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	previous, err := h.svc.SetAvatar(r.Context(), claims.UserID, filename)
	if err != nil {
		// The database is the source of truth; remove the orphan file.
		_ = os.Remove(filepath.Join(h.avatarDir, filename))
		h.respondUserError(w, err, "Failed to update avatar")
		return
	}

	if previous != nil && *previous != filename {
		if rmErr := os.Remove(filepath.Join(h.avatarDir, *previous)); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn().Err(rmErr).Str("avatar", *previous).Msg("Failed to remove previous avatar")
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message":         "Avatar enviado com sucesso",
		"avatar_filename": filename,
	})
}

func (h *UserHandler) saveAvatarFile(src io.Reader, originalName string, userID int64) (string, error) {
	if err := os.MkdirAll(h.avatarDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create avatar directory: %w", err)
	}

	ext := strings.TrimPrefix(filepath.Ext(originalName), ".")
	if ext == "" {
		ext = "jpg"
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate avatar filename: %w", err)
	}
	filename := fmt.Sprintf("%d_%s.%s", userID, strings.ReplaceAll(id.String(), "-", ""), ext)

	dst, err := os.Create(filepath.Join(h.avatarDir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write avatar file: %w", err)
	}

	return filename, nil
}

func (h *UserHandler) decode(w http.ResponseWriter, r *http.Request, payload any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	if err := h.validate.Struct(payload); err != nil {
		if !respondWithValidationErrors(w, err) {
			log.Error().Err(err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}

	return true
}

func (h *UserHandler) respondWithToken(w http.ResponseWriter, u *user.User) {
	token, err := h.tokens.Issue(u)
	if err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("Failed to issue token")
		respondWithError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	respondWithJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        toUserResponse(u),
	})
}

func (h *UserHandler) respondUserError(w http.ResponseWriter, err error, logMessage string) {
	statusCode := mapErrorToStatusCode(err)

	var clientMessage string
	switch {
	case errors.Is(err, user.ErrEmailExists):
		clientMessage = "Email já está cadastrado"
	case errors.Is(err, user.ErrNotFound):
		clientMessage = "Usuário não encontrado"
	case errors.Is(err, user.ErrInvalidProfile):
		clientMessage = err.Error()
	default:
		log.Error().Err(err).Msg(logMessage)
		clientMessage = "Erro interno do servidor"
	}

	respondWithError(w, statusCode, clientMessage)
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Nome:           u.Name,
		Telefone:       u.Phone,
		Endereco:       u.Address,
		AvatarFilename: u.AvatarFilename,
		IsAdmin:        u.IsAdmin,
		CriadoEm:       u.CreatedAt,
		AtualizadoEm:   u.UpdatedAt,
	}
}
