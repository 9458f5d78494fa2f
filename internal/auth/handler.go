package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/freshmart/storefront/internal/platform/httpx"
	"github.com/freshmart/storefront/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/csrf", h.csrfToken)
	r.Get("/me", h.me)
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

// LoginForm is the sign-in input.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterForm is the sign-up input.
type RegisterForm struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
}

// Identity describes the session principal.
type Identity struct {
	Authenticated bool   `json:"authenticated"`
	UserID        int64  `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	CSRFToken     string `json:"csrf_token"`
}

func (h *Handler) identity(r *http.Request, sess *shared.Session) Identity {
	token, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	id := Identity{CSRFToken: token}
	if userID, ok := sess.UserID(); ok {
		id.Authenticated = true
		id.UserID = userID
		id.Email = sess.Get(shared.SessionEmailKey)
		id.Name = sess.Get(shared.SessionNameKey)
	}
	return id
}

func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrfManager.EnsureToken(r.Context(), sess)
	if err != nil {
		h.logger.Error("issue csrf token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]string{"csrf_token": token})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, shared.ErrSessionMissing)
		return
	}
	httpx.OK(w, h.identity(r, sess))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.RespondError(w, shared.ErrSessionMissing)
		return
	}
	var form LoginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "Malformed request body"))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.RespondError(w, httpx.Invalid("Enter a valid email and password"))
		return
	}

	user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		h.logger.Warn("login failed", slog.Any("error", err))
		if errors.Is(err, ErrInvalidCredentials) {
			err = httpx.WithMessage(httpx.ErrUnauthorized, "Invalid email or password")
		}
		httpx.RespondError(w, err)
		return
	}
	sess.SignIn(user.ID, user.Email, DisplayName(user))
	if _, err := h.csrfManager.Rotate(r.Context(), sess); err != nil {
		h.logger.Warn("rotate csrf token", slog.Any("error", err))
	}
	httpx.Success(w, http.StatusOK, h.identity(r, sess), "Welcome back, "+DisplayName(user))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, shared.ErrSessionMissing)
		return
	}
	var form RegisterForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.WithMessage(httpx.ErrBadRequest, "Malformed request body"))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		msg := "Please fill in all required fields"
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			switch verrs[0].Field() {
			case "Email":
				msg = "Enter a valid email address"
			case "Password":
				msg = "Password must be at least 8 characters"
			}
		}
		httpx.RespondError(w, httpx.Invalid(msg))
		return
	}
	user, err := h.service.Register(r.Context(), form)
	if err != nil {
		h.logger.Error("register", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	sess.SignIn(user.ID, user.Email, DisplayName(user))
	if _, err := h.csrfManager.Rotate(r.Context(), sess); err != nil {
		h.logger.Warn("rotate csrf token", slog.Any("error", err))
	}
	httpx.Success(w, http.StatusCreated, h.identity(r, sess), "Account created")
}

// handleLogout destroys the session. Guest data of the new session starts empty.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessionManager.Destroy(sess)
	}
	httpx.Success(w, http.StatusOK, nil, "Signed out")
}
