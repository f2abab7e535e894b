package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/utils"
)

// UserController handles registration, login and profile requests.
type UserController struct {
	users    repository.UserRepository
	tokens   *utils.TokenManager
	mail     *utils.EmailService
	validate *validator.Validate
}

// NewUserController creates a new UserController.
func NewUserController(users repository.UserRepository, tokens *utils.TokenManager, mail *utils.EmailService) *UserController {
	return &UserController{
		users:    users,
		tokens:   tokens,
		mail:     mail,
		validate: validator.New(),
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// authResponse is the payload returned on successful register/login.
type authResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// Register handles user registration with the default user role.
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	uc.register(w, r, models.RoleUser)
}

// RegisterAdmin handles registration of an admin account.
func (uc *UserController) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	uc.register(w, r, models.RoleAdmin)
}

func (uc *UserController) register(w http.ResponseWriter, r *http.Request, role string) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := uc.validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid user data")
		return
	}

	// Check if user already exists
	_, err := uc.users.FindByEmail(r.Context(), req.Email)
	if err == nil {
		utils.RespondError(w, http.StatusBadRequest, "User already exists")
		return
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		slog.Error("failed to look up user", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Role:     role,
	}
	if err := uc.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			utils.RespondError(w, http.StatusBadRequest, "User already exists")
			return
		}
		slog.Error("failed to create user", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	token, err := uc.tokens.Generate(user.ID.Hex(), user.Role)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	// Welcome mail is best-effort and must not block or fail the request.
	go func(name, email string) {
		if err := uc.mail.SendWelcomeEmail(name, email); err != nil {
			slog.Warn("failed to send welcome email", "email", email, "error", err)
		}
	}(user.Name, user.Email)

	utils.RespondJSON(w, http.StatusCreated, authResponse{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	})
}

// Login handles user authentication.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := uc.validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid credentials payload")
		return
	}

	user, err := uc.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			utils.RespondError(w, http.StatusUnauthorized, "User doesn't exist")
			return
		}
		slog.Error("failed to look up user", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Server error occurred during login")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		utils.RespondError(w, http.StatusUnauthorized, "Wrong password")
		return
	}

	token, err := uc.tokens.Generate(user.ID.Hex(), user.Role)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Server error occurred during login")
		return
	}

	utils.RespondJSON(w, http.StatusOK, authResponse{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	})
}

// GetProfile returns the authenticated user's profile.
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"id":    user.ID.Hex(),
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}
