package controllers

import (
	"fmt"
	"net/http"

	"go-shop/middleware"
	"go-shop/models"
	"go-shop/services"
	"go-shop/utils"

	"github.com/gorilla/mux"
)

// UserController handles user-related requests
type UserController struct {
	Users  *services.UserService
	Tokens *utils.TokenIssuer
}

// NewUserController creates a new UserController
func NewUserController(users *services.UserService, tokens *utils.TokenIssuer) *UserController {
	return &UserController{Users: users, Tokens: tokens}
}

// GetUsers lists every user
func (uc *UserController) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := uc.Users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUserByID retrieves a single user
func (uc *UserController) GetUserByID(w http.ResponseWriter, r *http.Request) {
	uc.writeUser(w, r)(uc.Users.Get(r.Context(), mux.Vars(r)["id"]))
}

// GetUserByUsername retrieves a user by exact username
func (uc *UserController) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	uc.writeUser(w, r)(uc.Users.GetByUsername(r.Context(), mux.Vars(r)["username"]))
}

// GetUserByEmail retrieves a user by exact email
func (uc *UserController) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	uc.writeUser(w, r)(uc.Users.GetByEmail(r.Context(), mux.Vars(r)["email"]))
}

func (uc *UserController) writeUser(w http.ResponseWriter, r *http.Request) func(models.User, error) {
	return func(u models.User, err error) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// Register handles user registration. Self-registered accounts are always
// customers; admins come from the create-admin command.
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.UserInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Role = models.RoleCustomer
	user, err := uc.Users.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// authorizeSelf allows the account owner or an admin. It reports whether
// the caller is an admin.
func authorizeSelf(r *http.Request, id string) (bool, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return false, fmt.Errorf("%w: authentication required", services.ErrUnauthorized)
	}
	admin := claims.Role == models.RoleAdmin
	if !admin && claims.UserID != id {
		return false, fmt.Errorf("%w: cannot modify another user", services.ErrForbidden)
	}
	return admin, nil
}

// UpdateUser replaces a user's details. Only admins may change roles.
func (uc *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	admin, err := authorizeSelf(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.UserInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if !admin {
		in.Role = ""
	}
	user, err := uc.Users.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user. Owner or admin only.
func (uc *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := authorizeSelf(r, id); err != nil {
		writeError(w, r, err)
		return
	}
	if err := uc.Users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := uc.Users.Authenticate(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := uc.Tokens.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user, "token": token})
}
