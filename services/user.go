package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go-shop/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore persists users. Implementations serialize their own writes.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Insert(ctx context.Context, u models.User) error
	Update(ctx context.Context, u models.User) error
	Delete(ctx context.Context, id string) error
}

// UserService manages accounts on top of a UserStore.
type UserService struct {
	// mu makes check-then-write sequences (uniqueness, existence) atomic.
	mu    sync.Mutex
	store UserStore
	cost  int
	log   *slog.Logger
}

// NewUserService creates a user service backed by store.
func NewUserService(store UserStore, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{store: store, cost: bcrypt.DefaultCost, log: log.With("component", "users")}
}

// UserInput carries the writable user fields. Password is plaintext.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.List(ctx)
}

func (s *UserService) findBy(ctx context.Context, match func(models.User) bool) (models.User, bool, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	for _, u := range users {
		if match(u) {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

func (s *UserService) lookup(ctx context.Context, field, value string, match func(models.User) bool) (models.User, error) {
	if strings.TrimSpace(value) == "" {
		return models.User{}, fmt.Errorf("%w: %s cannot be empty", ErrValidation, field)
	}
	u, ok, err := s.findBy(ctx, match)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, fmt.Errorf("%w: user with %s %s", ErrNotFound, field, value)
	}
	return u, nil
}

// Get returns user id.
func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	return s.lookup(ctx, "id", id, func(u models.User) bool { return u.ID == id })
}

// GetByUsername returns the user with exactly this username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.lookup(ctx, "username", username, func(u models.User) bool { return u.Username == username })
}

// GetByEmail returns the user with exactly this email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.lookup(ctx, "email", email, func(u models.User) bool { return u.Email == email })
}

func validateUserInput(in UserInput, requirePassword bool) error {
	if strings.TrimSpace(in.Username) == "" {
		return fmt.Errorf("%w: username cannot be empty", ErrValidation)
	}
	if strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("%w: email cannot be empty", ErrValidation)
	}
	if requirePassword && strings.TrimSpace(in.Password) == "" {
		return fmt.Errorf("%w: password cannot be empty", ErrValidation)
	}
	switch normalizeRole(in.Role) {
	case models.RoleCustomer, models.RoleAdmin:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	// The file store is pipe-delimited.
	for _, v := range []string{in.Username, in.Email, in.Password, in.Role} {
		if strings.ContainsAny(v, "|\n\r") {
			return fmt.Errorf("%w: fields cannot contain '|' or line breaks", ErrValidation)
		}
	}
	return nil
}

func (s *UserService) usernameTaken(ctx context.Context, username, exceptID string) error {
	_, taken, err := s.findBy(ctx, func(u models.User) bool {
		return u.ID != exceptID && strings.EqualFold(u.Username, username)
	})
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: username %q is already taken", ErrConflict, username)
	}
	return nil
}

// Create registers a new user. The role defaults to CUSTOMER.
func (s *UserService) Create(ctx context.Context, in UserInput) (models.User, error) {
	if err := validateUserInput(in, true); err != nil {
		return models.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{
		ID:       uuid.NewString(),
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Password: string(hash),
		Role:     normalizeRole(in.Role),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usernameTaken(ctx, u.Username, ""); err != nil {
		return models.User{}, err
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return models.User{}, err
	}
	s.log.Info("user created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Update replaces username and email, and password or role when provided.
func (s *UserService) Update(ctx context.Context, id string, in UserInput) (models.User, error) {
	if strings.TrimSpace(id) == "" {
		return models.User{}, fmt.Errorf("%w: id cannot be empty", ErrValidation)
	}
	if err := validateUserInput(in, false); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if err := s.usernameTaken(ctx, in.Username, id); err != nil {
		return models.User{}, err
	}
	u.Username = strings.TrimSpace(in.Username)
	u.Email = strings.TrimSpace(in.Email)
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		u.Password = string(hash)
	}
	if strings.TrimSpace(in.Role) != "" {
		u.Role = normalizeRole(in.Role)
	}
	if err := s.store.Update(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Delete removes user id.
func (s *UserService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", "user_id", id)
	return nil
}

// Authenticate checks a username (case-insensitive) and password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	u, ok, err := s.findBy(ctx, func(u models.User) bool {
		return strings.EqualFold(strings.TrimSpace(u.Username), username)
	})
	if err != nil {
		return models.User{}, err
	}
	if !ok || !passwordMatches(u.Password, password) {
		return models.User{}, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}
	return u, nil
}

// passwordMatches accepts bcrypt hashes and, for rows written before hashing
// was introduced, plaintext.
func passwordMatches(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(stored)), []byte(given)) == 1
}

func normalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return models.RoleCustomer
	}
	return role
}
