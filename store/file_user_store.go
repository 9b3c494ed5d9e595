package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"go-shop/models"
)

const (
	delimiter = "|"
	header    = "USER_ID|USER_NAME|EMAIL|PASSWORD|ROLE"
)

// ErrUserNotFound is returned by writes that target an unknown user.
var ErrUserNotFound = errors.New("store: user not found")

// ErrUserExists is returned when inserting an id that is already stored.
var ErrUserExists = errors.New("store: user already exists")

// FileUserStore keeps users in a pipe-delimited text file, one record per
// line after a header. All users are loaded at open; inserts append and
// updates or deletes rewrite the whole file. One lock covers every
// read-modify-write sequence.
type FileUserStore struct {
	mu    sync.Mutex
	path  string
	users []models.User
	log   *slog.Logger
}

// OpenFileUserStore loads path, creating it with a header if it is missing.
func OpenFileUserStore(path string, log *slog.Logger) (*FileUserStore, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &FileUserStore{path: path, log: log.With("component", "file_user_store", "path", path)}
	if err := s.init(); err != nil {
		return nil, err
	}
	users, err := s.read()
	if err != nil {
		return nil, err
	}
	s.users = users
	s.log.Info("users loaded", "count", len(users))
	return s, nil
}

func (s *FileUserStore) init() error {
	info, err := os.Stat(s.path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: stat %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, []byte(header+"\n"), 0o644); err != nil {
		return fmt.Errorf("store: create %s: %w", s.path, err)
	}
	return nil
}

func (s *FileUserStore) read() ([]models.User, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", s.path, err)
	}
	defer f.Close()

	var users []models.User
	sc := bufio.NewScanner(f)
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		u, ok := parseRecord(sc.Text())
		if !ok {
			continue
		}
		users = append(users, u)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	return users, nil
}

// parseRecord decodes "id|username|email|password[|role]". Lines with fewer
// than four columns are rejected.
func parseRecord(line string) (models.User, bool) {
	parts := strings.SplitN(line, delimiter, 5)
	if len(parts) < 4 {
		return models.User{}, false
	}
	u := models.User{
		ID:       strings.TrimSpace(parts[0]),
		Username: strings.TrimSpace(parts[1]),
		Email:    strings.TrimSpace(parts[2]),
		Password: strings.TrimSpace(parts[3]),
		Role:     models.RoleCustomer,
	}
	if len(parts) == 5 && strings.TrimSpace(parts[4]) != "" {
		u.Role = strings.TrimSpace(parts[4])
	}
	return u, true
}

func formatRecord(u models.User) string {
	role := u.Role
	if role == "" {
		role = models.RoleCustomer
	}
	return strings.Join([]string{u.ID, u.Username, u.Email, u.Password, role}, delimiter)
}

// List returns a copy of the loaded users.
func (s *FileUserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users), nil
}

// Insert appends u to the file.
func (s *FileUserStore) Insert(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index(u.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrUserExists, u.ID)
	}
	if err := s.init(); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("store: open %s: %w", s.path, err)
	}
	if _, err := f.WriteString(formatRecord(u) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("store: append user: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", s.path, err)
	}
	s.users = append(s.users, u)
	return nil
}

// Update replaces the stored record with the same id and rewrites the file.
func (s *FileUserStore) Update(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(u.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, u.ID)
	}
	next := slices.Clone(s.users)
	next[i] = u
	if err := s.rewrite(next); err != nil {
		return err
	}
	s.users = next
	return nil
}

// Delete removes user id and rewrites the file.
func (s *FileUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	next := slices.Delete(slices.Clone(s.users), i, i+1)
	if err := s.rewrite(next); err != nil {
		return err
	}
	s.users = next
	return nil
}

// Clear drops every user, leaving only the header.
func (s *FileUserStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rewrite(nil); err != nil {
		return err
	}
	s.users = nil
	return nil
}

func (s *FileUserStore) index(id string) int {
	return slices.IndexFunc(s.users, func(u models.User) bool { return u.ID == id })
}

// rewrite replaces the file through a temp file and rename.
func (s *FileUserStore) rewrite(users []models.User) error {
	tmp := s.path + ".tmp"
	var b strings.Builder
	b.WriteString(header + "\n")
	for _, u := range users {
		b.WriteString(formatRecord(u) + "\n")
	}
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: replace %s: %w", s.path, err)
	}
	return nil
}
