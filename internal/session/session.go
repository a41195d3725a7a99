// Package session holds the signed-in author and their role for the
// lifetime of a login.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNoSession is returned when nobody is logged in.
	ErrNoSession = errors.New("no active session")
	// ErrForbidden is returned when the session's role may not author content.
	ErrForbidden = errors.New("role may not author lessons")
)

// Role is the account role of a session.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// ValidRoles are the roles a session may carry.
var ValidRoles = map[Role]bool{
	RoleAdmin:   true,
	RoleTeacher: true,
	RoleStudent: true,
}

// Session is one login.
type Session struct {
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	StartedAt time.Time `json:"started_at"`
}

// CanAuthor reports whether the role may edit lessons.
func (s *Session) CanAuthor() bool {
	return s != nil && (s.Role == RoleAdmin || s.Role == RoleTeacher)
}

// Manager owns the current session. Components ask it for the session
// instead of reading ambient state.
type Manager struct {
	mu      sync.Mutex
	current *Session
	logger  *zap.Logger
	now     func() time.Time
}

func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger, now: time.Now}
}

// Login starts a session, replacing any existing one.
func (m *Manager) Login(userID string, role Role) (*Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	role = Role(strings.ToLower(string(role)))
	if !ValidRoles[role] {
		return nil, fmt.Errorf("invalid role %q (valid: admin, teacher, student)", role)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.logger.Info("replacing session", zap.String("user_id", m.current.UserID))
	}
	m.current = &Session{UserID: userID, Role: role, StartedAt: m.now().UTC()}
	m.logger.Info("logged in", zap.String("user_id", userID), zap.String("role", string(role)))
	return m.copyCurrent(), nil
}

// Logout ends the current session, if any.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	m.logger.Info("logged out", zap.String("user_id", m.current.UserID))
	m.current = nil
}

// Current returns a copy of the active session.
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, ErrNoSession
	}
	return m.copyCurrent(), nil
}

// RequireAuthor returns the active session if it may author content.
func (m *Manager) RequireAuthor() (*Session, error) {
	s, err := m.Current()
	if err != nil {
		return nil, err
	}
	if !s.CanAuthor() {
		return nil, fmt.Errorf("%s (%s): %w", s.UserID, s.Role, ErrForbidden)
	}
	return s, nil
}

func (m *Manager) copyCurrent() *Session {
	s := *m.current
	return &s
}
