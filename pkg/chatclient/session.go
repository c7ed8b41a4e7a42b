package chatclient

import (
	"sync"
	"time"

	"cofounder/pkg/api"
)

// Session is the signed in user the SDK acts for. It is created on sign in and closed on
// sign out; components bound to it register teardown hooks with OnClose.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time

	mu      sync.Mutex
	closed  bool
	onClose []func()
}

func NewSession(s api.Session) *Session {
	return &Session{
		UserID:      s.User.ID,
		Email:       s.User.Email,
		AccessToken: s.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(s.ExpiresIn) * time.Second),
	}
}

// Active reports whether the session still represents an authenticated user.
func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.UserID != ""
}

// OnClose registers fn to run when the session closes. On a closed session fn runs at once.
func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.onClose = append(s.onClose, fn)
	s.mu.Unlock()
}

// Close runs the teardown hooks in reverse registration order. Later calls do nothing.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	hooks := s.onClose
	s.onClose = nil
	s.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}
