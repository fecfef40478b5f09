package auth

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	SessionCookieName = "session"
	// keep the cookie under the 4KB browser limit
	maxCookieSize = 3800
)

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashInfo    FlashKind = "info"
	FlashWarning FlashKind = "warning"
	FlashDanger  FlashKind = "danger"
)

type Flash struct {
	Kind    FlashKind `json:"k"`
	Message string    `json:"m"`
}

// Session is the per-caller state carried in a signed cookie: the logged-in user,
// flashes queued for the next page, and the values of a form that failed.
type Session struct {
	UserID  uuid.UUID
	Flashes []Flash
	Form    url.Values
	Errors  map[string]string
}

func (s *Session) IsAuthenticated() bool {
	return s.UserID != uuid.Nil
}

func (s *Session) SetUser(id uuid.UUID) {
	s.UserID = id
}

func (s *Session) ClearUser() {
	s.UserID = uuid.Nil
}

func (s *Session) AddFlash(kind FlashKind, message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: message})
}

// KeepForm stores submitted values for re-display. Passwords are never kept.
func (s *Session) KeepForm(values url.Values, fieldErrors map[string]string) {
	kept := make(url.Values, len(values))
	for k, v := range values {
		if k == "password" || k == "_method" {
			continue
		}
		kept[k] = v
	}
	s.Form = kept
	s.Errors = fieldErrors
}

// PopFlashes returns the queued flashes and clears them.
func (s *Session) PopFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// PopForm returns the kept form and its field errors and clears them.
func (s *Session) PopForm() (url.Values, map[string]string) {
	form, fieldErrors := s.Form, s.Errors
	s.Form, s.Errors = nil, nil
	return form, fieldErrors
}

func (s *Session) isEmpty() bool {
	return !s.IsAuthenticated() && len(s.Flashes) == 0 && len(s.Form) == 0 && len(s.Errors) == 0
}

type sessionClaims struct {
	UserID  string              `json:"uid,omitempty"`
	Flashes []Flash             `json:"fl,omitempty"`
	Form    map[string][]string `json:"fm,omitempty"`
	Errors  map[string]string   `json:"fe,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager signs the session as an HS256 token stored in a cookie.
type SessionManager struct {
	key    []byte
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(secret string, maxAge time.Duration, secure bool) *SessionManager {
	return &SessionManager{key: []byte(secret), maxAge: maxAge, secure: secure, now: time.Now}
}

// Load never fails: a missing, expired or tampered cookie yields an empty session.
func (m *SessionManager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			log.Warn().Err(err).Str("remoteAddr", r.RemoteAddr).Msg("discarding invalid session cookie")
		}
		return &Session{}
	}

	s := &Session{
		Flashes: claims.Flashes,
		Form:    claims.Form,
		Errors:  claims.Errors,
	}
	if claims.UserID != "" {
		if id, err := uuid.Parse(claims.UserID); err == nil {
			s.UserID = id
		}
	}
	return s
}

// Save writes the session cookie, or expires it when the session holds nothing.
func (m *SessionManager) Save(w http.ResponseWriter, s *Session) error {
	if s.isEmpty() {
		http.SetCookie(w, m.cookie("", -1))
		return nil
	}

	token, err := m.sign(s, true)
	if err != nil {
		return err
	}
	if len(token) > maxCookieSize {
		log.Warn().Int("size", len(token)).Msg("session too large, dropping kept form values")
		if token, err = m.sign(s, false); err != nil {
			return err
		}
	}

	http.SetCookie(w, m.cookie(token, int(m.maxAge.Seconds())))
	return nil
}

func (m *SessionManager) sign(s *Session, withForm bool) (string, error) {
	now := m.now()
	claims := sessionClaims{
		Flashes: s.Flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}
	if s.IsAuthenticated() {
		claims.UserID = s.UserID.String()
	}
	if withForm {
		claims.Form = s.Form
		claims.Errors = s.Errors
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

func (m *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
