// Package sessions hält serverseitigen Zustand pro Client. Der Client kennt nur
// ein opakes Token im Cookie; Seitenaufrufe und angemeldeter Benutzer liegen im Store.
package sessions

import (
	"context"
	"errors"
)

var (
	// ErrNotFound meldet ein unbekanntes oder abgelaufenes Token.
	ErrNotFound = errors.New("session not found")
	// ErrInvalid meldet gespeicherte Daten, die sich nicht dekodieren lassen.
	ErrInvalid = errors.New("session data invalid")
)

// Data ist der persistierte Teil einer Session. Nil-Felder gelten als nicht gesetzt.
type Data struct {
	PageViews *int  `json:"page_views,omitempty"`
	UserID    *uint `json:"user_id,omitempty"`
}

// Empty meldet, ob kein Feld gesetzt ist.
func (d Data) Empty() bool {
	return d.PageViews == nil && d.UserID == nil
}

// Store ist das Backend, in dem Sessions zwischen Requests liegen.
type Store interface {
	Load(ctx context.Context, token string) (Data, error)
	Save(ctx context.Context, token string, data Data) error
	Delete(ctx context.Context, token string) error
}

// Session ist der Zustand eines Clients während eines einzelnen Requests.
// Sie wird vor dem Handler geladen und danach zurückgeschrieben.
type Session struct {
	token    string
	data     Data
	modified bool
}

// New erzeugt eine Session mit bereits geladenen Daten.
func New(token string, data Data) *Session {
	return &Session{token: token, data: data}
}

func (s *Session) Token() string { return s.token }

// Data gibt eine Kopie des aktuellen Zustands zurück.
func (s *Session) Data() Data {
	d := Data{}
	if s.data.PageViews != nil {
		v := *s.data.PageViews
		d.PageViews = &v
	}
	if s.data.UserID != nil {
		v := *s.data.UserID
		d.UserID = &v
	}
	return d
}

// Modified meldet, ob der Zustand seit dem Laden verändert wurde.
func (s *Session) Modified() bool { return s.modified }

// PageViews gibt den Zähler zurück; 0, wenn er nie gesetzt wurde.
func (s *Session) PageViews() int {
	if s.data.PageViews == nil {
		return 0
	}
	return *s.data.PageViews
}

// IncrementPageViews erhöht den Zähler um eins und gibt den neuen Wert zurück.
func (s *Session) IncrementPageViews() int {
	v := s.PageViews() + 1
	s.data.PageViews = &v
	s.modified = true
	return v
}

// UserID gibt die ID des angemeldeten Benutzers zurück.
func (s *Session) UserID() (uint, bool) {
	if s.data.UserID == nil {
		return 0, false
	}
	return *s.data.UserID, true
}

func (s *Session) SetUserID(id uint) {
	s.data.UserID = &id
	s.modified = true
}

// ClearUserID entfernt den angemeldeten Benutzer, der Zähler bleibt.
func (s *Session) ClearUserID() {
	if s.data.UserID == nil {
		return
	}
	s.data.UserID = nil
	s.modified = true
}

// Clear entfernt Zähler und Benutzer.
func (s *Session) Clear() {
	if s.data.Empty() {
		return
	}
	s.data = Data{}
	s.modified = true
}
