package model

import (
	"strconv"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow       Priority = "BAJA"
	PriorityMedium    Priority = "MEDIA"
	PriorityHigh      Priority = "ALTA"
	PriorityEssential Priority = "IMPRESCINDIBLE"
)

// Priorities lists every priority in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityEssential}

func (p Priority) Valid() bool { return p.Rank() >= 0 }

// Rank is the position of p in Priorities, or -1 for unknown values.
func (p Priority) Rank() int {
	for i, x := range Priorities {
		if x == p {
			return i
		}
	}
	return -1
}

type State string

const (
	StateInProgress    State = "EN_CURSO"
	StateCompleted     State = "COMPLETADA"
	StateCompletedLate State = "COMPLETADA_CON_RETRASO"
	StateOverdue       State = "VENCIDA"
	StateNoDate        State = "SIN_FECHA"
)

var States = []State{StateInProgress, StateCompleted, StateCompletedLate, StateOverdue, StateNoDate}

func (s State) Valid() bool {
	for _, x := range States {
		if x == s {
			return true
		}
	}
	return false
}

// IsDone reports whether s is one of the completed states.
func (s State) IsDone() bool {
	return s == StateCompleted || s == StateCompletedLate
}

type Task struct {
	ID          int64      `json:"idTarea"`
	Title       string     `json:"titulo"`
	Description string     `json:"descripcion,omitempty"`
	Time        int        `json:"tiempo"`
	Priority    Priority   `json:"prioridad"`
	State       State      `json:"estado,omitempty"`
	DueAt       *LocalTime `json:"fechaEntrega,omitempty"`
	AddedAt     *LocalTime `json:"fechaAgregado,omitempty"`
	Completed   bool       `json:"completada"`
	CompletedAt *LocalTime `json:"fechaCompletada,omitempty"`

	// CategoryID is nil for tasks whose category was deleted (orphaned).
	CategoryID   *int64 `json:"idCategoria,omitempty"`
	CategoryName string `json:"categoriaNombre,omitempty"`
	UserID       *int64 `json:"idUsuario,omitempty"`
}

type Category struct {
	ID    int64  `json:"idCategoria"`
	Name  string `json:"nombre"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icono,omitempty"`
}

type User struct {
	ID    int64  `json:"idUsuario"`
	Name  string `json:"nombre"`
	Email string `json:"email"`
}

// TaskRequest is the body of task create/update calls.
//
// DueAt is sent verbatim (possibly empty); the service parses it.
type TaskRequest struct {
	Title       string   `json:"titulo"`
	Description string   `json:"descripcion"`
	Time        int      `json:"tiempo"`
	Priority    Priority `json:"prioridad"`
	DueAt       string   `json:"fechaEntrega"`
	CategoryID  *int64   `json:"idCategoria,omitempty"`
}

type CategoryRequest struct {
	Name  string `json:"nombre"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icono,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID int64  `json:"idUsuario"`
	Name   string `json:"nombre"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

type RegisterRequest struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LocalTimeLayout is the zone-less wire format used by the service.
const LocalTimeLayout = "2006-01-02T15:04:05"

// LocalTime is a wall-clock timestamp without zone information.
type LocalTime struct {
	time.Time
}

func NewLocalTime(t time.Time) *LocalTime {
	return &LocalTime{Time: t}
}

var localTimeLayouts = []string{
	LocalTimeLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.RFC3339Nano,
	"2006-01-02",
}

// ParseLocalTime accepts the layouts the service and users commonly produce.
func ParseLocalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range localTimeLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.Format(LocalTimeLayout))), nil
}

func (t *LocalTime) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	raw, err := strconv.Unquote(s)
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseLocalTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t *LocalTime) String() string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
