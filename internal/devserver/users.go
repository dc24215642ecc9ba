package devserver

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"tugestor-cli/internal/model"
)

func (s *Server) register(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusBadRequest, "Cuerpo de la petición inválido.")
	}
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	fields := map[string]string{}
	if name == "" {
		fields["nombre"] = "El nombre no puede estar vacío"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "El email debe ser válido"
	}
	if len(req.Password) < 6 {
		fields["password"] = "La contraseña debe tener al menos 6 caracteres"
	}
	if len(fields) > 0 {
		return invalid(fields)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byEmail[email]; dup {
		return fail(http.StatusConflict, "Ya existe un usuario con el email: "+email)
	}
	u := &user{User: model.User{ID: s.id(), Name: name, Email: email}, hash: hash}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	s.log.WithField("user_id", u.ID).Info("user registered")
	return c.JSON(http.StatusCreated, u.User)
}

func (s *Server) login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusBadRequest, "Cuerpo de la petición inválido.")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	id, ok := s.byEmail[email]
	var u user
	if ok {
		u = *s.users[id]
	}
	s.mu.Unlock()

	// One message for unknown email and wrong password alike.
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(req.Password)) != nil {
		return fail(http.StatusUnauthorized, "Credenciales inválidas.")
	}
	tok, err := s.auth.Issue(u.ID, u.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, model.LoginResponse{UserID: u.ID, Name: u.Name, Email: u.Email, Token: tok})
}
