package devserver

import (
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"tugestor-cli/internal/model"
)

func validateCategory(req model.CategoryRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return invalid(map[string]string{"nombre": "El nombre de la categoría no puede estar vacío"})
	}
	if n := utf8.RuneCountInString(name); n < 3 || n > 32 {
		return invalid(map[string]string{"nombre": "El nombre de la categoría debe tener entre 3 y 32 caracteres"})
	}
	return nil
}

// ownedCategories returns the user's categories ordered by id. Caller holds s.mu.
func (s *Server) ownedCategories(uid int64, keep func(*category) bool) []model.Category {
	out := []model.Category{}
	for _, cat := range s.categories {
		if cat.owner == uid && (keep == nil || keep(cat)) {
			out = append(out, cat.Category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) listCategories(c echo.Context) error {
	uid := currentUser(c)
	s.mu.Lock()
	out := s.ownedCategories(uid, nil)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, out)
}

func (s *Server) searchCategories(c echo.Context) error {
	uid := currentUser(c)
	partial := strings.ToLower(strings.TrimSpace(pathParam(c, "partial")))
	s.mu.Lock()
	out := s.ownedCategories(uid, func(cat *category) bool {
		return strings.Contains(strings.ToLower(cat.Name), partial)
	})
	s.mu.Unlock()
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createCategory(c echo.Context) error {
	var req model.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusBadRequest, "Cuerpo de la petición inválido.")
	}
	if err := validateCategory(req); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cat := &category{
		Category: model.Category{ID: s.id(), Name: strings.TrimSpace(req.Name), Color: req.Color, Icon: req.Icon},
		owner:    currentUser(c),
	}
	s.categories[cat.ID] = cat
	return c.JSON(http.StatusOK, cat.Category)
}

// lookupCategory returns the user's category id. Caller holds s.mu.
func (s *Server) lookupCategory(uid, id int64) (*category, error) {
	cat, ok := s.categories[id]
	if !ok {
		return nil, fail(http.StatusNotFound, "Categoría no encontrada con el id: "+itoa(id))
	}
	if cat.owner != uid {
		return nil, fail(http.StatusForbidden, "No tienes permiso sobre esta categoría.")
	}
	return cat, nil
}

func (s *Server) updateCategory(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req model.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusBadRequest, "Cuerpo de la petición inválido.")
	}
	if err := validateCategory(req); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, err := s.lookupCategory(currentUser(c), id)
	if err != nil {
		return err
	}
	cat.Name = strings.TrimSpace(req.Name)
	cat.Color = req.Color
	cat.Icon = req.Icon
	return c.JSON(http.StatusOK, cat.Category)
}

// deleteCategory leaves referencing tasks in place without a category.
func (s *Server) deleteCategory(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookupCategory(currentUser(c), id); err != nil {
		return err
	}
	delete(s.categories, id)
	orphaned := 0
	for _, t := range s.tasks {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = nil
			orphaned++
		}
	}
	s.log.WithField("category_id", id).WithField("orphaned", orphaned).Info("category deleted")
	return c.NoContent(http.StatusOK)
}
