// Package devserver is an in-memory gestortareas service used for local runs and tests.
package devserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"tugestor-cli/internal/model"
)

const defaultTokenTTL = 24 * time.Hour

type Options struct {
	// Secret signs HS256 session tokens. A fixed development secret is used when empty.
	Secret []byte
	// Now overrides the clock used for timestamps and state derivation.
	Now      func() time.Time
	TokenTTL time.Duration
	Logger   *log.Logger
}

type user struct {
	model.User
	hash []byte
}

type category struct {
	model.Category
	owner int64
}

type Server struct {
	e      *echo.Echo
	log    *log.Logger
	auth   *Auth
	now    func() time.Time
	mu     sync.Mutex
	nextID int64

	users      map[int64]*user
	byEmail    map[string]int64
	categories map[int64]*category
	tasks      map[int64]*model.Task
}

func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("tugestor-dev-secret")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	s := &Server{
		log:        opts.Logger,
		now:        opts.Now,
		auth:       NewAuth(opts.Secret, opts.TokenTTL, opts.Now),
		users:      map[int64]*user{},
		byEmail:    map[string]int64{},
		categories: map[int64]*category{},
		tasks:      map[int64]*model.Task{},
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpError
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if compress, err := httpcompression.DefaultAdapter(); err == nil {
		e.Use(echo.WrapMiddleware(compress))
	} else {
		s.log.WithError(err).Warn("response compression disabled")
	}
	s.e = e
	s.routes()
	return s
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler { return s.e }

// Start blocks serving on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("dev server listening")
	err := s.e.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) routes() {
	g := s.e.Group("/api")

	g.POST("/usuario/login", s.login)
	g.POST("/usuario/add", s.register)

	authed := g.Group("", s.requireUser)

	authed.GET("/categoria", s.listCategories)
	authed.POST("/categoria/add", s.createCategory)
	authed.PUT("/categoria/update/:id", s.updateCategory)
	authed.DELETE("/categoria/delete/:id", s.deleteCategory)
	authed.GET("/categoria/nombre/:partial", s.searchCategories)

	authed.GET("/tarea", s.listTasks)
	authed.POST("/tarea/add", s.createTask)
	authed.GET("/tarea/titulo", s.sortedTasks(sortByTitle))
	authed.GET("/tarea/tiempo", s.sortedTasks(sortByTime))
	authed.GET("/tarea/prioridad", s.sortedTasks(sortByPriority))
	authed.GET("/tarea/fecha", s.sortedTasks(sortByDueDate))
	authed.GET("/tarea/hoy", s.dueToday)
	authed.GET("/tarea/estado/:id", s.taskState)
	authed.GET("/tarea/filtrar/:kind/:value", s.filteredTasks)
	authed.GET("/tarea/:id", s.getTask)
	authed.PUT("/tarea/update/:id", s.updateTask)
	authed.DELETE("/tarea/delete/:id", s.deleteTask)
	authed.PATCH("/tarea/completar/:id", s.completeTask)
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}
