// Package app wires dependencies and routes into a gin engine
package app

import (
	"bitwise74/todo-api/app/root"
	"bitwise74/todo-api/app/todo"
	"bitwise74/todo-api/app/user"
	"bitwise74/todo-api/config"
	"bitwise74/todo-api/db"
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/internal/service"
	"bitwise74/todo-api/pkg/apperr"
	"bitwise74/todo-api/pkg/middleware"
	"bitwise74/todo-api/pkg/response"
	"bitwise74/todo-api/pkg/security"
	"bitwise74/todo-api/pkg/validators"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	maxBodySize     = 1 << 20
	msgNoRoute      = "The requested resource does not exist."
	msgNoMethod     = "The requested method is not allowed."
	msgHandlerPanic = "handler panicked"
)

// NewDeps opens the database and builds every service the handlers use.
// The mail queue workers are already running when it returns.
func NewDeps(cfg *config.Config) (*internal.Deps, error) {
	conn, err := db.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	v, err := validators.New(cfg.Validation.MaxStringLength)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize validator, %w", err)
	}

	mailer, err := service.NewMailer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer, %w", err)
	}

	q := service.NewMailQueue(mailer, cfg.Mail.Workers, cfg.Mail.QueueSize)
	q.StartWorkerPool()

	argon := security.New()
	sessions := service.NewSessionIssuer(conn, cfg.JWT.Secret, cfg.App.Name)

	return &internal.Deps{
		Config:    cfg,
		DB:        conn,
		Argon:     argon,
		Validator: v,
		Sessions:  sessions,
		Auth:      service.NewAuthService(conn, argon, sessions, q, cfg.Verification),
		MailQueue: q,
	}, nil
}

// NewRouter returns the engine serving every endpoint under /api
func NewRouter(d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     d.Config.Host.CORS,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.NewRequestIDMiddleware(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			response.Error(c, apperr.Unexpected(fmt.Errorf("%v", recovered), msgHandlerPanic))
		}),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	router.NoRoute(func(c *gin.Context) { response.Abort(c, http.StatusNotFound, msgNoRoute) })
	router.NoMethod(func(c *gin.Context) { response.Abort(c, http.StatusMethodNotAllowed, msgNoMethod) })

	auth := middleware.NewAuthMiddleware(d.Sessions)
	h := func(fn func(*gin.Context, *internal.Deps)) gin.HandlerFunc {
		return func(c *gin.Context) { fn(c, d) }
	}

	m := router.Group("/api", middleware.BodySizeLimiter(maxBodySize))
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate		-> Validates a bearer token
		m.GET("/validate", auth, root.Validate)

		// POST /api/register		-> Registers a new user and mails them a verification code
		m.POST("/register", h(user.UserRegister))

		// POST /api/verify-email	-> Verifies a user's email with the mailed code
		m.POST("/verify-email", h(user.UserVerify))

		// POST /api/resend-verification-code	-> Mails a new code once the cooldown passed
		m.POST("/resend-verification-code", h(user.UserResendCode))

		// POST /api/login 		-> Logs in a user and returns a bearer token
		m.POST("/login", h(user.UserLogin))

		// POST /api/reset-password	-> Sets a new password using a mailed code
		m.POST("/reset-password", h(user.UserResetPassword))

		// POST /api/logout		-> Revokes the token the request was made with
		m.POST("/logout", auth, h(user.UserLogout))

		// GET /api/user		-> Returns the authenticated user and their latest todos
		m.GET("/user", auth, h(user.UserFetch))
	}

	t := m.Group("/todos", auth)
	{
		// GET /api/todos?page=N	-> Returns a page of the user's todos
		t.GET("", h(todo.TodoList))

		// POST /api/todos		-> Creates a todo
		t.POST("", h(todo.TodoCreate))

		// GET /api/todos/:id		-> Returns a todo if the user owns it
		t.GET("/:id", h(todo.TodoFetch))

		// PUT /api/todos/:id		-> Updates a todo
		t.PUT("/:id", h(todo.TodoEdit))

		// PATCH /api/todos/:id		-> Updates a todo
		t.PATCH("/:id", h(todo.TodoEdit))

		// DELETE /api/todos/:id	-> Deletes a todo owned by the user
		t.DELETE("/:id", h(todo.TodoDelete))
	}

	return router
}
