package handlers

import (
	"net/http"
	"path/filepath"

	"personal_blog/internal/logger"
	"personal_blog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
)

// Options are the HTTP-layer settings taken from config.
type Options struct {
	StaticDir    string
	CookieSecure bool
	MaxUploadMB  int
	// CSRFKey authenticates the CSRF cookie. A random key is used when
	// empty, so tokens do not survive a restart.
	CSRFKey []byte
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.StaticDir == "" {
		opts.StaticDir = "static"
	}
	if len(opts.CSRFKey) == 0 {
		opts.CSRFKey = securecookie.GenerateRandomKey(32)
	}
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(mustParseTemplates())
	router.MaxMultipartMemory = int64(h.maxUploadBytes())

	router.Use(h.requestLogger, gin.CustomRecovery(h.recoverPanic))

	router.GET("/health", h.health)
	router.Static("/static", filepath.Clean(h.opts.StaticDir))

	pages := router.Group("/", h.loadFlashes, h.identity, h.limitBody, h.csrfProtect())
	{
		h.registerPageRoutes(pages)
		h.registerAuthRoutes(pages)
		h.registerAccountRoutes(pages)
		h.registerPostRoutes(pages)
	}

	router.NoRoute(h.loadFlashes, h.identity, h.notFound)

	return router
}

func (h *Handler) registerPageRoutes(r *gin.RouterGroup) {
	r.GET("/", h.home)
	r.GET("/home", h.home)
	r.GET("/about", h.about)
}

func (h *Handler) registerAuthRoutes(r *gin.RouterGroup) {
	guest := r.Group("/", h.redirectIfAuthenticated)
	{
		guest.GET("/register", h.registerForm)
		guest.POST("/register", h.register)
		guest.GET("/login", h.loginForm)
		guest.POST("/login", h.login)
	}
	r.GET("/logout", h.logout)
}

func (h *Handler) registerAccountRoutes(r *gin.RouterGroup) {
	account := r.Group("/account", h.requireAuth)
	{
		account.GET("", h.accountForm)
		account.POST("", h.updateAccount)
	}
}

func (h *Handler) registerPostRoutes(r *gin.RouterGroup) {
	r.GET("/post/:id", h.showPost)

	posts := r.Group("/post", h.requireAuth)
	{
		posts.GET("/new", h.newPostForm)
		posts.POST("/new", h.createPost)
		posts.GET("/:id/update", h.editPostForm)
		posts.POST("/:id/update", h.updatePost)
		posts.GET("/:id/delete", h.deletePost)
		posts.POST("/:id/delete", h.deletePost)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *Handler) maxUploadBytes() int {
	mb := h.opts.MaxUploadMB
	if mb <= 0 {
		mb = 4
	}
	return mb << 20
}

// maxBodyBytes leaves room for the other form fields next to a picture of
// maxUploadBytes.
func (h *Handler) maxBodyBytes() int64 {
	return int64(h.maxUploadBytes()) + 1<<20
}
