package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lovemartco/hp-automation/internal/interfaces/http/handler"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	registrars []RouteRegistrar
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine) *Router {
	return &Router{
		engine:     engine,
		registrars: make([]RouteRegistrar, 0),
	}
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine. Webhook and liveness routes
// live at the root: Shopify delivery URLs and uptime monitors are configured
// without an API prefix.
func (r *Router) Setup() {
	root := r.engine.Group("/")

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(root)
	}

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// SystemRoutes registers the liveness endpoints.
type SystemRoutes struct {
	handler *handler.SystemHandler
}

// NewSystemRoutes creates a new SystemRoutes registrar.
func NewSystemRoutes(h *handler.SystemHandler) *SystemRoutes {
	return &SystemRoutes{handler: h}
}

// RegisterRoutes implements RouteRegistrar.
func (s *SystemRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", s.handler.Root)
	rg.GET("/healthz", s.handler.Health)
}

// WebhookRoutes registers the Shopify webhook endpoints.
type WebhookRoutes struct {
	handler *handler.WebhookHandler
}

// NewWebhookRoutes creates a new WebhookRoutes registrar.
func NewWebhookRoutes(h *handler.WebhookHandler) *WebhookRoutes {
	return &WebhookRoutes{handler: h}
}

// RegisterRoutes implements RouteRegistrar.
func (w *WebhookRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/shopify/orders-paid", w.handler.HandleOrdersPaid)
}
