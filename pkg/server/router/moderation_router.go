package router

import (
	"errors"

	handlers "github.com/campushub/modgate/pkg/handlers/http"
	"github.com/campushub/modgate/pkg/server/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

const (
	VersionPath     = "/version"
	DocsPath        = "/docs/*"
	SwaggerSpecPath = "/swagger.json"
)

var (
	ErrInvalidHandlerTransport = errors.New("invalid handler transport")
)

type moderationRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
	swaggerFile         string
}

func NewModerationRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
	swaggerFile string,
) ServerRouter {
	return &moderationRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
		swaggerFile:         swaggerFile,
	}
}

func (r *moderationRouter) BuildRoutes(router *fiber.App) error {
	handlerTransport, ok := r.handlerTransport.GetTransport().(*handlers.HandlerTransportDTO)
	if !ok {
		return ErrInvalidHandlerTransport
	}

	if r.swaggerFile != "" {
		router.Static(SwaggerSpecPath, r.swaggerFile)
		router.Get(DocsPath, swagger.New(swagger.Config{
			URL: SwaggerSpecPath,
		}))
	}

	router.Get(VersionPath, handlerTransport.GetVersionHandler.Handle)

	api := router.Group("/api")
	if r.middlewareTransport != nil {
		if mws := r.middlewareTransport.GetMiddlewares(); len(mws) > 0 {
			api.Use(mws...)
		}
	}
	{
		api.Post("/v1/moderate", handlerTransport.ModerateHandler.Handle)
		api.Post("/moderate-content", handlerTransport.ModerateHandler.Handle)
	}
	return nil
}
