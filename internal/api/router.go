package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the middleware and routes for h.
func NewRouter(h *Handler, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(log), Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{RequestIDHeader},
	}))

	r.POST("/process", h.Process)
	r.GET("/healthz", h.Health)

	r.GET("/", h.StaticFile("index.html", "text/html; charset=utf-8"))
	r.GET("/manifest.json", h.StaticFile("manifest.json", "application/json"))
	r.GET("/style.css", h.StaticFile("style.css", "text/css; charset=utf-8"))
	r.GET("/script.js", h.StaticFile("script.js", "application/javascript"))
	r.GET("/service-worker.js", h.StaticFile("service-worker.js", "application/javascript"))
	r.Static("/static", h.StaticDir)

	return r
}
