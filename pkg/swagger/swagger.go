package swagger

import (
	"crypto/sha256"
	"encoding/hex"
	"html/template"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"flowtrace/pkg/config"
	"flowtrace/pkg/logger"
)

// Config конфигурация Swagger UI
type Config struct {
	Title        string
	BasePath     string
	DocExpansion string
}

// DefaultConfig конфигурация по умолчанию
func DefaultConfig() Config {
	return Config{
		Title:        "flowtrace API",
		BasePath:     "/swagger",
		DocExpansion: "list",
	}
}

// FromConfig берёт заголовок из секции swagger
func FromConfig(cfg config.SwaggerConfig) Config {
	c := DefaultConfig()
	if cfg.Title != "" {
		c.Title = cfg.Title
	}
	return c
}

var uiTemplate = template.Must(template.New("swagger-ui").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: "{{.SpecURL}}",
                dom_id: '#swagger-ui',
                deepLinking: true,
                docExpansion: "{{.DocExpansion}}",
                validatorUrl: null
            });
        };
    </script>
</body>
</html>`))

// Handler отдаёт UI и OpenAPI документ
type Handler struct {
	cfg  Config
	spec []byte
	etag string
}

// NewHandler создаёт handler. ETag считается по содержимому документа.
func NewHandler(cfg Config, spec []byte) *Handler {
	if cfg.BasePath == "" {
		cfg.BasePath = DefaultConfig().BasePath
	}
	sum := sha256.Sum256(spec)
	return &Handler{
		cfg:  cfg,
		spec: spec,
		etag: `"` + hex.EncodeToString(sum[:8]) + `"`,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, h.cfg.BasePath), "/") {
	case "", "index.html":
		h.serveUI(w)
	case "openapi.json":
		h.serveSpec(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) serveUI(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	data := struct {
		Title        string
		SpecURL      string
		DocExpansion string
	}{h.cfg.Title, h.cfg.BasePath + "/openapi.json", h.cfg.DocExpansion}

	if err := uiTemplate.Execute(w, data); err != nil {
		logger.Log.Error("failed to render swagger ui", "error", err)
	}
}

func (h *Handler) serveSpec(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("If-None-Match") == h.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("ETag", h.etag)
	if _, err := w.Write(h.spec); err != nil {
		logger.Log.Debug("failed to write openapi document", "error", err)
	}
}

// Register вешает UI на BasePath/*filepath, запрос без слэша роутер перенаправит сам
func (h *Handler) Register(router *httprouter.Router) {
	router.Handler(http.MethodGet, h.cfg.BasePath+"/*filepath", h)
}
