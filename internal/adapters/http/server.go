package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stateline-dev/stateline/internal/logging"
	"github.com/stateline-dev/stateline/pkg/domain"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Service defines the interface for the Stateline workflow core.
type Service interface {
	CreateDefinition(ctx context.Context, input domain.DefinitionInput) (*domain.Definition, error)
	GetDefinition(ctx context.Context, id string) (*domain.Definition, error)
	ListDefinitions(ctx context.Context) ([]*domain.Definition, error)
	CreateInstance(ctx context.Context, definitionID string) (*domain.Instance, error)
	GetInstance(ctx context.Context, id string) (*domain.Instance, error)
	ListInstances(ctx context.Context) ([]*domain.Instance, error)
	ExecuteAction(ctx context.Context, instanceID, actionID string) (*domain.Instance, error)
}

// Server exposes the workflow service as a JSON API.
type Server struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler for the service.
func NewHandler(service Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{service: service, logger: logger}

	r := chi.NewRouter()

	r.Route("/definitions", func(r chi.Router) {
		r.Post("/", s.createDefinition)
		r.Get("/", s.listDefinitions)
		r.Get("/{id}", s.getDefinition)
	})
	r.Route("/instances", func(r chi.Router) {
		r.Post("/", s.createInstance)
		r.Get("/", s.listInstances)
		r.Get("/{id}", s.getInstance)
		r.Post("/{id}/actions/{actionID}", s.executeAction)
	})

	// API docs
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	return r
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Stateline API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// createInstanceRequest is the body of POST /instances.
type createInstanceRequest struct {
	DefinitionID string `json:"definition_id"`
}

// errorResponse is the wire shape of every rejected request.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) createDefinition(w http.ResponseWriter, r *http.Request) {
	var input domain.DefinitionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, r, domain.Validationf("invalid request body: %v", err))
		return
	}

	def, err := s.service.CreateDefinition(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, def)
}

func (s *Server) listDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := s.service.ListDefinitions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, defs)
}

func (s *Server) getDefinition(w http.ResponseWriter, r *http.Request) {
	def, err := s.service.GetDefinition(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

func (s *Server) createInstance(w http.ResponseWriter, r *http.Request) {
	var req createInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, domain.Validationf("invalid request body: %v", err))
		return
	}

	inst, err := s.service.CreateInstance(r.Context(), req.DefinitionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, inst)
}

func (s *Server) listInstances(w http.ResponseWriter, r *http.Request) {
	all, err := s.service.ListInstances(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, all)
}

func (s *Server) getInstance(w http.ResponseWriter, r *http.Request) {
	inst, err := s.service.GetInstance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, inst)
}

func (s *Server) executeAction(w http.ResponseWriter, r *http.Request) {
	inst, err := s.service.ExecuteAction(r.Context(),
		chi.URLParam(r, "id"),
		chi.URLParam(r, "actionID"),
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, inst)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

// writeError maps the core error kinds onto HTTP statuses: not-found
// sentinels to 404, client rejections to 400, consistency faults and
// everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	kind := "internal"

	switch {
	case errors.Is(err, domain.ErrDefinitionNotFound), errors.Is(err, domain.ErrInstanceNotFound):
		status = http.StatusNotFound
		kind = "not_found"
	case domain.IsValidation(err):
		status = http.StatusBadRequest
		kind = "validation"
	case domain.IsConsistency(err):
		s.logger.Error("consistency fault", "path", r.URL.Path, "err", err)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}

	s.writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}
