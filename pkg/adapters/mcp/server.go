// Package mcp exposes the workflow service as an MCP server so agent hosts
// can define workflows and drive instances as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	stateline "github.com/stateline-dev/stateline"
	"github.com/stateline-dev/stateline/pkg/domain"
)

// Service is the interface required by the MCP server; the root Service satisfies it.
type Service interface {
	CreateDefinition(ctx context.Context, input domain.DefinitionInput) (*domain.Definition, error)
	GetDefinition(ctx context.Context, id string) (*domain.Definition, error)
	ListDefinitions(ctx context.Context) ([]*domain.Definition, error)
	CreateInstance(ctx context.Context, definitionID string) (*domain.Instance, error)
	GetInstance(ctx context.Context, id string) (*domain.Instance, error)
	ListInstances(ctx context.Context) ([]*domain.Instance, error)
	ExecuteAction(ctx context.Context, instanceID, actionID string) (*domain.Instance, error)
}

// Server wraps the workflow service and exposes it as an MCP Server.
type Server struct {
	service   Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(service Service) *Server {
	s := &Server{
		service:   service,
		mcpServer: server.NewMCPServer("stateline-mcp", stateline.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// instanceArgs is the common argument shape for instance-scoped tools.
type instanceArgs struct {
	InstanceID string `mapstructure:"instance_id"`
	ActionID   string `mapstructure:"action_id"`
}

func (s *Server) registerTools() {
	// TOOL: create_definition
	createDefTool := mcp.NewTool("create_definition",
		mcp.WithDescription("Create a workflow definition from a JSON document with name, states and actions."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("JSON object: {name, states[], actions[], description?}")),
		mcp.WithOutputSchema[domain.Definition](),
	)
	s.mcpServer.AddTool(createDefTool, mcp.NewStructuredToolHandler(s.handleCreateDefinition))

	// TOOL: list_definitions
	s.mcpServer.AddTool(mcp.NewTool("list_definitions",
		mcp.WithDescription("List all workflow definitions."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		defs, err := s.service.ListDefinitions(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(defs)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: create_instance
	createInstTool := mcp.NewTool("create_instance",
		mcp.WithDescription("Create a new instance of a workflow definition, positioned at its initial state."),
		mcp.WithString("definition_id", mcp.Required(), mcp.Description("ID of the definition to instantiate")),
		mcp.WithOutputSchema[domain.Instance](),
	)
	s.mcpServer.AddTool(createInstTool, mcp.NewStructuredToolHandler(s.handleCreateInstance))

	// TOOL: get_instance
	getInstTool := mcp.NewTool("get_instance",
		mcp.WithDescription("Get an instance with its current state and transition history."),
		mcp.WithString("instance_id", mcp.Required(), mcp.Description("Instance ID")),
		mcp.WithOutputSchema[domain.Instance](),
	)
	s.mcpServer.AddTool(getInstTool, mcp.NewStructuredToolHandler(s.handleGetInstance))

	// TOOL: execute_action
	executeTool := mcp.NewTool("execute_action",
		mcp.WithDescription("Execute an action on an instance, transitioning it to the action's target state."),
		mcp.WithString("instance_id", mcp.Required(), mcp.Description("Instance ID")),
		mcp.WithString("action_id", mcp.Required(), mcp.Description("Action ID within the instance's definition")),
		mcp.WithOutputSchema[domain.Instance](),
	)
	s.mcpServer.AddTool(executeTool, mcp.NewStructuredToolHandler(s.handleExecuteAction))
}

// Handler methods for structured tools

func (s *Server) handleCreateDefinition(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Definition, error) {
	raw, _ := args["definition"].(string)

	var input domain.DefinitionInput
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return domain.Definition{}, fmt.Errorf("invalid definition document: %w", err)
	}

	def, err := s.service.CreateDefinition(ctx, input)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("create failed: %w", err)
	}
	return *def, nil
}

func (s *Server) handleCreateInstance(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Instance, error) {
	var req struct {
		DefinitionID string `mapstructure:"definition_id"`
	}
	if err := mapstructure.Decode(args, &req); err != nil {
		return domain.Instance{}, fmt.Errorf("invalid arguments: %w", err)
	}

	inst, err := s.service.CreateInstance(ctx, req.DefinitionID)
	if err != nil {
		return domain.Instance{}, fmt.Errorf("create failed: %w", err)
	}
	return *inst, nil
}

func (s *Server) handleGetInstance(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Instance, error) {
	var req instanceArgs
	if err := mapstructure.Decode(args, &req); err != nil {
		return domain.Instance{}, fmt.Errorf("invalid arguments: %w", err)
	}

	inst, err := s.service.GetInstance(ctx, req.InstanceID)
	if err != nil {
		return domain.Instance{}, fmt.Errorf("get failed: %w", err)
	}
	return *inst, nil
}

func (s *Server) handleExecuteAction(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Instance, error) {
	var req instanceArgs
	if err := mapstructure.Decode(args, &req); err != nil {
		return domain.Instance{}, fmt.Errorf("invalid arguments: %w", err)
	}

	inst, err := s.service.ExecuteAction(ctx, req.InstanceID, req.ActionID)
	if err != nil {
		return domain.Instance{}, fmt.Errorf("execute failed: %w", err)
	}
	return *inst, nil
}

func (s *Server) registerResources() {
	// EXPOSE: stateline://definitions
	s.mcpServer.AddResource(mcp.NewResource("stateline://definitions", "Workflow Definitions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		defs, err := s.service.ListDefinitions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list definitions: %w", err)
		}
		jsonBytes, _ := json.Marshal(defs)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "stateline://definitions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
