package server

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/hyp3rd/ewrap"
	"go.uber.org/zap"

	"github.com/ironsheep/target-tools-mcp/internal/config"
	"github.com/ironsheep/target-tools-mcp/internal/imaging"
	"github.com/ironsheep/target-tools-mcp/internal/logging"
	"github.com/ironsheep/target-tools-mcp/internal/metrics"
	"github.com/ironsheep/target-tools-mcp/internal/workflow"
)

// Name and Version are reported during the initialize handshake.
const (
	Name    = "target-tools-mcp"
	Version = "0.1.0"
)

const protocolVersion = "2024-11-05"

// Server handles MCP protocol communication
type Server struct {
	cfg     *config.Config
	cache   *imaging.ImageCache
	runner  *workflow.Runner
	logger  *zap.Logger
	metrics *metrics.Manager
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server from cfg. A nil cfg means defaults; nil logger and
// metrics disable those concerns.
func New(cfg *config.Config, logger *zap.Logger, m *metrics.Manager) (*Server, error) {
	if cfg == nil {
		cfg = config.New()
	}
	toInches, err := cfg.Converter()
	if err != nil {
		return nil, ewrap.Wrap(err, "invalid unit configuration")
	}
	logger = logging.OrNop(logger)

	return &Server{
		cfg:   cfg,
		cache: imaging.NewImageCache(),
		runner: workflow.New(
			workflow.WithConverter(toInches),
			workflow.WithDistance(cfg.DistanceYards),
			workflow.WithStyle(cfg.Style()),
			workflow.WithDetection(cfg.DetectionOptions()),
			workflow.WithLogger(logger),
			workflow.WithMetrics(m),
		),
		logger:  logger,
		metrics: m,
	}, nil
}

// Run reads requests from in, one per line, and writes responses to out
// until in is exhausted or ctx is cancelled. Cancellation returns at once,
// even while a read is pending.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	defer s.cache.Clear()

	lines, done := s.readLines(ctx, in)
	encoder := json.NewEncoder(out)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-done
			}
			s.serveLine(ctx, encoder, line)
		}
	}
}

// readLines scans in on its own goroutine. The error channel receives
// exactly one value before lines is closed. A goroutine blocked in a read
// after cancellation ends when in is closed.
func (s *Server) readLines(ctx context.Context, in io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	done := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		// Shot lists can be long
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 4*1024*1024)

		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				done <- ctx.Err()
				return
			}
		}
		if err := scanner.Err(); err != nil {
			done <- ewrap.Wrap(err, "scanner error")
			return
		}
		done <- nil
	}()

	return lines, done
}

func (s *Server) serveLine(ctx context.Context, encoder *json.Encoder, line []byte) {
	if len(line) == 0 {
		return
	}

	var req MCPRequest
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("failed to parse request", zap.Error(err))
		return
	}

	resp := s.handleRequest(ctx, &req)
	if resp != nil {
		if err := encoder.Encode(resp); err != nil {
			s.logger.Error("failed to encode response", zap.Error(err))
		}
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    Name,
				"version": Version,
			},
		},
	}
}
