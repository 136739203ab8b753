package server

import (
	"context"
	"errors"
	"image"
	"math"

	"github.com/goccy/go-json"
	"github.com/hyp3rd/ewrap"
	"go.uber.org/zap"

	"github.com/ironsheep/target-tools-mcp/internal/annotate"
	"github.com/ironsheep/target-tools-mcp/internal/detection"
	"github.com/ironsheep/target-tools-mcp/internal/imaging"
	"github.com/ironsheep/target-tools-mcp/internal/precision"
	"github.com/ironsheep/target-tools-mcp/internal/shotgroup"
	"github.com/ironsheep/target-tools-mcp/internal/units"
	"github.com/ironsheep/target-tools-mcp/internal/workflow"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "target_load", "target_annotate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// ErrUnknownTool is returned for a tools/call naming no known tool.
var ErrUnknownTool = errors.New("unknown tool")

type toolHandler func(s *Server, ctx context.Context, args json.RawMessage) (interface{}, error)

var toolHandlers = map[string]toolHandler{
	"target_load":          (*Server).handleTargetLoad,
	"target_detect_holes":  (*Server).handleTargetDetectHoles,
	"target_analyze_group": (*Server).handleTargetAnalyzeGroup,
	"target_annotate":      (*Server).handleTargetAnnotate,
	"target_measure":       (*Server).handleTargetMeasure,
	"target_moa":           (*Server).handleTargetMOA,
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// A group with too few shots carries "select more than 2 shots" as the
// message so clients can show it as is.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)

	label := params.Name
	if _, ok := toolHandlers[label]; !ok {
		label = "unknown"
	}
	s.metrics.RecordToolCall(label, err)

	if err != nil {
		s.logger.Info("tool failed", zap.String("tool", params.Name), zap.Error(err))
		message := "Tool execution failed"
		if errors.Is(err, precision.ErrTooFewShots) {
			message = precision.ErrTooFewShots.Error()
		}
		return s.errorResponse(req.ID, -32000, message, err.Error())
	}
	s.logger.Debug("tool done", zap.String("tool", params.Name))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies server defaults for omitted parameters
//  3. Loads images from cache as needed
//  4. Calls the detection, analysis or measurement code
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	h, ok := toolHandlers[name]
	if !ok {
		return nil, ewrap.Wrap(ErrUnknownTool, name)
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return h(s, ctx, args)
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared argument handling ===

// converter builds the inches conversion, falling back to server settings
// for an empty unit or zero dpi.
func (s *Server) converter(unit string, dpi float64) (precision.Converter, error) {
	if unit == "" {
		unit = s.cfg.Unit
	}
	if dpi == 0 {
		dpi = s.cfg.DPI
	}
	u, err := units.ParseUnit(unit)
	if err != nil {
		return nil, err
	}
	return units.ToInches(u, dpi)
}

func (s *Server) distance(yards float64) float64 {
	if yards == 0 {
		return s.cfg.DistanceYards
	}
	return yards
}

type detectArgs struct {
	Path       string  `json:"path"`
	Region     string  `json:"region"`
	Threshold  int     `json:"threshold"`
	BlurRadius float64 `json:"blur_radius"`
	MinRadius  float64 `json:"min_radius"`
	MaxRadius  float64 `json:"max_radius"`
}

func (s *Server) detectionOptions(a detectArgs) (detection.Options, error) {
	opts := s.cfg.DetectionOptions()
	if a.Threshold != 0 {
		if a.Threshold < 0 || a.Threshold > 255 {
			return opts, ewrap.Newf("threshold %d outside 0-255", a.Threshold)
		}
		opts.Threshold = uint8(a.Threshold)
	}
	if a.BlurRadius != 0 {
		opts.BlurRadius = a.BlurRadius
	}
	if a.MinRadius != 0 {
		opts.MinRadius = a.MinRadius
	}
	if a.MaxRadius != 0 {
		opts.MaxRadius = a.MaxRadius
	}
	return opts, opts.Validate()
}

// loadRegion loads path and restricts it to the named region. Coordinates in
// the result are those of the full image.
func (s *Server) loadRegion(path, region string) (image.Image, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	if region == "" || region == "full" {
		return img, nil
	}
	r, err := imaging.NamedRegion(img.Bounds(), region)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, r)
}

// === Tool handlers ===

type targetLoadArgs struct {
	Path string  `json:"path"`
	DPI  float64 `json:"dpi"`
}

func (s *Server) handleTargetLoad(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a targetLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.DPI == 0 {
		a.DPI = s.cfg.DPI
	}
	return imaging.LoadTargetInfo(s.cache, a.Path, a.DPI)
}

func (s *Server) handleTargetDetectHoles(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.detectionOptions(a)
	if err != nil {
		return nil, err
	}
	img, err := s.loadRegion(a.Path, a.Region)
	if err != nil {
		return nil, err
	}

	result, err := detection.DetectHoles(img, opts)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordHoles(result.Count)
	return result, nil
}

type targetAnalyzeGroupArgs struct {
	Shots         []shotgroup.Record `json:"shots"`
	Unit          string             `json:"unit"`
	DPI           float64            `json:"dpi"`
	DistanceYards float64            `json:"distance_yards"`
}

// AnalyzeGroupResult is the target_analyze_group response: the report plus
// the drawing commands a host can replay onto its own document.
type AnalyzeGroupResult struct {
	*workflow.Report
	Commands []annotate.Command `json:"commands"`
}

func (s *Server) handleTargetAnalyzeGroup(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a targetAnalyzeGroupArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	toInches, err := s.converter(a.Unit, a.DPI)
	if err != nil {
		return nil, err
	}

	runner := s.runner.With(
		workflow.WithConverter(toInches),
		workflow.WithDistance(s.distance(a.DistanceYards)),
	)
	rec := &annotate.Recorder{}
	report, err := runner.Run(ctx, a.Shots, rec)
	if err != nil {
		return nil, err
	}
	return &AnalyzeGroupResult{Report: report, Commands: rec.Commands}, nil
}

// targetAnnotateArgs has no unit: shots drawn onto the image are in its
// pixels, and dpi turns them into inches.
type targetAnnotateArgs struct {
	detectArgs
	Shots         []shotgroup.Record `json:"shots"`
	DPI           float64            `json:"dpi"`
	DistanceYards float64            `json:"distance_yards"`
	OutputPath    string             `json:"output_path"`
	Color         string             `json:"color"`
}

// AnnotateResult is the target_annotate response. Exactly one of OutputPath
// and Image is set.
type AnnotateResult struct {
	*workflow.Report
	Commands   []annotate.Command     `json:"commands"`
	OutputPath string                 `json:"output_path,omitempty"`
	Image      *annotate.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handleTargetAnnotate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a targetAnnotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	toInches, err := s.converter(string(units.Pixel), a.DPI)
	if err != nil {
		return nil, err
	}
	style := s.runner.Style()
	if a.Color != "" {
		style.Color = a.Color
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	canvas, err := annotate.NewCanvas(img, style)
	if err != nil {
		return nil, err
	}

	runner := s.runner.With(
		workflow.WithConverter(toInches),
		workflow.WithDistance(s.distance(a.DistanceYards)),
		workflow.WithStyle(style),
	)

	rec := &annotate.Recorder{}
	sink := annotate.Fanout{canvas, rec}

	var report *workflow.Report
	if len(a.Shots) > 0 {
		report, err = runner.Run(ctx, a.Shots, sink)
	} else {
		opts, optErr := s.detectionOptions(a.detectArgs)
		if optErr != nil {
			return nil, optErr
		}
		region, regionErr := s.loadRegion(a.Path, a.Region)
		if regionErr != nil {
			return nil, regionErr
		}
		report, err = runner.With(workflow.WithDetection(opts)).RunImage(ctx, region, sink)
	}
	if err != nil {
		return nil, err
	}

	if a.OutputPath != "" {
		if err := canvas.Save(a.OutputPath); err != nil {
			return nil, err
		}
		// A later load of the output must see the new file.
		s.cache.Evict(a.OutputPath)
		return &AnnotateResult{Report: report, Commands: rec.Commands, OutputPath: a.OutputPath}, nil
	}

	encoded, err := canvas.EncodePNG()
	if err != nil {
		return nil, err
	}
	return &AnnotateResult{Report: report, Commands: rec.Commands, Image: encoded}, nil
}

type targetMeasureArgs struct {
	X1            float64 `json:"x1"`
	Y1            float64 `json:"y1"`
	X2            float64 `json:"x2"`
	Y2            float64 `json:"y2"`
	Unit          string  `json:"unit"`
	DPI           float64 `json:"dpi"`
	DistanceYards float64 `json:"distance_yards"`
}

func (s *Server) handleTargetMeasure(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a targetMeasureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	toInches, err := s.converter(a.Unit, a.DPI)
	if err != nil {
		return nil, err
	}
	return imaging.MeasureDistance(
		shotgroup.Point{X: a.X1, Y: a.Y1},
		shotgroup.Point{X: a.X2, Y: a.Y2},
		toInches, s.distance(a.DistanceYards))
}

type targetMOAArgs struct {
	Inches        float64 `json:"inches"`
	DistanceYards float64 `json:"distance_yards"`
}

// MOAResult is the target_moa response.
type MOAResult struct {
	Inches        float64 `json:"inches"`
	DistanceYards float64 `json:"distance_yards"`
	MOA           float64 `json:"moa"`
}

func (s *Server) handleTargetMOA(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a targetMOAArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	yards := s.distance(a.DistanceYards)
	if err := precision.CheckDistance(yards); err != nil {
		return nil, err
	}
	if a.Inches < 0 || math.IsInf(a.Inches, 0) || math.IsNaN(a.Inches) {
		return nil, ewrap.Newf("inches must be a finite non-negative number, got %v", a.Inches)
	}
	return &MOAResult{
		Inches:        a.Inches,
		DistanceYards: yards,
		MOA:           math.Round(precision.MOA(a.Inches, yards)*100) / 100,
	}, nil
}
