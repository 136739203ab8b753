package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var unitEnum = []string{"px", "in", "mm", "cm", "pt", "pc", "ft"}

var regionEnum = []string{"full", "top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the target image file",
	}
}

func distanceProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Distance to the target in yards. Defaults to the server setting (100)",
	}
}

func unitProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        unitEnum,
		"description": "Unit of the coordinates. Defaults to the server setting (px)",
	}
}

func dpiProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Resolution used to turn pixels into inches. Defaults to the server setting (96)",
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        regionEnum,
		"description": "Only look for holes inside this named part of the image. Default full",
	}
}

func shotsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Shots as circles: {id, x|cx, y|cy, r}. Values may be numbers or numeric strings; malformed entries are skipped and reported",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id":   map[string]interface{}{"type": "string"},
				"kind": map[string]interface{}{"type": "string", "description": "Shape kind; only circle is accepted when set"},
				"x":    map[string]interface{}{"type": []string{"number", "string"}},
				"y":    map[string]interface{}{"type": []string{"number", "string"}},
				"cx":   map[string]interface{}{"type": []string{"number", "string"}},
				"cy":   map[string]interface{}{"type": []string{"number", "string"}},
				"r":    map[string]interface{}{"type": []string{"number", "string"}},
			},
		},
	}
}

func detectionProperties() map[string]interface{} {
	return map[string]interface{}{
		"threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Luminance (0-255) below which a pixel belongs to a hole. Default 96",
		},
		"blur_radius": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian blur radius applied before thresholding. Default 1.0",
		},
		"min_radius": map[string]interface{}{
			"type":        "number",
			"description": "Smallest hole radius in pixels. Default 2",
		},
		"max_radius": map[string]interface{}{
			"type":        "number",
			"description": "Largest hole radius in pixels. Default 60",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	detect := detectionProperties()
	detect["path"] = pathProperty()
	detect["region"] = regionProperty()

	annotateProps := detectionProperties()
	annotateProps["path"] = pathProperty()
	annotateProps["region"] = regionProperty()
	annotateProps["shots"] = shotsProperty()
	annotateProps["dpi"] = dpiProperty()
	annotateProps["shots"].(map[string]interface{})["description"] = "Shots in image pixels: {id, x|cx, y|cy, r}. Malformed entries are skipped and reported. When omitted, holes are detected"
	annotateProps["distance_yards"] = distanceProperty()
	annotateProps["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Write the annotated image here (format from the extension). When omitted the image is returned as base64 PNG",
	}
	annotateProps["color"] = map[string]interface{}{
		"type":        "string",
		"description": "Annotation colour as #RRGGBB or #RRGGBBAA. Default #ff0000",
	}

	return []Tool{
		{
			Name:        "target_load",
			Description: "Load a target image and return its size in pixels and inches. Caches the image for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"dpi":  dpiProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "target_detect_holes",
			Description: "Find bullet holes in a target image. Returns each hole's center, radius and confidence, strongest first.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detect,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "target_analyze_group",
			Description: "Compute shot group statistics (average precision circle, group size, horizontal and vertical spread, extreme spread, MOA) for three or more shots.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"shots":          shotsProperty(),
					"unit":           unitProperty(),
					"dpi":            dpiProperty(),
					"distance_yards": distanceProperty(),
				},
				"required": []string{"shots"},
			},
		},
		{
			Name:        "target_annotate",
			Description: "Draw the average precision circle, center mark and summary text onto a target image. Uses the given shots (in pixels), or detects holes when none are given. Also returns the drawing commands.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": annotateProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "target_measure",
			Description: "Measure the distance between two points, in native units, inches and MOA.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x1":             map[string]interface{}{"type": "number", "description": "Start X"},
					"y1":             map[string]interface{}{"type": "number", "description": "Start Y"},
					"x2":             map[string]interface{}{"type": "number", "description": "End X"},
					"y2":             map[string]interface{}{"type": "number", "description": "End Y"},
					"unit":           unitProperty(),
					"dpi":            dpiProperty(),
					"distance_yards": distanceProperty(),
				},
				"required": []string{"x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "target_moa",
			Description: "Convert a size in inches to minutes of angle at a distance.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"inches": map[string]interface{}{
						"type":        "number",
						"description": "Size on the target in inches",
					},
					"distance_yards": distanceProperty(),
				},
				"required": []string{"inches"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
