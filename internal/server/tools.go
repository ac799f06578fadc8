package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func scaleProperty(def float64) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor of the returned image",
		"default":     def,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Scans
		{
			Name:        "scan_info",
			Description: "Load a scan and return its dimensions and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the scan"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "scan_split",
			Description: "Split a scan into its sheet regions and report which regions hold a sheet. With region set, the normalized sheet of that region is returned as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the scan"),
					"rotation": map[string]interface{}{
						"type":        "number",
						"description": "Clockwise rotation in degrees applied before splitting. Defaults to the configured rotation",
					},
					"region": map[string]interface{}{
						"type":        "integer",
						"description": "Optional region index whose normalized sheet is returned",
					},
					"scale": scaleProperty(0.25),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "scan_process",
			Description: "Recognize the sheets on the given scans and store them in the output directory. Returns the stored filenames and the scans with empty regions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the scans to process",
					},
				},
				"required": []string{"paths"},
			},
		},

		// Sheets
		{
			Name:        "sheet_inspect",
			Description: "Read a stored sheet and list its product, sheet number, tags and the boxes that need review.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the sheet .csv file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "sheet_render",
			Description: "Render a stored sheet as base64-encoded PNG with unconfident boxes tinted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty("Absolute path to the sheet .csv file"),
					"scale": scaleProperty(0.25),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "sheet_box",
			Description: "Crop one box out of a normalized scan image, for example to check an unconfident tag.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to a normalized scan image"),
					"box": map[string]interface{}{
						"type":        "string",
						"description": "Box name such as nameBox or dataBox7(1,2)",
					},
					"margin": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of context around the box (default 0)",
						"default":     0,
					},
					"scale": scaleProperty(1.0),
				},
				"required": []string{"path", "box"},
			},
		},

		// Candidates
		{
			Name:        "text_match",
			Description: "Resolve a text against the candidates of a box kind the way recognition does, returning the match and its confidence.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Text to resolve",
					},
					"kind": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"name", "unit", "price", "sheetNumber", "tag"},
						"description": "Box kind whose candidates are used",
					},
				},
				"required": []string{"text", "kind"},
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
