package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/tagscan/internal/imaging"
	"github.com/ironsheep/tagscan/internal/pipeline"
	"github.com/ironsheep/tagscan/internal/recognize"
	"github.com/ironsheep/tagscan/internal/sheet"
	"github.com/ironsheep/tagscan/internal/split"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "scan_split", "sheet_inspect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).WithField("tool", params.Name).Debug("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Scans
	case "scan_info":
		return s.handleScanInfo(args)
	case "scan_split":
		return s.handleScanSplit(args)
	case "scan_process":
		return s.handleScanProcess(ctx, args)

	// Sheets
	case "sheet_inspect":
		return s.handleSheetInspect(args)
	case "sheet_render":
		return s.handleSheetRender(args)
	case "sheet_box":
		return s.handleSheetBox(args)

	// Candidates
	case "text_match":
		return s.handleTextMatch(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Scan Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleScanInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type scanSplitArgs struct {
	Path     string   `json:"path"`
	Rotation *float64 `json:"rotation,omitempty"`
	Region   *int     `json:"region,omitempty"`
	Scale    float64  `json:"scale"`
}

// RegionInfo describes one region of a split scan.
type RegionInfo struct {
	Name   string `json:"name"`
	Index  int    `json:"index"`
	Empty  bool   `json:"empty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// SplitResult is returned by scan_split.
type SplitResult struct {
	Regions []RegionInfo          `json:"regions"`
	Sheet   *imaging.EncodedImage `json:"sheet,omitempty"`
}

func (s *Server) handleScanSplit(args json.RawMessage) (interface{}, error) {
	var a scanSplitArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 0.25
	}
	rotation := s.pipeline.Rotation
	if a.Rotation != nil {
		rotation = *a.Rotation
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	regions, err := s.pipeline.Splitter.SplitScan(a.Path, imaging.RotateBound(img, rotation))
	if err != nil {
		return nil, err
	}

	res := &SplitResult{Regions: make([]RegionInfo, 0, len(regions))}
	for _, r := range regions {
		res.Regions = append(res.Regions, regionInfo(r))
	}
	if a.Region != nil {
		idx := *a.Region
		if idx < 0 || idx >= len(regions) {
			return nil, fmt.Errorf("region %d out of range [0,%d)", idx, len(regions))
		}
		res.Sheet, err = imaging.Encode(regions[idx].Processed, a.Scale)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func regionInfo(r *split.SheetRegion) RegionInfo {
	size := r.Processed.Bounds().Size()
	return RegionInfo{Name: r.Name, Index: r.Index, Empty: r.IsEmpty, Width: size.X, Height: size.Y}
}

type scanProcessArgs struct {
	Paths []string `json:"paths"`
}

// ProcessResult is returned by scan_process.
type ProcessResult struct {
	Stored          []string `json:"stored"`
	PartiallyFilled []string `json:"partially_filled"`
	Unreadable      []string `json:"unreadable"`
}

func (s *Server) handleScanProcess(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanProcessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, fmt.Errorf("no scans given")
	}
	for _, p := range a.Paths {
		if !pipeline.IsScan(p) {
			return nil, fmt.Errorf("%s: not a supported scan file", p)
		}
		// The pipeline decodes the files itself.
		s.cache.Evict(p)
	}

	res, err := s.pipeline.Run(ctx, a.Paths)
	if err != nil {
		return nil, err
	}
	return &ProcessResult{
		Stored:          nonNil(res.Stored),
		PartiallyFilled: nonNil(res.PartiallyFilled),
		Unreadable:      nonNil(res.Unreadable),
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// === Sheet Handlers ===

// BoxInfo is one box of an inspected sheet.
type BoxInfo struct {
	Name       string  `json:"name"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// InspectResult is returned by sheet_inspect.
type InspectResult struct {
	ProductID       string    `json:"product_id"`
	Name            string    `json:"name"`
	SheetNumber     string    `json:"sheet_number"`
	Tags            []string  `json:"tags"`
	FullyConfident  bool      `json:"fully_confident"`
	Full            bool      `json:"full"`
	NeedsReview     []BoxInfo `json:"needs_review"`
	ReviewThreshold float64   `json:"review_threshold"`
}

func (s *Server) handleSheetInspect(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sh, err := sheet.Load(a.Path, s.pipeline.Layout)
	if err != nil {
		return nil, err
	}

	res := &InspectResult{
		ProductID:       sh.ProductID(),
		Name:            sh.Name(),
		SheetNumber:     sh.SheetNumber(),
		Tags:            []string{},
		FullyConfident:  sh.IsFullyConfident(),
		Full:            sh.IsFull(),
		NeedsReview:     []BoxInfo{},
		ReviewThreshold: s.pipeline.Recognizer.ConfidenceThreshold,
	}
	for _, b := range sh.DataBoxes() {
		if b.Text != "" {
			res.Tags = append(res.Tags, b.Text)
		}
	}
	for _, b := range sh.RecognizableBoxes() {
		if b.Confidence < res.ReviewThreshold {
			res.NeedsReview = append(res.NeedsReview, BoxInfo{Name: b.Name, Text: b.Text, Confidence: b.Confidence})
		}
	}
	return res, nil
}

type sheetRenderArgs struct {
	Path  string  `json:"path"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleSheetRender(args json.RawMessage) (interface{}, error) {
	var a sheetRenderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 0.25
	}
	sh, err := sheet.Load(a.Path, s.pipeline.Layout)
	if err != nil {
		return nil, err
	}
	opts := sheet.DefaultRenderOptions()
	opts.ConfidenceThreshold = s.pipeline.Recognizer.ConfidenceThreshold
	return imaging.Encode(sh.Render(opts), a.Scale)
}

type sheetBoxArgs struct {
	Path   string  `json:"path"`
	Box    string  `json:"box"`
	Margin int     `json:"margin"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleSheetBox(args json.RawMessage) (interface{}, error) {
	var a sheetBoxArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	l := s.pipeline.Layout
	b := sheet.New(l).Box(a.Box)
	if b == nil {
		return nil, fmt.Errorf("unknown box: %s", a.Box)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	// Normalized scans are stored downscaled; map the box onto the image.
	size := img.Bounds().Size()
	sx := float64(size.X) / float64(l.XRes)
	sy := float64(size.Y) / float64(l.YRes)
	r := b.Rect.Inset(-a.Margin)
	r = image.Rect(
		int(float64(r.Min.X)*sx), int(float64(r.Min.Y)*sy),
		int(float64(r.Max.X)*sx), int(float64(r.Max.Y)*sy),
	).Add(img.Bounds().Min)

	crop, err := imaging.Crop(img, r)
	if err != nil {
		return nil, err
	}
	return imaging.Encode(crop, a.Scale)
}

// === Candidate Handlers ===

type textMatchArgs struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// MatchResult is returned by text_match.
type MatchResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Candidates int     `json:"candidates"`
}

func (s *Server) handleTextMatch(args json.RawMessage) (interface{}, error) {
	var a textMatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	kind, err := parseKind(a.Kind)
	if err != nil {
		return nil, err
	}
	cands, err := s.pipeline.Candidates.Candidates()
	if err != nil {
		return nil, err
	}
	set := cands.For(kind)
	m := recognize.FindClosest(a.Text, set, s.pipeline.Recognizer.MaxEditDistance)
	return &MatchResult{Text: m.Text, Confidence: m.Confidence, Candidates: len(set)}, nil
}

func parseKind(name string) (sheet.Kind, error) {
	for k := sheet.KindName; k <= sheet.KindTag; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown box kind: %s", name)
}
