package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/tagscan/internal/sheet"
	"github.com/ironsheep/tagscan/internal/store"
)

// createScanFile writes a dark scanner bed with one blank sheet in its top
// left quadrant and returns its path.
func createScanFile(t *testing.T, l sheet.Layout) string {
	t.Helper()

	scan := image.NewNRGBA(image.Rect(0, 0, 1400, 1900))
	draw.Draw(scan, scan.Bounds(), image.NewUniform(color.NRGBA{40, 40, 40, 255}), image.Point{}, draw.Src)
	page := sheet.New(l).Render(sheet.RenderOptions{})
	draw.Draw(scan, page.Bounds().Add(image.Pt(40, 30)), page, image.Point{}, draw.Src)

	path := filepath.Join(t.TempDir(), "monday.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create scan: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, scan); err != nil {
		t.Fatalf("failed to encode scan: %v", err)
	}
	return path
}

// callTool runs a tools/call request and decodes the tool result into out.
func callTool(t *testing.T, s *Server, name string, args interface{}, out interface{}) *MCPError {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleToolsCall(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp.Error != nil {
		return resp.Error
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	if out != nil {
		if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
			t.Fatalf("failed to decode tool result: %v", err)
		}
	}
	return nil
}

// storeSheet writes a sheet into the server's output directory.
func storeSheet(t *testing.T, s *Server) string {
	t.Helper()
	sh := sheet.New(s.pipeline.Layout)
	for _, b := range sh.RecognizableBoxes() {
		b.Confidence = 1
	}
	sh.SetName("Apple Juice")
	sh.SetSheetNumber("2")
	sh.Box("dataBox0(0,0)").Text = "MAXI"
	sh.Box("dataBox1(0,1)").Text = "LISA"
	sh.Box("dataBox1(0,1)").Confidence = .4
	sh.Box(sheet.PriceBox).Confidence = .8

	path, err := s.pipeline.Sink.Store(sh, sh.Filename())
	if err != nil {
		t.Fatalf("failed to store sheet: %v", err)
	}
	return path
}

func TestHandleScanInfo(t *testing.T) {
	s := newTestServer(t)
	path := createScanFile(t, s.pipeline.Layout)

	var info struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := callTool(t, s, "scan_info", map[string]interface{}{"path": path}, &info); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.Width != 1400 || info.Height != 1900 {
		t.Errorf("got %dx%d, want 1400x1900", info.Width, info.Height)
	}
}

func TestHandleScanInfo_NonExistentFile(t *testing.T) {
	s := newTestServer(t)
	err := callTool(t, s, "scan_info", map[string]interface{}{"path": "/nonexistent/scan.png"}, nil)
	if err == nil {
		t.Fatal("expected an error for a missing scan")
	}
	if err.Code != -32000 {
		t.Errorf("Error.Code: got %d, want -32000", err.Code)
	}
}

func TestHandleScanSplit(t *testing.T) {
	s := newTestServer(t)
	path := createScanFile(t, s.pipeline.Layout)

	var res SplitResult
	if err := callTool(t, s, "scan_split", map[string]interface{}{"path": path, "region": 0, "scale": 0.5}, &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(res.Regions) != 4 {
		t.Fatalf("got %d regions, want 4", len(res.Regions))
	}
	if res.Regions[0].Empty {
		t.Error("region 0 holds a sheet")
	}
	for _, r := range res.Regions[1:] {
		if !r.Empty {
			t.Errorf("region %s should be empty", r.Name)
		}
	}

	l := s.pipeline.Layout
	if res.Sheet == nil {
		t.Fatal("expected the normalized sheet")
	}
	if res.Sheet.Width != l.XRes/2 || res.Sheet.Height != l.YRes/2 {
		t.Errorf("sheet image is %dx%d, want %dx%d", res.Sheet.Width, res.Sheet.Height, l.XRes/2, l.YRes/2)
	}
	if res.Sheet.ImageBase64 == "" {
		t.Error("sheet image is empty")
	}
}

func TestHandleScanSplit_RegionOutOfRange(t *testing.T) {
	s := newTestServer(t)
	path := createScanFile(t, s.pipeline.Layout)

	if err := callTool(t, s, "scan_split", map[string]interface{}{"path": path, "region": 4}, nil); err == nil {
		t.Fatal("expected an error for region 4")
	}
}

func TestHandleScanProcess(t *testing.T) {
	s := newTestServer(t)
	path := createScanFile(t, s.pipeline.Layout)

	var res ProcessResult
	if err := callTool(t, s, "scan_process", map[string]interface{}{"paths": []string{path}}, &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(res.Stored) != 1 || res.Stored[0] != "monday-png-sheet0_0.csv" {
		t.Errorf("Stored: got %v", res.Stored)
	}
	if len(res.PartiallyFilled) != 1 || res.PartiallyFilled[0] != path {
		t.Errorf("PartiallyFilled: got %v", res.PartiallyFilled)
	}
	if res.Unreadable == nil {
		t.Error("Unreadable should be an empty list, not null")
	}
	if !s.pipeline.Sink.Exists(store.NormalizedScanName(res.Stored[0])) {
		t.Error("normalized audit image was not written")
	}
}

func TestHandleScanProcess_InvalidArguments(t *testing.T) {
	s := newTestServer(t)
	if err := callTool(t, s, "scan_process", map[string]interface{}{"paths": []string{}}, nil); err == nil {
		t.Error("expected an error without scans")
	}
	if err := callTool(t, s, "scan_process", map[string]interface{}{"paths": []string{"/tmp/notes.txt"}}, nil); err == nil {
		t.Error("expected an error for a text file")
	}
}

func TestHandleSheetInspect(t *testing.T) {
	s := newTestServer(t)
	path := storeSheet(t, s)

	var res InspectResult
	if err := callTool(t, s, "sheet_inspect", map[string]interface{}{"path": path}, &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.ProductID != "apple-juice" || res.SheetNumber != "2" {
		t.Errorf("got %s #%s, want apple-juice #2", res.ProductID, res.SheetNumber)
	}
	if len(res.Tags) != 2 {
		t.Errorf("Tags: got %v, want [MAXI LISA]", res.Tags)
	}
	if res.FullyConfident {
		t.Error("sheet has unconfident boxes")
	}
	// Only the box below the review threshold is listed; the price at .8
	// is not certain but does not need review.
	if len(res.NeedsReview) != 1 || res.NeedsReview[0].Name != "dataBox1(0,1)" {
		t.Errorf("NeedsReview: got %+v", res.NeedsReview)
	}
}

func TestHandleSheetRender(t *testing.T) {
	s := newTestServer(t)
	path := storeSheet(t, s)

	var img struct {
		Width    int    `json:"width"`
		MimeType string `json:"mime_type"`
	}
	if err := callTool(t, s, "sheet_render", map[string]interface{}{"path": path, "scale": 0.5}, &img); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if img.Width != s.pipeline.Layout.XRes/2 {
		t.Errorf("Width: got %d, want %d", img.Width, s.pipeline.Layout.XRes/2)
	}
	if img.MimeType != "image/png" {
		t.Errorf("MimeType: got %s", img.MimeType)
	}
}

func TestHandleSheetBox(t *testing.T) {
	s := newTestServer(t)
	l := s.pipeline.Layout

	// A normalized scan stored at half resolution.
	normalized := sheet.New(l).Render(sheet.RenderOptions{})
	path := filepath.Join(t.TempDir(), "sheet_normalized_scan.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	half := image.NewNRGBA(image.Rect(0, 0, l.XRes/2, l.YRes/2))
	for y := 0; y < half.Bounds().Dy(); y++ {
		for x := 0; x < half.Bounds().Dx(); x++ {
			half.Set(x, y, normalized.At(2*x, 2*y))
		}
	}
	if err := png.Encode(f, half); err != nil {
		t.Fatal(err)
	}
	f.Close()

	box := sheet.New(l).Box(sheet.NameBox)
	var img struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := callTool(t, s, "sheet_box", map[string]interface{}{"path": path, "box": sheet.NameBox}, &img); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if d := img.Width - box.Rect.Dx()/2; d < -1 || d > 1 {
		t.Errorf("Width: got %d, want about %d", img.Width, box.Rect.Dx()/2)
	}
	if d := img.Height - box.Rect.Dy()/2; d < -1 || d > 1 {
		t.Errorf("Height: got %d, want about %d", img.Height, box.Rect.Dy()/2)
	}

	if err := callTool(t, s, "sheet_box", map[string]interface{}{"path": path, "box": "dataBox999"}, nil); err == nil {
		t.Error("expected an error for an unknown box")
	}
}

func TestHandleTextMatch(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		text, kind string
		want       string
		wantConf   float64
	}{
		{"MAXI", "tag", "MAXI", 1},
		{"Apple Juce", "name", "Apple Juice", 1 - 1.0/9},
		{"3.50 CHF", "price", "3.50 CHF", 1},
		{"ZZZZZZZZZ", "tag", "", 0},
	}
	for _, tt := range tests {
		var res MatchResult
		if err := callTool(t, s, "text_match", map[string]interface{}{"text": tt.text, "kind": tt.kind}, &res); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.text, err)
		}
		if res.Text != tt.want {
			t.Errorf("%s: got %q, want %q", tt.text, res.Text, tt.want)
		}
		if d := res.Confidence - tt.wantConf; d < -1e-9 || d > 1e-9 {
			t.Errorf("%s: confidence %g, want %g", tt.text, res.Confidence, tt.wantConf)
		}
	}

	if err := callTool(t, s, "text_match", map[string]interface{}{"text": "x", "kind": "frame"}, nil); err == nil {
		t.Error("expected an error for the frame kind")
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer(t)
	err := callTool(t, s, "image_crop", map[string]interface{}{}, nil)
	if err == nil || err.Code != -32000 {
		t.Fatalf("expected a tool execution error, got %+v", err)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsCall(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Params: json.RawMessage(`"nope"`)})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
}
