// Package report renders an exported document directory as a standalone
// HTML dashboard.
package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/panbanda/devflow/internal/export"
	"github.com/panbanda/devflow/pkg/models"
)

//go:embed template.html
var templateFS embed.FS

// Renderer handles HTML report generation.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a new renderer with the embedded template.
func NewRenderer() (*Renderer, error) {
	printer := message.NewPrinter(language.English)
	funcMap := template.FuncMap{
		"gradeClass": gradeClass,
		"riskBadge":  riskBadge,
		"severityBadge": func(s models.Severity) string {
			switch s {
			case models.SeverityHigh:
				return "critical"
			case models.SeverityMedium:
				return "medium"
			default:
				return "low"
			}
		},
		"heatLevel": heatLevel,
		"barHeight": func(n, peak int) int {
			if peak == 0 {
				return 0
			}
			return n * 100 / peak
		},
		"limit": func(items []export.FileRiskRecord, n int) []export.FileRiskRecord {
			if len(items) > n {
				return items[:n]
			}
			return items
		},
		"title":        cases.Title(language.English).String,
		"truncatePath": truncatePath,
		"num": func(n any) string {
			switch v := n.(type) {
			case int:
				return printer.Sprintf("%d", v)
			case float64:
				return printer.Sprintf("%.1f", v)
			default:
				return "0"
			}
		},
		"json": func(v any) template.JS {
			b, _ := json.Marshal(v)
			return template.JS(b)
		},
	}

	tmplContent, err := templateFS.ReadFile("template.html")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, err
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render generates HTML from the data directory and writes to the output.
// The title names the report; empty uses the directory name.
func (r *Renderer) Render(dataDir, title string, w io.Writer) error {
	data, err := loadData(dataDir)
	if err != nil {
		return err
	}
	data.Title = title
	if data.Title == "" {
		data.Title = filepath.Base(filepath.Clean(dataDir))
	}

	return r.tmpl.Execute(w, data)
}

// RenderToFile generates HTML and writes it to a file.
func (r *Renderer) RenderToFile(dataDir, title, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return r.Render(dataDir, title, f)
}

// loadData reads the exported documents. The productivity summary is
// required; the others are shown when present.
func loadData(dataDir string) (*RenderData, error) {
	data := &RenderData{}

	found, err := loadDocument(dataDir, export.ProductivityFile, &data.Productivity)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s not found in %s: run devflow export first", export.ProductivityFile, dataDir)
	}
	data.GradeClass = gradeClass(data.Productivity.ProductivityScore.Grade)
	data.SparklineMax = sparklineMax(data.Productivity.SparklineData)

	hotspots := &export.FileHotspots{}
	if found, err = loadDocument(dataDir, export.HotspotsFile, hotspots); err != nil {
		return nil, err
	} else if found {
		data.Hotspots = hotspots
	}

	insights := &export.Insights{}
	if found, err = loadDocument(dataDir, export.InsightsFile, insights); err != nil {
		return nil, err
	} else if found {
		data.Insights = insights
	}

	commits := &export.CommitAnalytics{}
	if found, err = loadDocument(dataDir, export.CommitsFile, commits); err != nil {
		return nil, err
	} else if found {
		data.Commits = commits
		data.Heatmap, data.HeatmapMax = heatmapRows(commits.HeatmapData)
	}

	return data, nil
}

// loadDocument validates a document against its schema before decoding it.
// A missing file reports false with no error.
func loadDocument(dataDir, name string, v any) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(dataDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := export.Validate(name, raw); err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

func gradeClass(g models.Grade) string {
	switch g {
	case models.GradeAPlus, models.GradeA:
		return "good"
	case models.GradeB, models.GradeC:
		return "warning"
	default:
		return "danger"
	}
}

func riskBadge(score int) string {
	switch {
	case score > 75:
		return "critical"
	case score > 50:
		return "high"
	case score > 25:
		return "medium"
	default:
		return "low"
	}
}

// heatLevel buckets a count into 0-4 relative to the busiest day.
func heatLevel(count, peak int) int {
	if count <= 0 || peak <= 0 {
		return 0
	}
	level := (count*4 + peak - 1) / peak
	if level > 4 {
		level = 4
	}
	return level
}

func truncatePath(s string, n int) string {
	if len(s) <= n {
		return s
	}
	parts := strings.Split(s, "/")
	if len(parts) <= 2 {
		return s[:n-3] + "..."
	}
	filename := parts[len(parts)-1]
	if len(filename) >= n-3 {
		return "..." + filename[len(filename)-n+3:]
	}
	remaining := n - len(filename) - 4
	if remaining < 0 {
		remaining = 0
	}
	prefix := strings.Join(parts[:len(parts)-1], "/")
	if len(prefix) > remaining {
		prefix = prefix[len(prefix)-remaining:]
	}
	return ".../" + prefix + "/" + filename
}

// Handler serves the report, re-rendering from dataDir on every request so
// a fresh export shows up without a restart.
func (r *Renderer) Handler(dataDir, title string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		var buf bytes.Buffer
		if err := r.Render(dataDir, title, &buf); err != nil {
			http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	})
}
