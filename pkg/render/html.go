package render

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("render").Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Title        string
	Layout       string  // "force", "circle", "grid" or "preset"
	EdgeOpacity  float64 // edges are drawn faint so communities stand out
	ShowArrows   bool
	ShowLabels   bool
	CytoscapeURL string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Title:        "Communities",
		Layout:       "force",
		EdgeOpacity:  0.4,
		ShowArrows:   false,
		ShowLabels:   true,
		CytoscapeURL: "https://unpkg.com/cytoscape@3.28.1/dist/cytoscape.min.js",
	}
}

// ValidLayouts lists the supported layout names.
var ValidLayouts = []string{"force", "circle", "grid", "preset"}

type templateData struct {
	Title        string
	CytoscapeURL string
	GraphJSON    template.JS
	Layout       string
	EdgeOpacity  float64
	ArrowShape   string
	NodeLabel    string
	Empty        bool
}

// GenerateHTML renders graph as a self-contained HTML page.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	layout, err := layoutToCytoscape(opts.Layout)
	if err != nil {
		return "", err
	}
	if layout == "preset" {
		for _, n := range graph.Nodes {
			if n.Position == nil {
				return "", fmt.Errorf("preset layout requires positions; node %s has none", n.ID)
			}
		}
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:        opts.Title,
		CytoscapeURL: opts.CytoscapeURL,
		GraphJSON:    template.JS(graphJSON),
		Layout:       layout,
		EdgeOpacity:  opts.EdgeOpacity,
		ArrowShape:   "none",
		Empty:        graph.IsEmpty(),
	}
	if opts.ShowArrows {
		data.ArrowShape = "triangle"
	}
	if opts.ShowLabels {
		data.NodeLabel = "data(label)"
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

func layoutToCytoscape(layout string) (string, error) {
	switch layout {
	case "", "force":
		return "cose", nil
	case "circle":
		return "circle", nil
	case "grid":
		return "grid", nil
	case "preset":
		return "preset", nil
	default:
		return "", fmt.Errorf("invalid layout %q: must be one of %v", layout, ValidLayouts)
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.CytoscapeURL}}"></script>
<style>
  html, body { margin: 0; height: 100%; font-family: sans-serif; }
  #cy { width: 100%; height: 100%; }
  #empty { padding: 2em; color: #666; }
</style>
</head>
<body>
{{if .Empty}}<div id="empty">No communities to display.</div>{{end}}
<div id="cy"></div>
<script>
  const elements = {{.GraphJSON}};
  cytoscape({
    container: document.getElementById('cy'),
    elements: elements,
    layout: { name: '{{.Layout}}' },
    style: [
      { selector: 'node', style: {
          'background-color': 'data(color)',
          'background-opacity': 'data(opacity)',
          'width': 'data(size)',
          'height': 'data(size)',
          'label': '{{.NodeLabel}}',
          'font-size': 8,
          'text-valign': 'center'
      }},
      { selector: 'edge', style: {
          'width': 1,
          'line-color': '#999',
          'opacity': {{.EdgeOpacity}},
          'curve-style': 'bezier',
          'target-arrow-shape': '{{.ArrowShape}}',
          'target-arrow-color': '#999'
      }}
    ]
  });
</script>
</body>
</html>
`
