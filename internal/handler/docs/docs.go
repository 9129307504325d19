package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/getaround-ml/pricing-inference/internal/model"
)

// Handler serves the API reference page. The page is rendered once from the
// loaded bundle schema, so the documented feature order and vocabularies can
// never drift from what the model actually expects.
type Handler struct {
	page []byte
}

type featureRow struct {
	Position   int
	Name       string
	Kind       string
	Categories string
}

type pageData struct {
	FeatureCount    int
	TreeCount       int
	Features        []featureRow
	ExampleRequest  string
	ExampleResponse string
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Car Rental Pricing API</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 56rem; color: #222; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; }
th { background: #f4f4f4; }
pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; }
code { background: #f4f4f4; padding: 0.1rem 0.3rem; }
</style>
</head>
<body>
<h1>Car Rental Pricing API</h1>
<p>Predicts the optimal daily rental price for a car. The model is a random
forest over {{.FeatureCount}} features ({{.TreeCount}} trees).</p>

<h2>POST /predict</h2>
<p>Accepts a batch of cars as <code>input</code>: a list of rows, each row a
list of {{.FeatureCount}} values in the exact order below. The response holds
one predicted daily price per row, in the same order. The batch is
all-or-nothing: any malformed row rejects the whole request with a 400.</p>

<h3>Feature order</h3>
<table>
<tr><th>#</th><th>Feature</th><th>Type</th><th>Values</th></tr>
{{range .Features}}<tr><td>{{.Position}}</td><td>{{.Name}}</td><td>{{.Kind}}</td><td>{{.Categories}}</td></tr>
{{end}}</table>
<p>Categorical values outside the listed vocabulary are accepted and treated
as unseen, the way the model was trained. Booleans must be JSON booleans and
numbers JSON numbers; quoted values are rejected.</p>

<h3>Example</h3>
<pre>curl -X POST /predict -H 'Content-Type: application/json' -d '{{.ExampleRequest}}'</pre>
<p>Response:</p>
<pre>{{.ExampleResponse}}</pre>

<h2>GET /api/v1/delay/summary, /overview, /threshold, /threshold/sweep</h2>
<p>Delay-analysis reports over the rentals dataset, when the service is
started with the dataset enabled. <code>/threshold</code> takes
<code>minutes</code> and an optional <code>scope</code> (<code>all</code> or
<code>connect</code>); <code>/threshold/sweep</code> takes <code>from</code>,
<code>to</code>, <code>step</code> and <code>scope</code>.</p>
</body>
</html>
`

// NewHandler renders the reference page for the bundle.
func NewHandler(bundle *model.Bundle) (*Handler, error) {
	tmpl, err := template.New("docs").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing docs template: %w", err)
	}

	schema := bundle.Schema()
	data := pageData{
		FeatureCount: bundle.FeatureCount(),
		TreeCount:    bundle.TreeCount(),
	}
	exampleRow := make([]any, 0, len(schema))
	for i, feature := range schema {
		row := featureRow{Position: i, Name: feature.Name, Kind: string(feature.Kind)}
		switch feature.Kind {
		case model.KindCategorical:
			row.Categories = strings.Join(feature.Categories, ", ")
			exampleRow = append(exampleRow, feature.Categories[0])
		case model.KindNumeric:
			row.Categories = "any finite number"
			exampleRow = append(exampleRow, 100)
		case model.KindBoolean:
			row.Categories = "true / false"
			exampleRow = append(exampleRow, true)
		}
		data.Features = append(data.Features, row)
	}

	request, err := json.Marshal(gin.H{"input": []any{exampleRow}})
	if err != nil {
		return nil, fmt.Errorf("rendering docs example: %w", err)
	}
	data.ExampleRequest = string(request)
	data.ExampleResponse = `{"prediction": [112.81]}`

	var page bytes.Buffer
	if err := tmpl.Execute(&page, data); err != nil {
		return nil, fmt.Errorf("rendering docs page: %w", err)
	}
	return &Handler{page: page.Bytes()}, nil
}

// Docs handles GET /docs.
func (h *Handler) Docs(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.page)
}
