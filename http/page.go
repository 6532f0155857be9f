package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"diabetescheck/ml"
	"diabetescheck/predict"
)

//go:embed templates/index.html
var templateFS embed.FS

type pageRenderer struct {
	tmpl     *template.Template
	markdown goldmark.Markdown
}

type formField struct {
	ml.Field
	Value string
}

type pageData struct {
	Fields []formField
	Error  string
	Advice template.HTML
}

func newPageRenderer() (*pageRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &pageRenderer{tmpl: tmpl, markdown: goldmark.New()}, nil
}

// renderMarkdown converts an advice document to HTML. Raw HTML in the source is not passed through.
func (p *pageRenderer) renderMarkdown(doc string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := p.markdown.Convert([]byte(doc), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (p *pageRenderer) render(w http.ResponseWriter, status int, data pageData) error {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func formFields(values map[string]string) []formField {
	fields := ml.Fields()
	out := make([]formField, len(fields))
	for i, f := range fields {
		out[i] = formField{Field: f, Value: values[f.Key]}
	}
	return out
}

func (h *Handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	if err := h.page.render(w, http.StatusOK, pageData{Fields: formFields(nil)}); err != nil {
		h.log.Error("render form", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handlers) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	values := make(map[string]string, ml.NumFeatures)
	for _, f := range ml.Fields() {
		values[f.Key] = r.PostForm.Get(f.Key)
	}
	data := pageData{Fields: formFields(values)}
	status := http.StatusOK

	result, err := h.service.EvaluateNamed(r.Context(), values)
	switch {
	case err == nil:
		data.Advice, err = h.page.renderMarkdown(result.Document)
		if err != nil {
			h.log.Error("render advice", zap.Error(err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	case predict.IsValidationError(err):
		data.Error = predict.UserMessage(err)
	default:
		h.log.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		status = http.StatusInternalServerError
		data.Error = predict.UserMessage(err)
	}

	if err := h.page.render(w, status, data); err != nil {
		h.log.Error("render form", zap.Error(err))
	}
}
