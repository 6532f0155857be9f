package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"diabetescheck/advice"
	"diabetescheck/ml"
	"diabetescheck/predict"
)

const maxBodyBytes = 16 << 10

// Handlers serves the prediction endpoints for one Service.
type Handlers struct {
	service *predict.Service
	log     *zap.Logger
	page    *pageRenderer
}

// PredictRequest carries the inputs either positionally or keyed by field key.
type PredictRequest struct {
	Fields []string          `json:"fields,omitempty"`
	Values map[string]string `json:"values,omitempty"`
}

// PredictResponse is returned for a successful prediction.
type PredictResponse struct {
	Outcome advice.Outcome `json:"outcome"`
	Label   int            `json:"label"`
	Advice  string         `json:"advice"`
}

// ErrorResponse is returned for rejected input and failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func NewHandlers(service *predict.Service, log *zap.Logger) (*Handlers, error) {
	if log == nil {
		log = zap.NewNop()
	}
	page, err := newPageRenderer()
	if err != nil {
		return nil, err
	}
	return &Handlers{service: service, log: log, page: page}, nil
}

func RegisterHandlers(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/ready", h.handleReady)
	mux.HandleFunc("GET /api/fields", handleFields)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /api/ws/predict", h.handlePredictSocket)
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /{$}", h.handleFormSubmit)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleReady(w http.ResponseWriter, r *http.Request) {
	artifacts := h.service.Artifacts()
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "loaded",
		"scaler":     artifacts.ScalerKind,
		"classifier": artifacts.ClassifierKind,
	})
}

func handleFields(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"fields": ml.Fields()})
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {

	var req PredictRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be a JSON object with fields or values", "")
		return
	}

	status, body := h.evaluate(r, req)
	respondJSON(w, status, body)
}

// evaluate runs one request through the service and picks the response status and body.
func (h *Handlers) evaluate(r *http.Request, req PredictRequest) (int, interface{}) {
	var (
		result advice.Result
		err    error
	)
	if req.Values != nil {
		result, err = h.service.EvaluateNamed(r.Context(), req.Values)
	} else {
		result, err = h.service.Evaluate(r.Context(), req.Fields)
	}
	if err != nil {
		if predict.IsValidationError(err) {
			return http.StatusUnprocessableEntity, validationResponse(err)
		}
		h.log.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		return http.StatusInternalServerError, ErrorResponse{Error: "prediction_failed", Message: predict.UserMessage(err)}
	}
	return http.StatusOK, PredictResponse{Outcome: result.Outcome, Label: result.Label, Advice: result.Document}
}

func validationResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: predict.ValidationReason(err), Message: predict.UserMessage(err)}
	var verr *ml.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field.Key
	}
	return resp
}

func writeError(w http.ResponseWriter, status int, code, message, field string) {
	respondJSON(w, status, ErrorResponse{Error: code, Message: message, Field: field})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
