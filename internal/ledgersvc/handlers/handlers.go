package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/query"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/service"
	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Players  *service.PlayerService
	Games    *service.GameService
	Stats    *service.StatsService
	Insights *service.InsightService

	loc  *time.Location
	port string
}

func NewHandler(players *service.PlayerService, games *service.GameService,
	stats *service.StatsService, insights *service.InsightService, loc *time.Location, port string) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		Players:  players,
		Games:    games,
		Stats:    stats,
		Insights: insights,
		loc:      loc,
		port:     port,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("encode response: %s", err)
	}
}

// ErrorResponse maps service errors onto status codes. Internal errors are
// logged and answered with a generic message.
func (h *Handler) ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *service.ValidationError
		qe *query.Error
		nf *service.NotFoundError
		ce *service.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		h.CreateResponse(w, Response{Message: "invalid request", Code: http.StatusBadRequest, Error: ve.Error()})
	case errors.As(err, &qe):
		h.CreateResponse(w, Response{Message: "invalid request", Code: http.StatusBadRequest, Error: qe.Error()})
	case errors.As(err, &nf):
		h.CreateResponse(w, Response{Message: "not found", Code: http.StatusNotFound, Error: nf.Error()})
	case errors.As(err, &ce):
		h.CreateResponse(w, Response{Message: "conflict", Code: http.StatusConflict, Error: ce.Error()})
	default:
		log.Errorf("%s %s failed: %s", r.Method, r.URL.Path, err)
		h.CreateResponse(w, Response{Message: "internal error", Code: http.StatusInternalServerError, Error: "something went wrong"})
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "ledger service is running at port " + h.port,
		Code:    http.StatusOK,
	})
}

// pathID reads a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &service.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// queryID reads a required positive integer query parameter.
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, &service.ValidationError{Field: name, Message: "is required"}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &service.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return &service.ValidationError{Field: "body", Message: "must be valid JSON"}
	}
	return nil
}
