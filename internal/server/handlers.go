package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dgnsrekt/deltagraph/internal/config"
	"github.com/dgnsrekt/deltagraph/internal/contract"
	"github.com/dgnsrekt/deltagraph/internal/series"
)

// SeriesBuilder produces the chart payload for a contract identifier.
type SeriesBuilder interface {
	Build(ctx context.Context, identifier string) (*series.Result, error)
}

type Server struct {
	builder      SeriesBuilder
	providerKind config.ProviderKind
	logger       *zap.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

// NewServer keeps only what the handlers read from cfg; a nil cfg leaves the
// provider kind blank.
func NewServer(builder SeriesBuilder, cfg *config.Config, logger *zap.Logger) *Server {
	srv := &Server{
		builder: builder,
		logger:  logger,
	}
	if cfg != nil {
		srv.providerKind = cfg.Provider.Kind
	}
	return srv
}

// GetOptionData serves GET /get-option-data?ticker=<identifier>.
// Pipeline failures are reported as error payloads with status 200.
func (s *Server) GetOptionData(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")

	s.logger.Debug("option data request", zap.String("ticker", ticker))

	if err := contract.Validate(ticker); err != nil {
		s.logger.Info("invalid ticker", zap.String("ticker", ticker))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: series.Message(err)})
		return
	}

	result, err := s.builder.Build(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, contract.ErrInvalidTicker) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: series.Message(err)})
			return
		}
		s.logger.Warn("option data unavailable",
			zap.String("ticker", ticker),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, ErrorResponse{Error: series.Message(err)})
		return
	}

	s.logger.Debug("returning option data",
		zap.String("ticker", ticker),
		zap.Int("points", len(result.StockPrices)),
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Provider: string(s.providerKind),
	})
}

// validationError handles requests rejected by the OpenAPI validator.
func (s *Server) validationError(w http.ResponseWriter, message string, statusCode int) {
	s.logger.Info("request rejected by validator",
		zap.Int("status", statusCode),
		zap.String("reason", message),
	)

	if statusCode == http.StatusBadRequest {
		message = series.Message(contract.ErrInvalidTicker)
	}
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
