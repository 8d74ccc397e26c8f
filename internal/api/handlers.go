package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"WaveSentinel/internal/calculator"
	"WaveSentinel/internal/collector"
	"WaveSentinel/internal/elliott"
	"WaveSentinel/internal/model"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
	maxUploadBars   = 5000
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"source": s.collector.Fetcher().Name(),
	})
}

// handleAnalysis fetches bars for a symbol and returns the full report.
func (s *Server) handleAnalysis(c *gin.Context) {
	interval := c.DefaultQuery("interval", s.opts.DefaultInterval)
	limit := s.opts.DefaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	rep, err := s.collector.Analyze(c.Request.Context(), c.Param("symbol"), interval, limit)
	if err != nil {
		s.marketError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

type analyzeBarsRequest struct {
	Bars []model.PriceBar `json:"bars" binding:"required"`
}

// handleAnalyzeBars runs the analysis over caller supplied bars.
func (s *Server) handleAnalyzeBars(c *gin.Context) {
	var req analyzeBarsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Bars) > maxUploadBars {
		errorResponse(c, http.StatusBadRequest, "too many bars")
		return
	}
	c.JSON(http.StatusOK, elliott.Analyze(req.Bars))
}

func (s *Server) handleFibonacci(c *gin.Context) {
	start, err1 := strconv.ParseFloat(c.Query("start"), 64)
	end, err2 := strconv.ParseFloat(c.Query("end"), 64)
	if err1 != nil || err2 != nil {
		errorResponse(c, http.StatusBadRequest, "start and end must be numbers")
		return
	}
	levels := calculator.CalculateFibonacciLevels(start, end)
	c.JSON(http.StatusOK, gin.H{
		"start":  start,
		"end":    end,
		"levels": levels.Ordered(),
	})
}

func (s *Server) handleSymbols(c *gin.Context) {
	symbols, err := s.collector.Fetcher().FetchSymbols(c.Request.Context())
	if err != nil {
		s.marketError(c, err)
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols, "count": len(symbols)})
}

func (s *Server) handleTopSymbols(c *gin.Context) {
	limit := defaultTopLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxTopLimit {
			errorResponse(c, http.StatusBadRequest, "limit must be in 1..100")
			return
		}
		limit = n
	}
	stats, err := s.collector.Fetcher().FetchTopSymbols(c.Request.Context(), limit)
	if err != nil {
		s.marketError(c, err)
		return
	}
	if stats == nil {
		stats = []model.TickerStat{}
	}
	c.JSON(http.StatusOK, gin.H{"symbols": stats})
}

func (s *Server) marketError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, collector.ErrInvalidRequest):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, collector.ErrMarketData):
		s.log.Warn().Err(err).Str("path", c.FullPath()).Msg("market data failure")
		errorResponse(c, http.StatusBadGateway, err.Error())
	default:
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		errorResponse(c, http.StatusInternalServerError, "internal error")
	}
}
