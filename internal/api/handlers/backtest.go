package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stratlab/internal/api/models"
	"stratlab/internal/runner"
	"stratlab/types"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// Runner is the part of runner.Runner the handlers use.
type Runner interface {
	Run(ctx context.Context, req runner.Request) (*types.StoredResult, error)
	History(ctx context.Context, limit int) ([]types.StoredResult, error)
}

// BacktestHandler handles backtest-related requests
type BacktestHandler struct {
	runner Runner
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(r Runner) *BacktestHandler {
	return &BacktestHandler{runner: r}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	runReq, err := toRunnerRequest(req)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.runner.Run(c.Request.Context(), runReq)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.BacktestResponse{
		ID:       result.ID,
		Status:   "completed",
		Backtest: result,
	})
}

// ListBacktests handles GET /api/v1/backtests
func (h *BacktestHandler) ListBacktests(c *gin.Context) {
	limit := runner.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(c, types.InvalidConfig("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	results, err := h.runner.History(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if results == nil {
		results = []types.StoredResult{}
	}
	c.JSON(http.StatusOK, models.HistoryResponse{Backtests: results, Count: len(results)})
}

func toRunnerRequest(req models.BacktestRequest) (runner.Request, error) {
	out := runner.Request{
		StrategyName:   req.StrategyName,
		StrategyType:   req.StrategyType,
		Params:         req.Params,
		Symbol:         req.Symbol,
		InitialCapital: req.InitialCapital,
	}

	if req.Interval != "" {
		interval, ok := types.ConvertInterval[strings.ToUpper(req.Interval)]
		if !ok {
			return out, types.InvalidConfig("interval", "%q is not a supported interval", req.Interval)
		}
		out.Interval = interval
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return out, types.InvalidConfig("startDate", "must be YYYY-MM-DD")
	}
	out.StartDate = start

	if req.EndDate != "" {
		end, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return out, types.InvalidConfig("endDate", "must be YYYY-MM-DD")
		}
		// inclusive of the whole end day
		out.EndDate = end.Add(24*time.Hour - time.Nanosecond)
	}
	return out, nil
}
