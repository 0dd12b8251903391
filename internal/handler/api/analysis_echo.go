package api

import (
	models "StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	"StockLens/internal/usecase"
	xhttp "StockLens/pkg/http"
	xlogger "StockLens/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type AnalysisEchoHandler struct {
	logger   *xlogger.Logger
	analysis *usecase.AnalysisUseCase
	bars     *usecase.BarsUseCase
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, analysis *usecase.AnalysisUseCase, bars *usecase.BarsUseCase) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{logger: logger, analysis: analysis, bars: bars}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/snapshot", h.Snapshot)
	g.GET("/regime", h.Regime)
	g.GET("/regime/history", h.RegimeHistory)
	g.GET("/parameters", h.Parameters)
	g.GET("/bars", h.Bars)
}

func (h *AnalysisEchoHandler) Snapshot(c echo.Context) error {
	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	market := domrepo.NormalizeMarket(req.Market)

	res, err := h.analysis.Analyze(c.Request().Context(), req.Symbol, market)
	if err != nil {
		h.logger.Error("snapshot usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Regime(c echo.Context) error {
	req := &models.RegimeStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.analysis.Regime(req.History))
}

func (h *AnalysisEchoHandler) RegimeHistory(c echo.Context) error {
	req := &models.RegimeHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.analysis.History(req.Limit))
}

func (h *AnalysisEchoHandler) Parameters(c echo.Context) error {
	req := &models.ParametersRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.analysis.Parameters(req.Regime))
}

func (h *AnalysisEchoHandler) Bars(c echo.Context) error {
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, ok := xhttp.ParseDate(req.From)
	if !ok {
		return xhttp.BadRequestResponse(c, "from must be a valid date")
	}
	to, ok := xhttp.ParseDate(req.To)
	if !ok {
		return xhttp.BadRequestResponse(c, "to must be a valid date")
	}

	res, err := h.bars.GetBars(c.Request().Context(), usecase.GetBarsParams{
		Symbol: req.Symbol,
		Market: domrepo.NormalizeMarket(req.Market),
		From:   from,
		To:     to,
		Limit:  req.Limit,
	})
	if err != nil {
		h.logger.Error("bars usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
