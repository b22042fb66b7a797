package handlers

import (
	"net/http"
	"time"

	"github.com/fatflowers/mealkit/internal/app/service/demand"
	"github.com/fatflowers/mealkit/internal/app/service/diagnostics"
	"github.com/fatflowers/mealkit/pkg/clock"
	"github.com/fatflowers/mealkit/pkg/response"

	"github.com/gin-gonic/gin"
)

// targetDate reads the optional date query param, defaulting to today per
// the injected clock.
func targetDate(c *gin.Context, clk clock.Clock) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return clock.Today(clk.Now()), true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// @Summary      Daily kitchen demand
// @Description  Meal counts, preparation list and raw-material totals for a date
// @Tags         Kitchen
// @Produce      json
// @Param        date  query  string  false  "target date (YYYY-MM-DD, default today)"
// @Success      200  {object}  response.APIResponse[demand.DailyDemand]
// @Router       /api/v1/kitchen/daily-demand [get]
func ApiDailyDemand(svc *demand.Service, clk clock.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := targetDate(c, clk)
		if !ok {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "date must be YYYY-MM-DD"))
			return
		}
		out, err := svc.ComputeDailyDemand(c.Request.Context(), date)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

// @Summary      Daily demand diagnostics
// @Description  Explains why a date produced its counts: cycle resolution, assignment coverage, subscriber breakdown, data faults
// @Tags         Kitchen
// @Produce      json
// @Param        date  query  string  false  "target date (YYYY-MM-DD, default today)"
// @Success      200  {object}  response.APIResponse[diagnostics.Report]
// @Router       /api/v1/kitchen/diagnostics [get]
func ApiDailyDiagnostics(svc *diagnostics.Service, clk clock.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := targetDate(c, clk)
		if !ok {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "date must be YYYY-MM-DD"))
			return
		}
		report, err := svc.ComputeDailyDiagnostics(c.Request.Context(), date)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(report))
	}
}

func RegisterKitchenRoutes(r gin.IRouter, demandSvc *demand.Service, diagSvc *diagnostics.Service, clk clock.Clock) {
	r.GET("/kitchen/daily-demand", ApiDailyDemand(demandSvc, clk))
	r.GET("/kitchen/diagnostics", ApiDailyDiagnostics(diagSvc, clk))
}
