package handlers

import (
	"net/http"
	"strconv"

	"github.com/fatflowers/mealkit/internal/app/service/statemachine"
	"github.com/fatflowers/mealkit/internal/store"
	"github.com/fatflowers/mealkit/pkg/response"
	types "github.com/fatflowers/mealkit/pkg/types"

	"github.com/gin-gonic/gin"
)

// @Summary      Activate eligible joiners
// @Description  Sweeps New_Joiner subscriptions that completed the required payment cycles
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/sweeps/activate-joiners [post]
func ApiActivateJoiners(sm *statemachine.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := sm.CheckAndActivateNewJoiners(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]any{"transitioned": count}))
	}
}

// @Summary      Cancel exiting subscriptions
// @Description  Sweeps Exiting subscriptions whose end date has passed
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/sweeps/cancel-exiting [post]
func ApiCancelExiting(sm *statemachine.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := sm.CheckAndCancelExitingSubscriptions(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]any{"transitioned": count}))
	}
}

// @Summary      List subscriptions
// @Description  Paginated admin listing with optional status/user/plan filters
// @Tags         Admin
// @Produce      json
// @Param        status   query  string  false  "status filter"
// @Param        user_id  query  string  false  "user filter"
// @Param        plan_id  query  string  false  "plan filter"
// @Param        from     query  int     false  "offset"
// @Param        size     query  int     false  "page size"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/subscriptions [get]
func ApiListSubscriptions(sm *statemachine.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from := 0
		if v := c.Query("from"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				from = n
			}
		}
		size := 100
		if v := c.Query("size"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid size"))
				return
			}
			size = n
		}

		var filters []*types.CommonFilter
		for _, field := range []string{"status", "user_id", "plan_id"} {
			if v := c.Query(field); v != "" {
				filters = append(filters, &types.CommonFilter{
					Field:    field,
					Operator: types.CommonFilterOperatorEq,
					Values:   []any{v},
				})
			}
		}

		sortOrder := c.Query("sort_order")
		if sortOrder != "asc" && sortOrder != "desc" {
			sortOrder = "desc"
		}

		res, err := sm.ScanSubscriptions(c.Request.Context(), &store.ScanSubscriptionsRequest{
			Filters:   filters,
			From:      from,
			Size:      size,
			SortBy:    "created_at",
			SortOrder: sortOrder,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]any{"items": res.Items, "total": res.Total}))
	}
}

// @Summary      List plans
// @Description  Returns the meal-plan catalog ordered by code
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/plans [get]
func ApiListPlans(sm *statemachine.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		plans, err := sm.ListPlans(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(plans))
	}
}

func RegisterAdminRoutes(r gin.IRouter, sm *statemachine.Service) {
	r.POST("/sweeps/activate-joiners", ApiActivateJoiners(sm))
	r.POST("/sweeps/cancel-exiting", ApiCancelExiting(sm))
	r.GET("/subscriptions", ApiListSubscriptions(sm))
	r.GET("/plans", ApiListPlans(sm))
}
