package handlers

import (
	"net/http"
	"time"

	"github.com/fatflowers/mealkit/internal/app/service/statemachine"
	"github.com/fatflowers/mealkit/pkg/response"
	types "github.com/fatflowers/mealkit/pkg/types"

	"github.com/gin-gonic/gin"
)

// CreateSubscriptionRequest is the JSON body for subscription creation.
type CreateSubscriptionRequest struct {
	UserID        string  `json:"user_id"`
	PlanID        string  `json:"plan_id"`
	StartDate     string  `json:"start_date"` // YYYY-MM-DD
	EndDate       *string `json:"end_date"`   // YYYY-MM-DD
	PaymentMethod string  `json:"payment_method"`
	AutoRenewal   bool    `json:"auto_renewal"`
}

// TransitionRequest is the JSON body for a state transition.
type TransitionRequest struct {
	TargetState string `json:"target_state"`
	Reason      string `json:"reason"`
	ActorUserID string `json:"actor_user_id"`
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(time.DateOnly, s)
	return t, err == nil
}

// actorFrom builds the audit actor: the explicit actor_user_id wins,
// otherwise requests count as system-originated.
func actorFrom(userID string) types.Actor {
	if userID != "" {
		return types.UserActor(userID)
	}
	return types.SystemActor()
}

// @Summary      Create subscription
// @Description  Creates a subscription in its derived initial state and writes the creation audit entry
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request  body  CreateSubscriptionRequest  true  "subscription"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions [post]
func ApiCreateSubscription(sm *statemachine.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		start, ok := parseDate(req.StartDate)
		if !ok {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "start_date must be YYYY-MM-DD"))
			return
		}
		var end *time.Time
		if req.EndDate != nil {
			e, ok := parseDate(*req.EndDate)
			if !ok {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "end_date must be YYYY-MM-DD"))
				return
			}
			end = &e
		}

		sub, err := sm.CreateSubscription(c.Request.Context(), &statemachine.CreateSubscriptionInput{
			UserID:        req.UserID,
			PlanID:        req.PlanID,
			StartDate:     start,
			EndDate:       end,
			PaymentMethod: types.PaymentMethod(req.PaymentMethod),
			AutoRenewal:   req.AutoRenewal,
			Actor:         types.UserActor(req.UserID),
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Execute state transition
// @Description  Moves a subscription along one edge of the transition table
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "subscription id"
// @Param        request  body  TransitionRequest  true  "transition"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions/{id}/transition [post]
func ApiExecuteTransition(sm *statemachine.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		id := c.Param("id")
		err := sm.ExecuteTransition(c.Request.Context(), id,
			types.SubscriptionState(req.TargetState), req.Reason, actorFrom(req.ActorUserID))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]any{"success": true}))
	}
}

// @Summary      Record payment success
// @Description  Increments completed cycles and auto-activates eligible New_Joiner subscriptions
// @Tags         Subscription
// @Produce      json
// @Param        id  path  string  true  "subscription id"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions/{id}/payment-success [post]
func ApiPaymentSuccess(sm *statemachine.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		activated, err := sm.ProcessPaymentSuccess(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]any{"activated": activated}))
	}
}

// @Summary      Record payment failure
// @Description  Cancels the subscription through the transition pipeline
// @Tags         Subscription
// @Produce      json
// @Param        id  path  string  true  "subscription id"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions/{id}/payment-failure [post]
func ApiPaymentFailure(sm *statemachine.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cancelled, err := sm.ProcessPaymentFailure(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]any{"cancelled": cancelled}))
	}
}

// @Summary      Get state history
// @Description  Returns the subscription's transition audit trail, newest first
// @Tags         Subscription
// @Produce      json
// @Param        id  path  string  true  "subscription id"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/subscriptions/{id}/history [get]
func ApiStateHistory(sm *statemachine.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := sm.GetStateHistory(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(entries))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, sm *statemachine.Service) {
	r.POST("/subscriptions", ApiCreateSubscription(sm))
	r.POST("/subscriptions/:id/transition", ApiExecuteTransition(sm))
	r.POST("/subscriptions/:id/payment-success", ApiPaymentSuccess(sm))
	r.POST("/subscriptions/:id/payment-failure", ApiPaymentFailure(sm))
	r.GET("/subscriptions/:id/history", ApiStateHistory(sm))
}
