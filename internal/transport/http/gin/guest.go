package httpgin

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/service"
	"github.com/kirinyoku/tableorder/internal/service/checkout"
	"github.com/kirinyoku/tableorder/internal/service/orders"
)

const maxWebhookBytes = 64 << 10

// @Summary  Public menu of a venue
// @Param    venueId  path  string  true  "Venue ID"
// @Success  200  {array}   domain.MenuSection
// @Failure  400  {object}  ErrorResponse "tenant required"
// @Router   /t/{venueId}/menu [get]
func handlePublicMenu(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sections, err := svcs.Menu.PublicMenu(c.Request.Context(), guestVenue(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 30s
		writeJSONWithCache(c, http.StatusOK, sections, "public, max-age=30", true)
	}
}

// @Summary  Guest landing for a scanned table
// @Param    venueId  path  string  true  "Venue ID"
// @Param    token    path  string  true  "QR token"
// @Success  200  {object}  TableLandingResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /t/{venueId}/table/{token} [get]
func handleTableLanding(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID := guestVenue(c)

		t, err := svcs.Tables.TableByToken(c.Request.Context(), venueID, c.Param("token"))
		if err != nil {
			respondErr(c, err)
			return
		}
		v, err := svcs.Venue.Get(c.Request.Context(), venueID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, TableLandingResponse{Venue: v, Table: t})
	}
}

// @Summary  Resolve a QR token to its venue and table
// @Param    token  path  string  true  "QR token"
// @Success  200  {object}  ResolveTokenResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /q/{token} [get]
func handleResolveToken(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svcs.Tables.Resolve(c.Request.Context(), c.Param("token"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ResolveTokenResponse{
			VenueID:   res.VenueID.String(),
			TableID:   res.TableID.String(),
			TableName: res.TableName,
		})
	}
}

// @Summary  Open an order for a table
// @Param    venueId  path  string  true  "Venue ID"
// @Param    req body  CreateOrderRequest true "payload"
// @Success  201  {object}  domain.Order
// @Failure  404  {object}  ErrorResponse "table not found"
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Router   /t/{venueId}/orders [post]
func handleCreateOrder(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		o, err := svcs.Orders.CreateOrder(c.Request.Context(), guestVenue(c), req.QRToken, "ip:"+c.ClientIP())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// @Summary  Get order with items
// @Param    venueId  path  string  true  "Venue ID"
// @Param    orderId  path  string  true  "Order ID (uuid)"
// @Success  200  {object}  domain.OrderWithItems
// @Failure  404  {object}  ErrorResponse
// @Router   /t/{venueId}/orders/{orderId} [get]
func handleGetOrder(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseUUIDParam(c, "orderId")
		if !ok {
			return
		}
		o, err := svcs.Orders.GetOrder(c.Request.Context(), guestVenue(c), orderID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Add a menu item to an order
// @Param    venueId  path  string  true  "Venue ID"
// @Param    orderId  path  string  true  "Order ID (uuid)"
// @Param    req body  AttachItemRequest true "payload"
// @Success  200  {object}  domain.OrderWithItems
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "order not editable / item unavailable"
// @Router   /t/{venueId}/orders/{orderId}/items [post]
func handleAttachItem(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseUUIDParam(c, "orderId")
		if !ok {
			return
		}
		var req AttachItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		itemID, err := uuid.Parse(req.MenuItemID)
		if err != nil {
			badRequest(c, "invalid menu_item_id")
			return
		}
		res, err := svcs.Orders.AttachItem(c.Request.Context(), guestVenue(c), orderID, orders.AttachItemInput{
			MenuItemID: itemID,
			Quantity:   req.Quantity,
			Modifiers:  req.Modifiers,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Change order status from the guest app
// @Description  Guests may only pay or cancel an OPEN order, and may only pay
// @Description  here while no payment provider is configured. A staff session
// @Description  of the same venue may perform any legal transition.
// @Param    venueId  path  string  true  "Venue ID"
// @Param    orderId  path  string  true  "Order ID (uuid)"
// @Param    req body  UpdateStatusRequest true "payload"
// @Success  200  {object}  domain.Order
// @Failure  403  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /t/{venueId}/orders/{orderId}/status [patch]
func handleGuestStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseUUIDParam(c, "orderId")
		if !ok {
			return
		}
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		venueID := guestVenue(c)
		to := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		actor := orders.Actor{Staff: isVenueStaff(c, venueID)}

		o, err := svcs.Orders.UpdateStatus(c.Request.Context(), venueID, orderID, to, actor)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Settle an order without a payment provider (idempotent)
// @Param    venueId  path  string  true  "Venue ID"
// @Param    orderId  path  string  true  "Order ID (uuid)"
// @Param    Idempotency-Key  header  string  false  "retry key"
// @Param    req body  SettleRequest true "payload"
// @Success  200  {object}  orders.SettleResult
// @Failure  403  {object}  ErrorResponse "provider configured"
// @Failure  409  {object}  ErrorResponse "already settled / idem in progress"
// @Router   /t/{venueId}/orders/{orderId}/settle [post]
func handleSettleDirect(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := parseUUIDParam(c, "orderId")
		if !ok {
			return
		}
		var req SettleRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			badRequest(c, err.Error())
			return
		}

		venueID := guestVenue(c)
		actor := orders.Actor{Staff: isVenueStaff(c, venueID)}

		res, err := svcs.Orders.SettleDirect(c.Request.Context(), venueID, orderID, req.TipCents, idempotencyKey(c), actor)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Start a checkout from a cart
// @Param    venueId  path  string  true  "Venue ID"
// @Param    req body  StartCheckoutRequest true "payload"
// @Success  201  {object}  domain.Checkout
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /t/{venueId}/checkout [post]
func handleStartCheckout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		lines := make([]domain.CartLine, 0, len(req.Items))
		for _, it := range req.Items {
			itemID, err := uuid.Parse(it.MenuItemID)
			if err != nil {
				badRequest(c, "invalid menu_item_id")
				return
			}
			lines = append(lines, domain.CartLine{
				MenuItemID: itemID,
				Quantity:   it.Quantity,
				Modifiers:  it.Modifiers,
			})
		}
		co, err := svcs.Checkout.Start(c.Request.Context(), guestVenue(c), req.QRToken, lines)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, co)
	}
}

// @Summary  Resume a checkout session
// @Param    venueId    path  string  true  "Venue ID"
// @Param    sessionId  path  string  true  "Checkout session"
// @Success  200  {object}  domain.Checkout
// @Failure  404  {object}  ErrorResponse "unknown or expired"
// @Router   /t/{venueId}/checkout/{sessionId} [get]
func handleResumeCheckout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		co, err := svcs.Checkout.Resume(c.Request.Context(), guestVenue(c), c.Param("sessionId"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, co)
	}
}

// @Summary  Turn a checkout into an order
// @Param    venueId    path  string  true  "Venue ID"
// @Param    sessionId  path  string  true  "Checkout session"
// @Success  200  {object}  domain.OrderWithItems
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /t/{venueId}/checkout/{sessionId}/place [post]
func handlePlaceCheckout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svcs.Checkout.Place(c.Request.Context(), guestVenue(c), c.Param("sessionId"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Pay a checkout (idempotent)
// @Param    venueId    path  string  true  "Venue ID"
// @Param    sessionId  path  string  true  "Checkout session"
// @Param    Idempotency-Key  header  string  false  "retry key"
// @Param    req body  PayRequest true "payload"
// @Success  200  {object}  checkout.PayResult
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /t/{venueId}/checkout/{sessionId}/pay [post]
func handlePayCheckout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PayRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svcs.Checkout.Pay(c.Request.Context(), guestVenue(c), c.Param("sessionId"), checkout.PayInput{
			TipCents:       req.TipCents,
			IdempotencyKey: idempotencyKey(c),
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Stripe webhook
// @Param    Stripe-Signature  header  string  true  "signature"
// @Success  200  {object}  WebhookResponse
// @Failure  400  {object}  ErrorResponse "bad signature"
// @Router   /webhooks/stripe [post]
func handleStripeWebhook(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
		if err != nil {
			badRequest(c, "unreadable body")
			return
		}
		res, err := svcs.Checkout.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			respondErr(c, err)
			return
		}
		resp := WebhookResponse{Received: true}
		if res != nil {
			resp.Duplicate = res.Duplicate
			resp.Underpaid = res.Underpaid
		}
		c.JSON(http.StatusOK, resp)
	}
}

// bindOptionalJSON binds the body into v and accepts an empty body.
func bindOptionalJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
