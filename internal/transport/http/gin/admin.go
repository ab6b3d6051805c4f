package httpgin

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/notify"
	"github.com/kirinyoku/tableorder/internal/service"
	"github.com/kirinyoku/tableorder/internal/service/menu"
	"github.com/kirinyoku/tableorder/internal/service/orders"
	"github.com/kirinyoku/tableorder/internal/service/venue"
)

const streamPingInterval = 25 * time.Second

// --- venue ---

// @Summary  Venue of the session
// @Success  200  {object}  domain.Venue
// @Failure  401  {object}  ErrorResponse
// @Router   /admin/venue [get]
func handleGetVenue(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, venueID := staffSession(c)
		v, err := svcs.Venue.Get(c.Request.Context(), venueID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// @Summary  Update venue settings (OWNER)
// @Param    req body  UpdateVenueRequest true "payload"
// @Success  200  {object}  domain.Venue
// @Failure  400  {object}  ErrorResponse
// @Failure  403  {object}  ErrorResponse
// @Router   /admin/venue [patch]
func handleUpdateVenue(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateVenueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		_, venueID := staffSession(c)
		v, err := svcs.Venue.Update(c.Request.Context(), venueID, venue.Settings{
			Name:       req.Name,
			Currency:   req.Currency,
			ThemeColor: req.ThemeColor,
			LogoURL:    req.LogoURL,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// --- menu ---

// @Summary  List menu categories
// @Success  200  {array}  domain.MenuCategory
// @Router   /admin/menu/categories [get]
func handleListCategories(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, venueID := staffSession(c)
		cats, err := svcs.Menu.Categories(c.Request.Context(), venueID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cats)
	}
}

// @Summary  Create menu category
// @Param    req body  CategoryRequest true "payload"
// @Success  201  {object}  domain.MenuCategory
// @Failure  409  {object}  ErrorResponse
// @Router   /admin/menu/categories [post]
func handleCreateCategory(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		_, venueID := staffSession(c)
		cat, err := svcs.Menu.CreateCategory(c.Request.Context(), venueID, req.Name)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

// @Summary  Rename menu category
// @Param    id  path  string  true  "Category ID"
// @Param    req body  CategoryRequest true "payload"
// @Success  200  {object}  domain.MenuCategory
// @Router   /admin/menu/categories/{id} [patch]
func handleRenameCategory(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		_, venueID := staffSession(c)
		cat, err := svcs.Menu.RenameCategory(c.Request.Context(), venueID, id, req.Name)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

// @Summary  Delete an empty menu category
// @Param    id  path  string  true  "Category ID"
// @Success  204
// @Failure  409  {object}  ErrorResponse "category still has items"
// @Router   /admin/menu/categories/{id} [delete]
func handleDeleteCategory(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		_, venueID := staffSession(c)
		respondErr(c, svcs.Menu.DeleteCategory(c.Request.Context(), venueID, id))
	}
}

// @Summary  Reorder menu categories
// @Param    req body  ReorderRequest true "payload"
// @Success  204
// @Router   /admin/menu/categories/order [put]
func handleReorderCategories(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReorderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		ids, ok := parseUUIDs(c, req.IDs)
		if !ok {
			return
		}
		_, venueID := staffSession(c)
		respondErr(c, svcs.Menu.ReorderCategories(c.Request.Context(), venueID, ids))
	}
}

// @Summary  List menu items, available or not
// @Success  200  {array}  domain.MenuItem
// @Router   /admin/menu/items [get]
func handleListItems(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, venueID := staffSession(c)
		items, err := svcs.Menu.Items(c.Request.Context(), venueID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// @Summary  Create menu item
// @Description  The category is referenced by id or upserted by name.
// @Param    req body  CreateItemRequest true "payload"
// @Success  201  {object}  domain.MenuItem
// @Failure  400  {object}  ErrorResponse
// @Router   /admin/menu/items [post]
func handleCreateItem(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		var categoryID uuid.UUID
		if req.CategoryID != "" {
			id, err := uuid.Parse(req.CategoryID)
			if err != nil {
				badRequest(c, "invalid category_id")
				return
			}
			categoryID = id
		}
		_, venueID := staffSession(c)
		item, err := svcs.Menu.CreateItem(c.Request.Context(), venueID, menu.ItemInput{
			Category:    req.Category,
			CategoryID:  categoryID,
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			TaxRateBP:   req.TaxRateBP,
			Allergens:   req.Allergens,
			Available:   req.Available,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// @Summary  Update menu item
// @Param    id  path  string  true  "Item ID"
// @Param    req body  UpdateItemRequest true "payload"
// @Success  200  {object}  domain.MenuItem
// @Router   /admin/menu/items/{id} [patch]
func handleUpdateItem(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		patch := menu.ItemPatch{
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			TaxRateBP:   req.TaxRateBP,
			Allergens:   req.Allergens,
			Available:   req.Available,
		}
		if req.CategoryID != nil {
			cid, err := uuid.Parse(*req.CategoryID)
			if err != nil {
				badRequest(c, "invalid category_id")
				return
			}
			patch.CategoryID = &cid
		}
		_, venueID := staffSession(c)
		item, err := svcs.Menu.UpdateItem(c.Request.Context(), venueID, id, patch)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// @Summary  Toggle menu item availability
// @Param    id  path  string  true  "Item ID"
// @Param    req body  AvailabilityRequest true "payload"
// @Success  200  {object}  domain.MenuItem
// @Router   /admin/menu/items/{id}/availability [put]
func handleSetAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req AvailabilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		_, venueID := staffSession(c)
		item, err := svcs.Menu.SetAvailability(c.Request.Context(), venueID, id, *req.Available)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// @Summary  Delete menu item
// @Param    id  path  string  true  "Item ID"
// @Success  204
// @Router   /admin/menu/items/{id} [delete]
func handleDeleteItem(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		_, venueID := staffSession(c)
		respondErr(c, svcs.Menu.DeleteItem(c.Request.Context(), venueID, id))
	}
}

// --- areas & tables ---

// @Summary  List areas
// @Success  200  {array}  domain.Area
// @Router   /admin/areas [get]
func handleListAreas(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, venueID := staffSession(c)
		areas, err := svcs.Tables.Areas(c.Request.Context(), venueID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, areas)
	}
}

// @Summary  Create area
// @Param    req body  AreaRequest true "payload"
// @Success  201  {object}  domain.Area
// @Router   /admin/areas [post]
func handleCreateArea(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AreaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		_, venueID := staffSession(c)
		a, err := svcs.Tables.CreateArea(c.Request.Context(), venueID, req.Name)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

// @Summary  Delete area
// @Param    id  path  string  true  "Area ID"
// @Success  204
// @Router   /admin/areas/{id} [delete]
func handleDeleteArea(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		_, venueID := staffSession(c)
		respondErr(c, svcs.Tables.DeleteArea(c.Request.Context(), venueID, id))
	}
}

// @Summary  List tables
// @Param    area_id  query  string  false  "only tables of this area"
// @Success  200  {array}  domain.Table
// @Router   /admin/tables [get]
func handleListTables(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var areaID *uuid.UUID
		if raw := c.Query("area_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				badRequest(c, "invalid area_id")
				return
			}
			areaID = &id
		}
		_, venueID := staffSession(c)
		list, err := svcs.Tables.Tables(c.Request.Context(), venueID, areaID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Create table with a fresh QR token
// @Param    req body  CreateTableRequest true "payload"
// @Success  201  {object}  domain.Table
// @Failure  404  {object}  ErrorResponse "area not found"
// @Router   /admin/tables [post]
func handleCreateTable(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTableRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		var areaID *uuid.UUID
		if req.AreaID != nil {
			id, err := uuid.Parse(*req.AreaID)
			if err != nil {
				badRequest(c, "invalid area_id")
				return
			}
			areaID = &id
		}
		_, venueID := staffSession(c)
		t, err := svcs.Tables.CreateTable(c.Request.Context(), venueID, areaID, req.Name)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

// @Summary  Delete table
// @Param    id  path  string  true  "Table ID"
// @Success  204
// @Router   /admin/tables/{id} [delete]
func handleDeleteTable(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		_, venueID := staffSession(c)
		respondErr(c, svcs.Tables.DeleteTable(c.Request.Context(), venueID, id))
	}
}

// @Summary  Rotate the QR token of a table
// @Param    id  path  string  true  "Table ID"
// @Success  200  {object}  domain.Table
// @Router   /admin/tables/{id}/rotate-token [post]
func handleRotateToken(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		_, venueID := staffSession(c)
		t, err := svcs.Tables.RotateToken(c.Request.Context(), venueID, id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// @Summary  Printable QR code of a table
// @Param    id  path  string  true  "Table ID"
// @Produce  png
// @Success  200  {file}  binary
// @Router   /admin/tables/{id}/qr.png [get]
func handleTableQR(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		_, venueID := staffSession(c)
		png, url, err := svcs.Tables.QRCode(c.Request.Context(), venueID, id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("X-Table-URL", url)
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "image/png", png)
	}
}

// --- orders ---

// @Summary  List orders, newest first
// @Param    status     query  string  false  "order status"
// @Param    table_id   query  string  false  "table"
// @Param    since      query  string  false  "RFC 3339 or YYYY-MM-DD"
// @Param    page       query  int     false  "page, from 1"
// @Param    page_size  query  int     false  "page size"
// @Success  200  {object}  orders.Page
// @Router   /admin/orders [get]
func handleListOrders(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f domain.OrderFilter
		if raw := c.Query("status"); raw != "" {
			f.Status = domain.OrderStatus(strings.ToUpper(raw))
		}
		if raw := c.Query("table_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				badRequest(c, "invalid table_id")
				return
			}
			f.TableID = id
		}
		since, err := parseSince(c.Query("since"))
		if err != nil {
			badRequest(c, "invalid since")
			return
		}
		f.Since = since

		_, venueID := staffSession(c)
		page, err := svcs.Orders.ListOrders(
			c.Request.Context(),
			venueID,
			f,
			parseIntDefault(c.Query("page"), 1),
			parseIntDefault(c.Query("page_size"), 0),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// @Summary  Order counts and revenue
// @Param    since  query  string  false  "RFC 3339 or YYYY-MM-DD"
// @Success  200  {object}  domain.OrderSummary
// @Router   /admin/orders/summary [get]
func handleOrderSummary(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		since, err := parseSince(c.Query("since"))
		if err != nil {
			badRequest(c, "invalid since")
			return
		}
		_, venueID := staffSession(c)
		sum, err := svcs.Orders.Summary(c.Request.Context(), venueID, since)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}

// @Summary  Get order with items
// @Param    id  path  string  true  "Order ID (uuid)"
// @Success  200  {object}  domain.OrderWithItems
// @Failure  404  {object}  ErrorResponse
// @Router   /admin/orders/{id} [get]
func handleAdminGetOrder(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		_, venueID := staffSession(c)
		o, err := svcs.Orders.GetOrder(c.Request.Context(), venueID, id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Change order status (staff)
// @Param    id  path  string  true  "Order ID (uuid)"
// @Param    req body  UpdateStatusRequest true "payload"
// @Success  200  {object}  domain.Order
// @Failure  409  {object}  ErrorResponse
// @Router   /admin/orders/{id}/status [patch]
func handleAdminStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		to := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		_, venueID := staffSession(c)
		o, err := svcs.Orders.UpdateStatus(c.Request.Context(), venueID, id, to, orders.Actor{Staff: true})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Live order events of the session venue (SSE)
// @Produce  text/event-stream
// @Success  200
// @Router   /admin/orders/stream [get]
func handleOrderStream(hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "order stream disabled"})
			return
		}
		_, venueID := staffSession(c)

		events, cancel := hub.Subscribe(venueID)
		defer cancel()

		ping := time.NewTicker(streamPingInterval)
		defer ping.Stop()

		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")

		ctx := c.Request.Context()
		c.Stream(func(io.Writer) bool {
			select {
			case <-ctx.Done():
				return false
			case ev, ok := <-events:
				if !ok {
					return false
				}
				c.SSEvent(ev.Type, ev)
				return true
			case <-ping.C:
				c.SSEvent("ping", gin.H{"ts_unix": time.Now().Unix()})
				return true
			}
		})
	}
}

func parseUUIDs(c *gin.Context, raw []string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			badRequest(c, "invalid id "+s)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
