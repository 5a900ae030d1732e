package apitest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vendora/storefront-go/domain"
)

// resourceDef describes one CRUD resource family.
type resourceDef struct {
	base     string // API prefix, e.g. "/event"
	plural   string
	singular string
	public   bool // list/get readable without a token
}

var resourceDefs = []resourceDef{
	{base: "/event", plural: "events", singular: "event", public: true},
	{base: "/product", plural: "products", singular: "product", public: true},
	{base: "/shop", plural: "shops", singular: "shop", public: true},
	{base: "/order", plural: "orders", singular: "order"},
	{base: "/service", plural: "services", singular: "service", public: true},
	{base: "/venue", plural: "venues", singular: "venue", public: true},
	{base: "/coupon", plural: "coupons", singular: "coupon"},
	{base: "/notification", plural: "notifications", singular: "notification"},
	{base: "/conversation", plural: "conversations", singular: "conversation"},
}

// collection is an in-memory, insertion-ordered resource table.
type collection struct {
	items []map[string]any
}

// Seed inserts an item into a resource collection (base like "/event") and
// returns its assigned ID.
func (s *Server) Seed(base string, item map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collections[base]
	if col == nil {
		col = &collection{}
		s.collections[base] = col
	}

	clone := make(map[string]any, len(item)+1)
	for k, v := range item {
		clone[k] = v
	}
	id, _ := clone["id"].(string)
	if id == "" {
		id = uuid.NewString()
		clone["id"] = id
	}
	col.items = append(col.items, clone)
	return id
}

// Count reports the number of items currently in a collection.
func (s *Server) Count(base string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col := s.collections[base]; col != nil {
		return len(col.items)
	}
	return 0
}

// listResponse mirrors the backend's paginated list envelope.
type listResponse struct {
	Data       []map[string]any `json:"data"`
	Pagination domain.Page      `json:"pagination"`
}

type itemResponse struct {
	Data map[string]any `json:"data"`
}

func (s *Server) registerResourceRoutes(e *echo.Echo) {
	for _, def := range resourceDefs {
		d := def
		e.GET(d.base+"/get-all-"+d.plural, func(c echo.Context) error { return s.handleList(c, d) })
		e.GET(d.base+"/get-"+d.singular+"/:id", func(c echo.Context) error { return s.handleGet(c, d) })
		e.POST(d.base+"/create-"+d.singular, func(c echo.Context) error { return s.handleCreate(c, d) })
		e.PUT(d.base+"/update-"+d.singular+"/:id", func(c echo.Context) error { return s.handleUpdate(c, d) })
		e.DELETE(d.base+"/delete-"+d.singular+"/:id", func(c echo.Context) error { return s.handleDelete(c, d) })
	}

	// Endpoints behind the stores' bespoke operations.
	e.PUT("/order/refund-order/:id", s.handleRefund)
	e.PUT("/notification/mark-read/:id", s.handleMarkRead)
	e.PUT("/notification/mark-all-read", s.handleMarkAllRead)
	e.POST("/conversation/send-message/:id", s.handleSendMessage)
	e.GET("/venue/check-availability/:id", s.handleAvailability)
	e.GET("/analytics/get-report/:owner", s.handleReport)
	e.POST("/coupon/apply-coupon", s.handleApplyCoupon)
}

func (s *Server) handleList(c echo.Context, d resourceDef) error {
	if !d.public {
		if _, err := s.authenticate(c); err != nil {
			return err
		}
	}

	// test_delay_ms lets tests order the resolution of concurrent fetches.
	if ms, err := strconv.Atoi(c.QueryParam("test_delay_ms")); err == nil && ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	// Every query parameter outside the pagination set is an equality filter
	// against item fields.
	filters := map[string]string{}
	for key, values := range c.QueryParams() {
		switch key {
		case "page", "limit", "sort_by", "order", "test_delay_ms":
			continue
		}
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}

	s.mu.Lock()
	var matched []map[string]any
	if col := s.collections[d.base]; col != nil {
		for _, item := range col.items {
			if matchesFilters(item, filters) {
				matched = append(matched, item)
			}
		}
	}
	s.mu.Unlock()

	total := int64(len(matched))
	start := (page - 1) * limit
	end := start + limit
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	return c.JSON(http.StatusOK, listResponse{
		Data:       matched[start:end],
		Pagination: domain.PageFor(page, limit, total),
	})
}

func (s *Server) handleGet(c echo.Context, d resourceDef) error {
	if !d.public {
		if _, err := s.authenticate(c); err != nil {
			return err
		}
	}

	item := s.find(d.base, c.Param("id"))
	if item == nil {
		return fail(c, http.StatusNotFound, d.singular+" not found")
	}
	return c.JSON(http.StatusOK, itemResponse{Data: item})
}

func (s *Server) handleCreate(c echo.Context, d resourceDef) error {
	if _, err := s.authenticate(c); err != nil {
		return err
	}

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	id := s.Seed(d.base, body)

	return c.JSON(http.StatusCreated, itemResponse{Data: s.find(d.base, id)})
}

func (s *Server) handleUpdate(c echo.Context, d resourceDef) error {
	if _, err := s.authenticate(c); err != nil {
		return err
	}

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	id := c.Param("id")
	s.mu.Lock()
	var updated map[string]any
	if col := s.collections[d.base]; col != nil {
		for _, item := range col.items {
			if item["id"] == id {
				for k, v := range body {
					item[k] = v
				}
				updated = item
				break
			}
		}
	}
	s.mu.Unlock()

	if updated == nil {
		return fail(c, http.StatusNotFound, d.singular+" not found")
	}
	return c.JSON(http.StatusOK, itemResponse{Data: updated})
}

func (s *Server) handleDelete(c echo.Context, d resourceDef) error {
	if _, err := s.authenticate(c); err != nil {
		return err
	}

	id := c.Param("id")
	s.mu.Lock()
	removed := false
	if col := s.collections[d.base]; col != nil {
		kept := col.items[:0]
		for _, item := range col.items {
			if item["id"] == id {
				removed = true
				continue
			}
			kept = append(kept, item)
		}
		col.items = kept
	}
	s.mu.Unlock()

	if !removed {
		return fail(c, http.StatusNotFound, d.singular+" not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": d.singular + " deleted"})
}

func (s *Server) handleRefund(c echo.Context) error {
	if _, err := s.authenticate(c); err != nil {
		return err
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	id := c.Param("id")
	s.mu.Lock()
	var updated map[string]any
	if col := s.collections["/order"]; col != nil {
		for _, item := range col.items {
			if item["id"] == id {
				item["status"] = string(domain.OrderRefundRequest)
				item["refund_reason"] = body.Reason
				updated = item
				break
			}
		}
	}
	s.mu.Unlock()

	if updated == nil {
		return fail(c, http.StatusNotFound, "order not found")
	}
	return c.JSON(http.StatusOK, itemResponse{Data: updated})
}

func (s *Server) handleMarkRead(c echo.Context) error {
	if _, err := s.authenticate(c); err != nil {
		return err
	}

	id := c.Param("id")
	s.mu.Lock()
	found := false
	if col := s.collections["/notification"]; col != nil {
		for _, item := range col.items {
			if item["id"] == id {
				item["read"] = true
				found = true
				break
			}
		}
	}
	s.mu.Unlock()

	if !found {
		return fail(c, http.StatusNotFound, "notification not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "marked read"})
}

func (s *Server) handleMarkAllRead(c echo.Context) error {
	if _, err := s.authenticate(c); err != nil {
		return err
	}

	s.mu.Lock()
	if col := s.collections["/notification"]; col != nil {
		for _, item := range col.items {
			item["read"] = true
		}
	}
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]string{"message": "all marked read"})
}

func (s *Server) handleSendMessage(c echo.Context) error {
	a, err := s.authenticate(c)
	if err != nil {
		return err
	}

	var body struct {
		Text     string `json:"text"`
		ImageURL string `json:"image_url"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	convID := c.Param("id")
	if s.find("/conversation", convID) == nil {
		return fail(c, http.StatusNotFound, "conversation not found")
	}

	msg := map[string]any{
		"id":              uuid.NewString(),
		"conversation_id": convID,
		"sender_id":       a.profile.ID,
		"text":            body.Text,
		"image_url":       body.ImageURL,
	}
	return c.JSON(http.StatusCreated, itemResponse{Data: msg})
}

func (s *Server) handleAvailability(c echo.Context) error {
	if _, err := s.authenticate(c); err != nil {
		return err
	}
	if c.QueryParam("date") == "" {
		return fail(c, http.StatusBadRequest, "date is required")
	}
	if s.find("/venue", c.Param("id")) == nil {
		return fail(c, http.StatusNotFound, "venue not found")
	}
	return c.JSON(http.StatusOK, map[string]bool{"available": true})
}

func (s *Server) handleReport(c echo.Context) error {
	if _, err := s.authenticate(c); err != nil {
		return err
	}

	owner := c.Param("owner")
	period := c.QueryParam("period")
	if period == "" {
		period = "week"
	}

	report := map[string]any{
		"id":            uuid.NewString(),
		"owner_id":      owner,
		"period":        period,
		"total_orders":  int64(s.Count("/order")),
		"total_revenue": 0.0,
	}
	return c.JSON(http.StatusOK, itemResponse{Data: report})
}

func (s *Server) handleApplyCoupon(c echo.Context) error {
	if _, err := s.authenticate(c); err != nil {
		return err
	}

	var body struct {
		Code      string  `json:"code"`
		CartTotal float64 `json:"cart_total"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	var discount float64
	found := false
	if col := s.collections["/coupon"]; col != nil {
		for _, item := range col.items {
			if item["name"] == body.Code {
				if pct, ok := item["value"].(float64); ok {
					discount = body.CartTotal * pct / 100
				}
				found = true
				break
			}
		}
	}
	s.mu.Unlock()

	if !found {
		return fail(c, http.StatusNotFound, "coupon not found")
	}
	return c.JSON(http.StatusOK, map[string]float64{"discount": discount})
}

// matchesFilters applies string-equality filters against item fields.
func matchesFilters(item map[string]any, filters map[string]string) bool {
	for key, want := range filters {
		got, ok := item[key]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

func (s *Server) find(base, id string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col := s.collections[base]; col != nil {
		for _, item := range col.items {
			if item["id"] == id {
				return item
			}
		}
	}
	return nil
}
