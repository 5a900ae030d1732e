package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/domain"
	"github.com/vendora/storefront-go/internal/apitest"
	"github.com/vendora/storefront-go/notify"
	"github.com/vendora/storefront-go/transport"
	"github.com/vendora/storefront-go/validate"
)

func newTestBackend(t *testing.T) (*apitest.Server, *transport.Client, *notify.Bus) {
	t.Helper()

	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	client := transport.New(transport.Config{BaseURL: srv.URL, Log: zerolog.Nop()})
	return srv, client, notify.NewBus()
}

func sellerToken(t *testing.T, srv *apitest.Server) string {
	t.Helper()
	srv.SeedAccount(domain.ActorSeller, "seller@example.com", "secret-1", "Shop One")
	return srv.IssueToken(domain.ActorSeller, "seller@example.com", time.Hour)
}

func seedEvents(srv *apitest.Server, n int, category string) {
	for i := 0; i < n; i++ {
		srv.Seed("/event", map[string]any{
			"name":     fmt.Sprintf("%s event %d", category, i),
			"status":   "running",
			"category": category,
			"shop_id":  "s1",
		})
	}
}

func waitToast(t *testing.T, ch <-chan notify.Notification) notify.Notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return notify.Notification{}
	}
}

func TestFetchListPaginates(t *testing.T) {
	srv, client, bus := newTestBackend(t)
	seedEvents(srv, 25, "music")

	events := NewEvents(client, bus, zerolog.Nop(), nil)

	items, page, err := events.FetchList(context.Background(), "", Query{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("FetchList: %v", err)
	}
	if len(items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(items))
	}
	want := domain.Page{Page: 1, Limit: 10, Total: 25, Pages: 3}
	if page != want {
		t.Fatalf("expected page %+v, got %+v", want, page)
	}

	items, page, err = events.FetchList(context.Background(), "", Query{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("FetchList page 3: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items on the last page, got %d", len(items))
	}
	if page.Page != 3 {
		t.Fatalf("expected page 3, got %d", page.Page)
	}

	snap := events.Snapshot()
	if len(snap.Items) != 5 || snap.Page.Page != 3 {
		t.Fatalf("cache not replaced by latest page: %d items, page %d", len(snap.Items), snap.Page.Page)
	}
}

func TestFetchListIdempotent(t *testing.T) {
	srv, client, bus := newTestBackend(t)
	seedEvents(srv, 12, "music")

	events := NewEvents(client, bus, zerolog.Nop(), nil)
	q := Query{Page: 1, Limit: 10}

	first, firstPage, err := events.FetchList(context.Background(), "", q)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, secondPage, err := events.FetchList(context.Background(), "", q)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if firstPage != secondPage {
		t.Fatalf("pagination changed between identical fetches: %+v vs %+v", firstPage, secondPage)
	}
	if len(first) != len(second) {
		t.Fatalf("item count changed between identical fetches: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("item %d changed between identical fetches", i)
		}
	}
}

func TestFetchListFilterChangeResetsPage(t *testing.T) {
	srv, client, bus := newTestBackend(t)
	seedEvents(srv, 25, "music")
	seedEvents(srv, 25, "art")

	events := NewEvents(client, bus, zerolog.Nop(), nil)

	if _, _, err := events.FetchList(context.Background(), "", Query{
		Page: 1, Limit: 10, Filters: map[string]string{"category": "music"},
	}); err != nil {
		t.Fatalf("initial fetch: %v", err)
	}

	_, page, err := events.FetchList(context.Background(), "", Query{
		Page: 3, Limit: 10, Filters: map[string]string{"category": "music"},
	})
	if err != nil {
		t.Fatalf("page 3 fetch: %v", err)
	}
	if page.Page != 3 {
		t.Fatalf("expected page 3 within an unchanged result set, got %d", page.Page)
	}

	// Same page requested, but the filter changed: the store must restart
	// from page 1.
	_, page, err = events.FetchList(context.Background(), "", Query{
		Page: 3, Limit: 10, Filters: map[string]string{"category": "art"},
	})
	if err != nil {
		t.Fatalf("filtered fetch: %v", err)
	}
	if page.Page != 1 {
		t.Fatalf("expected page reset to 1 after filter change, got %d", page.Page)
	}
}

func TestFetchListDiscardsStaleResponse(t *testing.T) {
	srv, client, bus := newTestBackend(t)
	seedEvents(srv, 3, "music")
	seedEvents(srv, 4, "art")

	events := NewEvents(client, bus, zerolog.Nop(), nil)

	slowDone := make(chan struct{})
	var slowItems []domain.Event
	go func() {
		defer close(slowDone)
		slowItems, _, _ = events.FetchList(context.Background(), "", Query{
			Limit:   10,
			Filters: map[string]string{"category": "music", "test_delay_ms": "400"},
		})
	}()

	// Let the slow fetch claim its sequence number before issuing the fast one.
	time.Sleep(100 * time.Millisecond)

	fast, _, err := events.FetchList(context.Background(), "", Query{
		Limit:   10,
		Filters: map[string]string{"category": "art"},
	})
	if err != nil {
		t.Fatalf("fast fetch: %v", err)
	}
	if len(fast) != 4 {
		t.Fatalf("expected 4 art events, got %d", len(fast))
	}

	<-slowDone
	if slowItems != nil {
		t.Fatalf("stale fetch should resolve empty, got %d items", len(slowItems))
	}

	snap := events.Snapshot()
	if len(snap.Items) != 4 {
		t.Fatalf("stale response overwrote the cache: %d items", len(snap.Items))
	}
	for _, it := range snap.Items {
		if it.Category != "art" {
			t.Fatalf("cache holds stale item %q", it.Name)
		}
	}
}

func TestLoadingFlagBracketsFetch(t *testing.T) {
	srv, client, bus := newTestBackend(t)
	seedEvents(srv, 2, "music")

	events := NewEvents(client, bus, zerolog.Nop(), nil)

	if events.Snapshot().Loading {
		t.Fatal("loading flag raised before any action")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = events.FetchList(context.Background(), "", Query{
			Filters: map[string]string{"test_delay_ms": "300"},
		})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !events.Snapshot().Loading {
		if time.Now().After(deadline) {
			t.Fatal("loading flag never raised during an in-flight fetch")
		}
		time.Sleep(5 * time.Millisecond)
	}

	<-done
	if events.Snapshot().Loading {
		t.Fatal("loading flag still raised after the fetch resolved")
	}
}

func TestCreateAppendsAndToasts(t *testing.T) {
	srv, client, bus := newTestBackend(t)
	token := sellerToken(t, srv)

	events := NewEvents(client, bus, zerolog.Nop(), nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	created, err := events.Create(context.Background(), token, CreateEventInput{
		Name:          "Vinyl pop-up",
		Description:   "Weekend sale",
		StartDate:     time.Now().Add(24 * time.Hour),
		FinishDate:    time.Now().Add(48 * time.Hour),
		DiscountPrice: 19.99,
		Stock:         40,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created event has no server-assigned ID")
	}

	snap := events.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].ID != created.ID {
		t.Fatalf("created event not appended to cache")
	}
	if snap.Page.Total != 1 {
		t.Fatalf("expected total 1 after create, got %d", snap.Page.Total)
	}

	toast := waitToast(t, ch)
	if toast.Kind != notify.KindSuccess || toast.Message != "event created" {
		t.Fatalf("unexpected toast %+v", toast)
	}
}

func TestCreateValidationShortCircuits(t *testing.T) {
	srv, client, bus := newTestBackend(t)
	token := sellerToken(t, srv)

	events := NewEvents(client, bus, zerolog.Nop(), nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	before := srv.Count("/event")

	// Missing discount price: blocked client-side before any network call.
	_, err := events.Create(context.Background(), token, CreateEventInput{
		Name:        "Broken event",
		Description: "no price",
		StartDate:   time.Now().Add(24 * time.Hour),
		FinishDate:  time.Now().Add(48 * time.Hour),
		Stock:       10,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := validate.Fields(err)
	if fields["discountprice"] == "" {
		t.Fatalf("expected a discount price field error, got %v", fields)
	}

	if got := srv.Count("/event"); got != before {
		t.Fatalf("validation failure reached the server: %d events", got)
	}

	snap := events.Snapshot()
	if snap.Loading {
		t.Fatal("loading flag raised for a blocked action")
	}
	if snap.Err != "" {
		t.Fatalf("store error set for a form-level failure: %q", snap.Err)
	}

	select {
	case n := <-ch:
		t.Fatalf("validation failure reached the side-channel: %+v", n)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUpdatePatchesCacheByID(t *testing.T) {
	srv, client, bus := newTestBackend(t)
	token := sellerToken(t, srv)

	events := NewEvents(client, bus, zerolog.Nop(), nil)

	created, err := events.Create(context.Background(), token, CreateEventInput{
		Name:          "Original name",
		Description:   "desc",
		StartDate:     time.Now().Add(24 * time.Hour),
		FinishDate:    time.Now().Add(48 * time.Hour),
		DiscountPrice: 10,
		Stock:         5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := events.Update(context.Background(), token, created.ID, CreateEventInput{
		Name:          "Renamed event",
		Description:   "desc",
		StartDate:     created.StartDate,
		FinishDate:    created.FinishDate,
		DiscountPrice: 10,
		Stock:         5,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Renamed event" {
		t.Fatalf("server did not apply the patch: %q", updated.Name)
	}

	snap := events.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].Name != "Renamed event" {
		t.Fatalf("cached item not patched in place: %+v", snap.Items)
	}
}

func TestDeleteRemovesFromCache(t *testing.T) {
	srv, client, bus := newTestBackend(t)
	token := sellerToken(t, srv)

	events := NewEvents(client, bus, zerolog.Nop(), nil)

	created, err := events.Create(context.Background(), token, CreateEventInput{
		Name:          "Doomed event",
		Description:   "desc",
		StartDate:     time.Now().Add(24 * time.Hour),
		FinishDate:    time.Now().Add(48 * time.Hour),
		DiscountPrice: 10,
		Stock:         5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := events.Delete(context.Background(), token, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	snap := events.Snapshot()
	if len(snap.Items) != 0 {
		t.Fatalf("deleted event still cached: %+v", snap.Items)
	}
	if snap.Page.Total != 0 {
		t.Fatalf("total not decremented, got %d", snap.Page.Total)
	}
	if srv.Count("/event") != 0 {
		t.Fatal("event survived server-side")
	}
}

func TestFetchFailureSetsErrAndToasts(t *testing.T) {
	_, client, bus := newTestBackend(t)

	orders := NewOrders(client, bus, zerolog.Nop(), nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	_, _, err := orders.FetchList(context.Background(), "", Query{})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	snap := orders.Snapshot()
	if snap.Err == "" {
		t.Fatal("store error not set on fetch failure")
	}

	toast := waitToast(t, ch)
	if toast.Kind != notify.KindError {
		t.Fatalf("expected an error toast, got %+v", toast)
	}
}

func TestUnauthorizedInvokesCallback(t *testing.T) {
	_, client, bus := newTestBackend(t)

	invalidated := false
	orders := NewOrders(client, bus, zerolog.Nop(), func() { invalidated = true })

	_, _, err := orders.FetchList(context.Background(), "not-a-token", Query{})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if !invalidated {
		t.Fatal("OnUnauthorized hook not invoked on a 401")
	}
}

func TestRefundPatchesCachedOrder(t *testing.T) {
	srv, client, bus := newTestBackend(t)
	srv.SeedAccount(domain.ActorUser, "user@example.com", "secret-1", "Jo")
	token := srv.IssueToken(domain.ActorUser, "user@example.com", time.Hour)

	id := srv.Seed("/order", map[string]any{
		"user_id":     "u1",
		"shop_id":     "s1",
		"total_price": 42.0,
		"status":      string(domain.OrderDelivered),
	})

	orders := NewOrders(client, bus, zerolog.Nop(), nil)
	if _, _, err := orders.FetchList(context.Background(), token, Query{}); err != nil {
		t.Fatalf("FetchList: %v", err)
	}

	order, err := orders.Refund(context.Background(), token, id, RefundInput{Reason: "arrived damaged"})
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if order.Status != domain.OrderRefundRequest {
		t.Fatalf("expected status %q, got %q", domain.OrderRefundRequest, order.Status)
	}

	snap := orders.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].Status != domain.OrderRefundRequest {
		t.Fatalf("cached order not patched: %+v", snap.Items)
	}

	// A reason below the minimum length never leaves the client.
	if _, err := orders.Refund(context.Background(), token, id, RefundInput{Reason: "no"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMarkReadUpdatesInboxQuietly(t *testing.T) {
	srv, client, bus := newTestBackend(t)
	srv.SeedAccount(domain.ActorUser, "user@example.com", "secret-1", "Jo")
	token := srv.IssueToken(domain.ActorUser, "user@example.com", time.Hour)

	first := srv.Seed("/notification", map[string]any{"title": "Order shipped", "read": false})
	srv.Seed("/notification", map[string]any{"title": "Coupon expiring", "read": false})

	inbox := NewNotifications(client, bus, zerolog.Nop(), nil)
	if _, _, err := inbox.FetchList(context.Background(), token, Query{}); err != nil {
		t.Fatalf("FetchList: %v", err)
	}
	if got := inbox.UnreadCount(); got != 2 {
		t.Fatalf("expected 2 unread, got %d", got)
	}

	ch, cancel := bus.Subscribe()
	defer cancel()

	if err := inbox.MarkRead(context.Background(), token, first); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if got := inbox.UnreadCount(); got != 1 {
		t.Fatalf("expected 1 unread after MarkRead, got %d", got)
	}

	if err := inbox.MarkAllRead(context.Background(), token); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if got := inbox.UnreadCount(); got != 0 {
		t.Fatalf("expected 0 unread after MarkAllRead, got %d", got)
	}

	// Inbox maintenance is not a form submission: no success toast.
	select {
	case n := <-ch:
		t.Fatalf("unexpected toast for inbox maintenance: %+v", n)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendMessageAppendsToThread(t *testing.T) {
	srv, client, bus := newTestBackend(t)
	srv.SeedAccount(domain.ActorUser, "user@example.com", "secret-1", "Jo")
	token := srv.IssueToken(domain.ActorUser, "user@example.com", time.Hour)

	convID := srv.Seed("/conversation", map[string]any{
		"group_title": "Jo & Shop One",
		"member_ids":  []string{"u1", "s1"},
	})

	convs := NewConversations(client, bus, zerolog.Nop(), nil)
	if _, _, err := convs.FetchList(context.Background(), token, Query{}); err != nil {
		t.Fatalf("FetchList: %v", err)
	}

	msg, err := convs.Send(context.Background(), token, convID, SendMessageInput{Text: "is this still in stock?"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.ConversationID != convID {
		t.Fatalf("message bound to wrong thread: %q", msg.ConversationID)
	}

	snap := convs.Snapshot()
	if len(snap.Items) != 1 || len(snap.Items[0].Messages) != 1 {
		t.Fatalf("message not appended to cached thread: %+v", snap.Items)
	}
	if snap.Items[0].LastMessage != "is this still in stock?" {
		t.Fatalf("last message preview not updated: %q", snap.Items[0].LastMessage)
	}
}
