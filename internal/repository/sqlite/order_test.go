package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/repository"
)

func TestCreateOrder_DefaultsToPending(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "buyer@example.com")
	theme := createTestTheme(t, db, "Modern Portfolio", "Portfolio", "49.99", 0, 0)

	order := createTestOrder(t, db, user.ID, theme.ID, "49.99", "")
	if order.Status != model.OrderPending {
		t.Errorf("Status = %q, want PENDING", order.Status)
	}

	found, err := db.GetOrderByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID() error = %v", err)
	}
	if !found.Price.Equal(decimal.RequireFromString("49.99")) {
		t.Errorf("Price = %s, want 49.99", found.Price)
	}
	if found.UserID != user.ID || found.ThemeID != theme.ID {
		t.Errorf("order references = (%s, %s), want (%s, %s)", found.UserID, found.ThemeID, user.ID, theme.ID)
	}
}

func TestCreateOrder_UnknownThemeFails(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "buyer@example.com")

	order := &model.Order{UserID: user.ID, ThemeID: "missing", Price: decimal.NewFromInt(1)}
	if err := db.CreateOrder(context.Background(), order); err == nil {
		t.Fatal("CreateOrder() should fail the theme foreign key")
	}
}

func TestGetOrderByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetOrderByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetOrderByID() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "buyer@example.com")
	theme := createTestTheme(t, db, "Modern Portfolio", "Portfolio", "49.99", 0, 0)
	order := createTestOrder(t, db, user.ID, theme.ID, "49.99", model.OrderPending)

	if err := db.UpdateOrderStatus(ctx, order.ID, model.OrderCompleted); err != nil {
		t.Fatalf("UpdateOrderStatus() error = %v", err)
	}

	found, err := db.GetOrderByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID() error = %v", err)
	}
	if found.Status != model.OrderCompleted {
		t.Errorf("Status = %q, want COMPLETED", found.Status)
	}
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateOrderStatus(context.Background(), "missing", model.OrderCancelled)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateOrderStatus() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateOrderStatus_RejectsUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "buyer@example.com")
	theme := createTestTheme(t, db, "Modern Portfolio", "Portfolio", "49.99", 0, 0)
	order := createTestOrder(t, db, user.ID, theme.ID, "49.99", model.OrderPending)

	if err := db.UpdateOrderStatus(context.Background(), order.ID, "REFUNDED"); err == nil {
		t.Fatal("UpdateOrderStatus() should fail the status CHECK constraint")
	}
}

func TestListOrdersByUser_OnlyOwnNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	theme := createTestTheme(t, db, "Creative Blog", "Blog", "44.99", 0, 0)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		o := &model.Order{
			UserID:    alice.ID,
			ThemeID:   theme.ID,
			Price:     theme.Price,
			Status:    model.OrderCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.CreateOrder(ctx, o); err != nil {
			t.Fatalf("CreateOrder() error = %v", err)
		}
	}
	createTestOrder(t, db, bob.ID, theme.ID, "44.99", model.OrderCompleted)

	orders, err := db.ListOrdersByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListOrdersByUser() error = %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("ListOrdersByUser() returned %d orders, want 3", len(orders))
	}
	for i, o := range orders {
		if o.UserID != alice.ID {
			t.Errorf("order %d belongs to %s, want %s", i, o.UserID, alice.ID)
		}
		if o.Theme.Name != "Creative Blog" {
			t.Errorf("order %d theme name = %q, want Creative Blog", i, o.Theme.Name)
		}
		if i > 0 && o.CreatedAt.After(orders[i-1].CreatedAt) {
			t.Errorf("orders not newest first at index %d", i)
		}
	}
}

func TestListOrdersByUser_Empty(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "nobody@example.com")

	orders, err := db.ListOrdersByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListOrdersByUser() error = %v", err)
	}
	if orders == nil || len(orders) != 0 {
		t.Errorf("ListOrdersByUser() = %v, want empty non-nil slice", orders)
	}
}

func TestListOrders_Pagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "buyer@example.com")
	theme := createTestTheme(t, db, "Business Elite", "Corporate", "59.99", 0, 0)
	for i := 0; i < 15; i++ {
		createTestOrder(t, db, user.ID, theme.ID, "59.99", model.OrderCompleted)
	}

	tests := []struct {
		name   string
		offset int
		want   int
	}{
		{"first page", 0, 10},
		{"second page", 10, 5},
		{"past the end", 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, total, err := db.ListOrders(ctx, repository.OrderQuery{Limit: 10, Offset: tt.offset})
			if err != nil {
				t.Fatalf("ListOrders() error = %v", err)
			}
			if total != 15 {
				t.Errorf("total = %d, want 15", total)
			}
			if len(orders) != tt.want {
				t.Errorf("len(orders) = %d, want %d", len(orders), tt.want)
			}
		})
	}
}

func TestListOrders_StatusFilterAndJoins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "buyer@example.com")
	theme := createTestTheme(t, db, "Restaurant Deluxe", "Restaurant", "69.99", 0, 0)
	createTestOrder(t, db, user.ID, theme.ID, "69.99", model.OrderCompleted)
	createTestOrder(t, db, user.ID, theme.ID, "69.99", model.OrderCancelled)
	createTestOrder(t, db, user.ID, theme.ID, "69.99", model.OrderCancelled)

	orders, total, err := db.ListOrders(ctx, repository.OrderQuery{Status: model.OrderCancelled, Limit: 10})
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Fatalf("ListOrders() = %d orders, total %d, want 2 and 2", len(orders), total)
	}
	for _, o := range orders {
		if o.Status != model.OrderCancelled {
			t.Errorf("Status = %q, want CANCELLED", o.Status)
		}
		if o.User.Email != "buyer@example.com" {
			t.Errorf("User.Email = %q, want buyer@example.com", o.User.Email)
		}
		if o.Theme.Name != "Restaurant Deluxe" {
			t.Errorf("Theme.Name = %q, want Restaurant Deluxe", o.Theme.Name)
		}
	}
}

func TestGetAdminOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "buyer@example.com")
	theme := createTestTheme(t, db, "E-commerce Pro", "E-commerce", "79.99", 0, 0)
	order := createTestOrder(t, db, user.ID, theme.ID, "79.99", model.OrderPending)

	found, err := db.GetAdminOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetAdminOrder() error = %v", err)
	}
	if found.User.Name != user.Name || found.Theme.Name != "E-commerce Pro" {
		t.Errorf("GetAdminOrder() = %+v, want joined buyer and theme", found)
	}

	_, err = db.GetAdminOrder(ctx, "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetAdminOrder(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser_CascadesOrders(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "gone@example.com")
	theme := createTestTheme(t, db, "Creative Blog", "Blog", "44.99", 0, 0)
	order := createTestOrder(t, db, user.ID, theme.ID, "44.99", model.OrderCompleted)

	if _, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, user.ID); err != nil {
		t.Fatalf("deleting user: %v", err)
	}

	_, err := db.GetOrderByID(ctx, order.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("order should be removed with its user, got err = %v", err)
	}
}
