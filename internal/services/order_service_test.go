package services_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"fashionstore/internal/domain"
	"fashionstore/internal/repos"
	"fashionstore/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// the in-memory db only exists on one connection
	db.SetMaxOpenConns(1)
	schema := `
	PRAGMA foreign_keys = ON;
	CREATE TABLE products(id TEXT PRIMARY KEY, name TEXT NOT NULL, description TEXT,
	  price NUMERIC NOT NULL CHECK (price >= 0), image_url TEXT, category TEXT,
	  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0), size TEXT, color TEXT, created_at TEXT);
	CREATE TABLE orders(id TEXT PRIMARY KEY, user_id TEXT NOT NULL, total NUMERIC NOT NULL,
	  status TEXT NOT NULL DEFAULT 'pending', shipping_address TEXT NOT NULL,
	  payment_method TEXT NOT NULL, created_at TEXT NOT NULL);
	CREATE TABLE order_items(id TEXT PRIMARY KEY,
	  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	  product_id TEXT NOT NULL REFERENCES products(id),
	  quantity INTEGER NOT NULL CHECK (quantity >= 1), price NUMERIC NOT NULL);

	INSERT INTO products(id,name,description,price,image_url,category,stock,size,color,created_at)
	  VALUES ('tee-001','Classic White T-Shirt','Cotton tee',10.00,'','T-Shirts',5,'M','White','2024-01-01T00:00:00Z');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func newOrderService(db *sqlx.DB) (*services.OrderService, *repos.ProductRepo, *repos.OrderRepo) {
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	return services.NewOrderService(prodRepo, orderRepo), prodRepo, orderRepo
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
		t.Fatal(err)
	}
	return n
}

func line(pid string, qty int, price string) services.CartLine {
	return services.CartLine{ProductID: pid, Quantity: qty, Price: decimal.RequireFromString(price)}
}

func TestPlace_DecrementsStockAndComputesTotal(t *testing.T) {
	db := memdb(t)
	svc, prodRepo, orderRepo := newOrderService(db)

	oid, total, err := svc.Place("u-1", []services.CartLine{line("tee-001", 3, "10.00")}, "1 Main St", "visa")
	if err != nil {
		t.Fatal(err)
	}
	if oid == "" {
		t.Fatal("no order id")
	}
	if !total.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("want total 30.00, got %s", total)
	}

	qty, err := prodRepo.Stock("tee-001")
	if err != nil {
		t.Fatal(err)
	}
	if qty != 2 {
		t.Fatalf("want stock=2, got %d", qty)
	}

	o, items, err := orderRepo.Get(oid)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusPending {
		t.Fatalf("want status pending, got %s", o.Status)
	}
	if !o.Total.Equal(total) {
		t.Fatalf("persisted total %s != returned total %s", o.Total, total)
	}
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("bad items: %+v", items)
	}
}

func TestPlace_InsufficientStockLeavesNothingBehind(t *testing.T) {
	db := memdb(t)
	svc, prodRepo, _ := newOrderService(db)

	// drain stock from 5 down to 2
	if _, _, err := svc.Place("u-1", []services.CartLine{line("tee-001", 3, "10.00")}, "1 Main St", "visa"); err != nil {
		t.Fatal(err)
	}

	_, _, err := svc.Place("u-1", []services.CartLine{line("tee-001", 3, "10.00")}, "1 Main St", "visa")
	var ise *domain.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if ise.ProductID != "tee-001" || ise.Shortfall() != 1 {
		t.Fatalf("want tee-001 short 1, got %+v", ise)
	}

	if qty, _ := prodRepo.Stock("tee-001"); qty != 2 {
		t.Fatalf("stock changed on failed order: %d", qty)
	}
	if n := countRows(t, db, "orders"); n != 1 {
		t.Fatalf("want 1 order, got %d", n)
	}
	if n := countRows(t, db, "order_items"); n != 1 {
		t.Fatalf("want 1 order item, got %d", n)
	}
}

func TestPlace_EmptyCartRejected(t *testing.T) {
	db := memdb(t)
	svc, _, _ := newOrderService(db)

	_, _, err := svc.Place("u-1", nil, "1 Main St", "visa")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if n := countRows(t, db, "orders"); n != 0 {
		t.Fatalf("empty cart persisted an order")
	}
}

func TestPlace_BadLinesRejected(t *testing.T) {
	db := memdb(t)
	svc, _, _ := newOrderService(db)

	cases := []struct {
		name  string
		lines []services.CartLine
		addr  string
		pay   string
	}{
		{"zero quantity", []services.CartLine{line("tee-001", 0, "10.00")}, "1 Main St", "visa"},
		{"negative price", []services.CartLine{line("tee-001", 1, "-0.01")}, "1 Main St", "visa"},
		{"missing product id", []services.CartLine{line("", 1, "10.00")}, "1 Main St", "visa"},
		{"missing address", []services.CartLine{line("tee-001", 1, "10.00")}, "", "visa"},
		{"missing payment", []services.CartLine{line("tee-001", 1, "10.00")}, "1 Main St", ""},
	}
	for _, tc := range cases {
		_, _, err := svc.Place("u-1", tc.lines, tc.addr, tc.pay)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: want ValidationError, got %v", tc.name, err)
		}
	}
	if n := countRows(t, db, "orders"); n != 0 {
		t.Fatal("invalid cart persisted an order")
	}
}

func TestPlace_UnknownProductAbortsWholeCart(t *testing.T) {
	db := memdb(t)
	svc, prodRepo, _ := newOrderService(db)

	_, _, err := svc.Place("u-1", []services.CartLine{
		line("tee-001", 2, "10.00"),
		line("ghost-999", 1, "5.00"),
	}, "1 Main St", "visa")

	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
	if nf.ID != "ghost-999" {
		t.Fatalf("error names wrong product: %s", nf.ID)
	}

	// the valid line must not have left a partial order or stock change
	if qty, _ := prodRepo.Stock("tee-001"); qty != 5 {
		t.Fatalf("stock changed on aborted order: %d", qty)
	}
	if n := countRows(t, db, "orders"); n != 0 {
		t.Fatal("partial order persisted")
	}
	if n := countRows(t, db, "order_items"); n != 0 {
		t.Fatal("partial order items persisted")
	}
}

func TestPlace_SnapshotPriceWinsOverCatalogPrice(t *testing.T) {
	db := memdb(t)
	svc, _, orderRepo := newOrderService(db)

	// caller's unit price differs from the catalog's 10.00
	oid, total, err := svc.Place("u-1", []services.CartLine{line("tee-001", 2, "7.50")}, "1 Main St", "visa")
	if err != nil {
		t.Fatal(err)
	}
	if !total.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("want total 15.00 from snapshot price, got %s", total)
	}
	_, items, err := orderRepo.Get(oid)
	if err != nil {
		t.Fatal(err)
	}
	if !items[0].Price.Equal(decimal.RequireFromString("7.50")) {
		t.Fatalf("item price not snapshotted: %s", items[0].Price)
	}
}

func TestPlace_RepeatedProductLinesShareStock(t *testing.T) {
	db := memdb(t)
	svc, prodRepo, _ := newOrderService(db)

	// two lines for the same product: combined demand 4 against stock 5
	_, total, err := svc.Place("u-1", []services.CartLine{
		line("tee-001", 3, "10.00"),
		line("tee-001", 1, "10.00"),
	}, "1 Main St", "visa")
	if err != nil {
		t.Fatal(err)
	}
	if !total.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("want total 40.00, got %s", total)
	}
	if qty, _ := prodRepo.Stock("tee-001"); qty != 1 {
		t.Fatalf("want stock=1 after combined demand, got %d", qty)
	}
}

func TestPlace_ConcurrentOrdersCannotOversell(t *testing.T) {
	db := memdb(t)
	svc, prodRepo, _ := newOrderService(db)

	// stock=5, two concurrent orders of 3 each: exactly one may win
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.Place("u-1", []services.CartLine{line("tee-001", 3, "10.00")}, "1 Main St", "visa")
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		var ise *domain.InsufficientStockError
		if errors.As(err, &ise) {
			insufficient++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("want exactly one success and one stock failure, got ok=%d insufficient=%d", ok, insufficient)
	}
	if qty, _ := prodRepo.Stock("tee-001"); qty != 2 {
		t.Fatalf("want stock=2, got %d", qty)
	}
	if n := countRows(t, db, "orders"); n != 1 {
		t.Fatalf("want 1 order, got %d", n)
	}
}

func TestPlace_ConcurrentOrdersCannotOversell_FileBacked(t *testing.T) {
	// a file-backed database pools multiple connections, so the two
	// placements genuinely race on the write lock
	db, err := repos.OpenDB(filepath.Join(t.TempDir(), "orders.db"))
	if err != nil {
		t.Fatal(err)
	}
	db.MustExec(`UPDATE products SET stock = 5 WHERE id = 'tee-classic-white'`)
	svc, prodRepo, _ := newOrderService(db)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.Place("u-1", []services.CartLine{line("tee-classic-white", 3, "24.99")}, "1 Main St", "visa")
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		var ise *domain.InsufficientStockError
		if errors.As(err, &ise) {
			insufficient++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("want exactly one success and one stock failure, got ok=%d insufficient=%d", ok, insufficient)
	}
	if qty, _ := prodRepo.Stock("tee-classic-white"); qty != 2 {
		t.Fatalf("want stock=2, got %d", qty)
	}
}
