// Package billing provides an embeddable retail point-of-sale billing
// engine for Go applications.
//
// Billing is designed as a library, not a service. Import it directly into
// your Go application. It provides:
//
//   - A product catalog with MRP/rate pricing and non-negative stock
//   - Customer registration with unique email addresses
//   - Bills built from line items with transactional totals
//   - Cash, card and UPI tender with all-or-nothing stock commitment
//   - Customer spend and product movement reports
//   - Post-purchase feedback collection
//   - Pluggable hooks for auditing and metrics
//
// # Quick Start
//
// Create an engine instance with your preferred store:
//
//	import (
//	    "github.com/nellaimart/billing"
//	    "github.com/nellaimart/billing/store/memory"
//	)
//
//	// Create engine (pass store/sqlite, store/postgres or store/mongo
//	// for persistence)
//	eng := billing.New(memory.New())
//
//	// Start the engine (runs migrations, begins background workers)
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
// # Core Concepts
//
// Products carry two prices, the marked retail price and the selling rate:
//
//	rice, err := eng.AddProduct(ctx, "Basmati Rice 1kg",
//	    billing.INR(9500), // MRP ₹95.00
//	    billing.INR(8900), // rate ₹89.00
//	    120)               // stock on hand
//
// Bills collect line items for one customer visit. Totals are recomputed
// from the full line set on every mutation:
//
//	b, err := eng.OpenBill(ctx, cust.ID)
//	b, err = eng.AddItem(ctx, b.ID, cust.ID, rice.ID, 2)
//
// Payment settles the bill and commits stock decrements atomically:
//
//	receipt, err := eng.Pay(ctx, b.ID, cust.ID, payment.Cash{
//	    Tendered: billing.INR(20000),
//	})
//	fmt.Println(receipt.Change) // ₹22.00
//
// A declined authorization or a stock shortfall leaves the bill open and
// stock untouched; the cashier may retry with any method.
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid floating-point
// precision issues. The Money type represents amounts in the smallest
// currency unit (paise for INR, cents for USD, etc).
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	cust_01h2xcejqtf2nbrexx3vqjhp41  // Customer ID
//	prod_01h2xcejqtf2nbrexx3vqjhp41  // Product ID
//	bill_01h455vb4pex5vsknk084sn02q  // Bill ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package billing
