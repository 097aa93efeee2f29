// Command inspect is the operator's view into orders, balances, and the
// security audit log. It also toggles the blocked flag on an IP's events,
// which is the input the fraud heuristic reads.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/agromarket/backend/config"
	"github.com/agromarket/backend/database"
	"github.com/agromarket/backend/models"
	"github.com/agromarket/backend/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: inspect <command> [args]

Commands:
  events [limit]        list recent security events
  orders <user-uuid>    list a user's orders
  credit <user-uuid> <amount>   top up a user's balance
  block <ip>            mark an IP's events blocked
  unblock <ip>          clear the blocked flag for an IP
`)
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	store := repository.NewStore(db)
	ctx := context.Background()

	switch flag.Arg(0) {
	case "events":
		limit := 50
		if flag.NArg() > 1 {
			fmt.Sscanf(flag.Arg(1), "%d", &limit)
		}
		events, err := store.Security().Recent(ctx, limit)
		if err != nil {
			log.Fatalf("list events: %v", err)
		}
		for _, e := range events {
			blocked := ""
			if e.IsBlocked {
				blocked = " [BLOCKED]"
			}
			fmt.Printf("%s  %-22s risk=%-3d ip=%s%s  %s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.EventType, e.RiskScore, e.IPAddress, blocked, e.Details)
		}

	case "orders":
		if flag.NArg() < 2 {
			flag.Usage()
			os.Exit(2)
		}
		userID, err := uuid.Parse(flag.Arg(1))
		if err != nil {
			log.Fatalf("invalid user id: %v", err)
		}
		orders, total, err := store.Orders().FindByCustomer(ctx, userID, 1, 100)
		if err != nil {
			log.Fatalf("list orders: %v", err)
		}
		fmt.Printf("%d orders\n", total)
		for _, o := range orders {
			fmt.Printf("%s  %-10s subtotal=%s shipping=%s tax=%s grand=%s items=%d\n",
				o.OrderNumber, o.Status,
				o.Subtotal.StringFixed(2), o.ShippingFee.StringFixed(2),
				o.TaxAmount.StringFixed(2), o.GrandTotal.StringFixed(2), len(o.Items))
		}

	case "credit":
		if flag.NArg() < 3 {
			flag.Usage()
			os.Exit(2)
		}
		userID, err := uuid.Parse(flag.Arg(1))
		if err != nil {
			log.Fatalf("invalid user id: %v", err)
		}
		amount, err := decimal.NewFromString(flag.Arg(2))
		if err != nil || !amount.IsPositive() {
			log.Fatalf("invalid amount %q", flag.Arg(2))
		}
		if err := store.Balances().Credit(ctx, userID, amount.Round(2)); err != nil {
			log.Fatalf("credit %s: %v", userID, err)
		}
		balance, err := store.Balances().Get(ctx, userID)
		if err != nil {
			log.Fatalf("read balance: %v", err)
		}
		fmt.Printf("balance for %s is now %s\n", userID, balance.Amount.StringFixed(2))

	case "block", "unblock":
		if flag.NArg() < 2 {
			flag.Usage()
			os.Exit(2)
		}
		ip := flag.Arg(1)
		blocked := flag.Arg(0) == "block"
		n, err := store.Security().SetIPBlocked(ctx, ip, blocked)
		if err != nil {
			log.Fatalf("update ip %s: %v", ip, err)
		}
		if blocked && n == 0 {
			// No history for this IP yet; record the block as its first event.
			if err := store.Security().Log(ctx, &models.SecurityEvent{
				EventType: models.EventIPBlocked,
				IPAddress: ip,
				RiskScore: 100,
				IsBlocked: true,
				Details:   `{"source":"operator"}`,
			}); err != nil {
				log.Fatalf("log block event: %v", err)
			}
			n = 1
		}
		fmt.Printf("%d event rows updated for %s\n", n, ip)

	default:
		flag.Usage()
		os.Exit(2)
	}
}
