// Command setup seeds the default payment methods and makes sure a balance
// row exists for the given users.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/agromarket/backend/config"
	"github.com/agromarket/backend/database"
	"github.com/agromarket/backend/models"
	"github.com/agromarket/backend/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var defaultMethods = []models.PaymentMethod{
	{
		Name:                    "Credit Card",
		PaymentType:             models.PaymentTypeCreditCard,
		Description:             "Secure credit card payments with SSL encryption",
		ProcessingFeePercentage: decimal.RequireFromString("2.9"),
		ProcessingFeeFixed:      decimal.RequireFromString("0.30"),
		MinAmount:               decimal.RequireFromString("0.01"),
		MaxAmount:               decimal.RequireFromString("99999.99"),
		IsActive:                true,
	},
	{
		Name:                    "PayPal",
		PaymentType:             models.PaymentTypePayPal,
		Description:             "Fast and secure PayPal payments",
		ProcessingFeePercentage: decimal.RequireFromString("2.9"),
		ProcessingFeeFixed:      decimal.RequireFromString("0.30"),
		MinAmount:               decimal.RequireFromString("0.01"),
		MaxAmount:               decimal.RequireFromString("99999.99"),
		IsActive:                true,
	},
	{
		Name:                    "Account Balance",
		PaymentType:             models.PaymentTypeAccountBalance,
		Description:             "Use your marketplace account balance",
		ProcessingFeePercentage: decimal.Zero,
		ProcessingFeeFixed:      decimal.Zero,
		MinAmount:               decimal.RequireFromString("0.01"),
		MaxAmount:               decimal.RequireFromString("99999.99"),
		IsActive:                true,
	},
}

func main() {
	users := flag.String("users", "", "comma-separated user uuids to create balance rows for")
	flag.Parse()

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

	for i := range defaultMethods {
		method := defaultMethods[i]
		existing, err := store.PaymentMethods().FindByName(ctx, method.Name)
		if err != nil {
			log.Fatalf("lookup %q: %v", method.Name, err)
		}
		if existing != nil {
			log.Printf("payment method %q already present", method.Name)
			continue
		}
		if err := store.PaymentMethods().Create(ctx, &method); err != nil {
			log.Fatalf("create %q: %v", method.Name, err)
		}
		log.Printf("payment method %q created", method.Name)
	}

	if *users == "" {
		return
	}
	for _, raw := range strings.Split(*users, ",") {
		userID, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			log.Fatalf("invalid user id %q: %v", raw, err)
		}
		if _, err := store.Balances().GetOrCreate(ctx, userID); err != nil {
			log.Fatalf("balance for %s: %v", userID, err)
		}
		log.Printf("balance ready for user %s", userID)
	}
}
