package main

import (
	"log"
	"os"
	"time"

	"admarket/internal/database"
	"admarket/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "admarket.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Website{},
		&domain.Category{},
		&domain.Ad{},
		&domain.AdSelection{},
		&domain.PaymentTracker{},
		&domain.PaymentTransaction{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM payment_transactions")
	db.Exec("DELETE FROM payment_trackers")
	db.Exec("DELETE FROM category_ads")
	db.Exec("DELETE FROM ad_selections")
	db.Exec("DELETE FROM categories")
	db.Exec("DELETE FROM ads")
	db.Exec("DELETE FROM websites")
	db.Exec("DELETE FROM users")

	// ================== USERS ==================
	log.Println("Creating users...")

	advertiserHash, _ := bcrypt.GenerateFromPassword([]byte("advertiser123"), bcrypt.DefaultCost)
	advertiser := domain.User{
		Email:        "roastery@example.com",
		PasswordHash: string(advertiserHash),
		Name:         "Aibek Roastery",
		Role:         domain.RoleAdvertiser,
	}
	db.Create(&advertiser)
	log.Println("Advertiser created: roastery@example.com / advertiser123")

	publisherHash, _ := bcrypt.GenerateFromPassword([]byte("publisher123"), bcrypt.DefaultCost)
	publisher := domain.User{
		Email:        "blog@example.com",
		PasswordHash: string(publisherHash),
		Name:         "Dina's Coffee Blog",
		Role:         domain.RolePublisher,
	}
	db.Create(&publisher)
	log.Println("Publisher created: blog@example.com / publisher123")

	// ================== WEBSITE + CATEGORIES ==================
	site := domain.Website{
		OwnerID: publisher.ID,
		Name:    "Coffee Blog",
		Domain:  "https://coffee-blog.example.com",
	}
	db.Create(&site)

	sidebar := domain.Category{WebsiteID: site.ID, Name: "sidebar", UserCount: 2}
	footer := domain.Category{WebsiteID: site.ID, Name: "footer", UserCount: 0}
	db.Create(&sidebar)
	db.Create(&footer)

	// ================== ADS ==================
	confirmed := domain.Ad{
		UserID:       advertiser.ID,
		BusinessName: "Aibek's Roastery",
		ImageURL:     "https://cdn.example.com/roastery.png",
		TargetURL:    "https://roastery.example.com",
		Confirmed:    true,
	}
	db.Create(&confirmed)

	unpaid := domain.Ad{
		UserID:       advertiser.ID,
		BusinessName: "Fresh Beans Weekly",
		ImageURL:     "https://cdn.example.com/beans.png",
		TargetURL:    "https://beans.example.com",
	}
	db.Create(&unpaid)

	// Approved placement for the confirmed ad, pending for the unpaid one.
	approvedAt := time.Now().UTC()
	approvedSel := domain.AdSelection{AdID: confirmed.ID, WebsiteID: site.ID, Approved: true, ApprovedAt: &approvedAt}
	approvedSel.SetCategoryIDs([]int64{sidebar.ID, footer.ID})
	db.Create(&approvedSel)

	pendingSel := domain.AdSelection{AdID: unpaid.ID, WebsiteID: site.ID}
	pendingSel.SetCategoryIDs([]int64{sidebar.ID})
	db.Create(&pendingSel)

	db.Model(&sidebar).Association("SelectedAds").Append(&confirmed, &unpaid)
	db.Model(&footer).Association("SelectedAds").Append(&confirmed)

	// ================== LEDGERS + TRANSACTION ==================
	tracker := domain.PaymentTracker{
		AdID:          confirmed.ID,
		CategoryID:    sidebar.ID,
		Amount:        "500.00",
		ViewsRequired: 100,
		Status:        domain.TrackerPending,
	}
	db.Create(&tracker)

	gatewayID := "gw-" + uuid.NewString()
	completedAt := time.Now().UTC()
	txn := domain.PaymentTransaction{
		TxRef:         uuid.NewString(),
		TransactionID: &gatewayID,
		AdID:          confirmed.ID,
		CategoryID:    sidebar.ID,
		Amount:        "500.00",
		ViewsRequired: 100,
		Status:        domain.TxCompleted,
		CompletedAt:   &completedAt,
	}
	db.Create(&txn)

	log.Println("Seed completed")
	log.Printf("Widget URL: /ads/display?categoryId=%d", sidebar.ID)
}
