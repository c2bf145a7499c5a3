package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matchyard/matchyard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sampleNamespace scopes the deterministic ids of seeded sample rows.
var sampleNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://matchyard.dev/sample"))

// AllModels returns the GORM models that make up the marketplace schema.
func AllModels() []interface{} {
	return []interface{}{
		&models.Resource{},
		&models.Message{},
	}
}

// AutoMigrate creates or updates the marketplace tables. Hosted deployments
// own their schema; this is for local and test databases.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SampleID returns the stable id used for the named sample row.
func SampleID(name string) string {
	return uuid.NewSHA1(sampleNamespace, []byte(name)).String()
}

// SampleData builds a small marketplace whose statistics match the dashboard's
// built-in sample record: five listings, two accepted matches, two unread
// interests, one rejected interest.
func SampleData(now time.Time) ([]models.Resource, []models.Message) {
	companyA := SampleID("company-a")
	companyB := SampleID("company-b")
	companyC := SampleID("company-c")
	day := 24 * time.Hour
	at := func(d time.Duration) time.Time { return now.Add(-d).UTC().Truncate(time.Second) }
	read := func(d time.Duration) *time.Time { t := at(d); return &t }

	resources := []models.Resource{
		{ID: SampleID("resource-1"), CompanyID: companyA, Competence: "Excavator with operator", Location: "Stockholm", IsSpecial: true, IsTaken: true, AcceptedByCompanyID: &companyB, PriceType: "hourly", CreatedAt: at(12 * day)},
		{ID: SampleID("resource-2"), CompanyID: companyA, Competence: "Electrician", Location: "Göteborg", IsTaken: true, AcceptedByCompanyID: &companyC, PriceType: "fixed", CreatedAt: at(10 * day)},
		{ID: SampleID("resource-3"), CompanyID: companyB, Competence: "Carpenter", Location: "Malmö", IsTaken: true, PriceType: "negotiable", CreatedAt: at(8 * day)},
		{ID: SampleID("resource-4"), CompanyID: companyB, Competence: "Scaffolding set", IsSpecial: true, PriceType: "fixed", CreatedAt: at(6 * day)},
		{ID: SampleID("resource-5"), CompanyID: companyC, Competence: "Plumber", Location: "Uppsala", PriceType: "hourly", CreatedAt: at(4 * day)},
	}

	messages := []models.Message{
		{ID: SampleID("message-1"), FromCompanyID: companyB, ToCompanyID: companyA, ResourceID: resources[0].ID, Subject: "Interest", ReadAt: read(11 * day), CreatedAt: at(11*day + time.Hour)},
		{ID: SampleID("message-2"), FromCompanyID: companyC, ToCompanyID: companyA, ResourceID: resources[1].ID, Subject: "Interest", ReadAt: read(9 * day), CreatedAt: at(9*day + time.Hour)},
		{ID: SampleID("message-3"), FromCompanyID: companyA, ToCompanyID: companyB, ResourceID: resources[2].ID, Subject: "Interest", CreatedAt: at(7 * day)},
		{ID: SampleID("message-4"), FromCompanyID: companyC, ToCompanyID: companyB, ResourceID: resources[3].ID, Subject: "Interest", CreatedAt: at(5 * day)},
		{ID: SampleID("message-5"), FromCompanyID: companyA, ToCompanyID: companyC, ResourceID: resources[4].ID, Subject: "Interest", ReadAt: read(2 * day), CreatedAt: at(3 * day)},
	}
	return resources, messages
}

// SeedSample inserts the sample marketplace. Rows that already exist are left
// untouched, so seeding twice is a no-op. Returns the number of rows inserted.
func SeedSample(db *gorm.DB, now time.Time) (int64, error) {
	resources, messages := SampleData(now)

	var inserted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&resources)
		if res.Error != nil {
			return fmt.Errorf("db: seed resources: %w", res.Error)
		}
		inserted += res.RowsAffected

		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&messages)
		if res.Error != nil {
			return fmt.Errorf("db: seed messages: %w", res.Error)
		}
		inserted += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
