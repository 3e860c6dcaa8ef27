package postgres

import "gorm.io/gorm"

// Migrate creates or updates the billing tables. Only run when the
// postgres.auto_migrate config flag is set; production schemas are managed
// through migrations.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&invoiceRow{},
		&finalInvoiceRow{},
		&patientRow{},
		&billingSettingsRow{},
	)
}
