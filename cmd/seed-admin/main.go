// seed-admin creates or updates the admin console user (username: synapseAdmin)
// and seeds a default SLA config with a two-level escalation ladder for every
// workflow phase that does not have one yet.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/models"
	"github.com/regulens/synapse_backend/utils"
	"gorm.io/gorm"
)

const (
	adminUsername = "synapseAdmin"
	adminPassword = "Syn@pseAdmin"
	adminName     = "Synapse Admin"

	defaultPhaseBudgetHours = 40
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Seed")
	ctx = utils.SetUsernameInContext(ctx, adminUsername)
	ctx = utils.SetIsAdminInContext(ctx, true)

	seedAdminUser(ctx, db)
	seedPhaseSLAs(ctx, db)
}

func seedAdminUser(ctx context.Context, db *gorm.DB) {
	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashedStr := string(hashed)

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		u := models.User{
			Username: adminUsername,
			Name:     adminName,
			Password: hashedStr,
			IsActive: utils.NewTrue(),
			Role:     models.UserRoleAdmin,
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: username=%q\n", adminUsername)
		return
	}

	// Update existing user: ensure password and admin role
	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).Updates(map[string]any{
		"password":  hashedStr,
		"name":      adminName,
		"is_active": utils.NewTrue(),
		"role":      models.UserRoleAdmin,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	_ = existing.RemoveInstanceRedis()
	fmt.Printf("Updated admin user: username=%q\n", adminUsername)
}

// seedPhaseSLAs gives every phase a 40 business-hour budget with escalation to
// the Test Executive after 8 overdue business hours and to the Report Owner
// after 24. Existing configs are left untouched.
func seedPhaseSLAs(ctx context.Context, db *gorm.DB) {
	for _, phase := range models.PhaseOrder {
		var count int64
		if err := db.WithContext(ctx).Model(&models.SLAConfig{}).
			Where("activity_type = ?", string(phase)).Count(&count).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to check sla config for %s: %v\n", phase, err)
			os.Exit(1)
		}
		if count > 0 {
			continue
		}

		cfg := models.SLAConfig{
			ActivityType:  string(phase),
			BusinessHours: defaultPhaseBudgetHours,
			IsActive:      utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&cfg).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create sla config for %s: %v\n", phase, err)
			os.Exit(1)
		}

		rules := []models.EscalationRule{
			{SLAConfigId: cfg.ID, Level: 1, HoursAfterBreach: 8, NotifyRole: models.UserRoleTestExecutive},
			{SLAConfigId: cfg.ID, Level: 2, HoursAfterBreach: 24, NotifyRole: models.UserRoleReportOwner},
		}
		for i := range rules {
			if err := db.WithContext(ctx).Create(&rules[i]).Error; err != nil {
				fmt.Fprintf(os.Stderr, "failed to create escalation rule for %s: %v\n", phase, err)
				os.Exit(1)
			}
		}
		fmt.Printf("Seeded SLA config for %s (%d business hours, 2 escalation levels)\n", phase, defaultPhaseBudgetHours)
	}
}
