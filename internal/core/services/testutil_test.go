package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"roomhub/internal/adapters/persistence/models"
	"roomhub/internal/config"
	"roomhub/internal/core/domain"
)

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func testBilling() config.BillingConfig {
	return config.BillingConfig{
		ElectricityUnitPrice: 3500,
		WaterUnitPrice:       15000,
	}
}

// Principal ids sit far above anything auto-assigned by fixtures so
// self-targeting checks never trip by accident.
func globalAdmin() domain.Principal {
	return domain.Principal{UserID: 9001, Role: domain.RoleAdmin}
}

func branchAdmin(branchID uint) domain.Principal {
	return domain.Principal{UserID: 9002, Role: domain.RoleAdmin, BranchID: &branchID}
}

func tenantPrincipal(userID uint) domain.Principal {
	return domain.Principal{UserID: userID, Role: domain.RoleTenant}
}

func createBranch(t *testing.T, db *gorm.DB, name string) *models.Branch {
	t.Helper()

	branch := &models.Branch{Name: name, Address: "1 Test St", Manager: "Manager"}
	require.NoError(t, db.Create(branch).Error)
	return branch
}

func createRoom(t *testing.T, db *gorm.DB, branchID uint, number string, price int64) *models.Room {
	t.Helper()

	room := &models.Room{
		BranchID:   branchID,
		RoomNumber: number,
		Price:      price,
		Area:       25,
		Status:     domain.RoomAvailable,
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

func createTenant(t *testing.T, db *gorm.DB, branchID uint, email string) *models.User {
	t.Helper()

	user := &models.User{
		FullName: "Test Tenant",
		Email:    email,
		Password: "hashed",
		Role:     domain.RoleTenant,
		BranchID: &branchID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createActiveContract creates an ACTIVE contract directly and marks
// the room OCCUPIED, bypassing the service for fixture setup.
func createActiveContract(t *testing.T, db *gorm.DB, room *models.Room, userID uint) *models.Contract {
	t.Helper()

	contract := &models.Contract{
		RoomID:    room.ID,
		UserID:    userID,
		BranchID:  room.BranchID,
		StartDate: time.Now().AddDate(0, -1, 0),
		Deposit:   5000000,
		Status:    domain.ContractActive,
	}
	require.NoError(t, db.Create(contract).Error)
	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", room.ID).
		Update("status", domain.RoomOccupied).Error)
	room.Status = domain.RoomOccupied
	return contract
}
