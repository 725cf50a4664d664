package repository

import (
	"context"
	"errors"

	"github.com/yeremiapane/table-reservation/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// ReservationRepository is the storage handle injected into the booking service.
type ReservationRepository interface {
	ListTables(ctx context.Context) ([]models.Table, error)
	TableExists(ctx context.Context, tableID int) (bool, error)

	// FindByTableAndDate matches the date column by exact string equality.
	FindByTableAndDate(ctx context.Context, tableID int, date string) ([]models.Reservation, error)
	FindByDate(ctx context.Context, date string) ([]models.Reservation, error)
	GetByID(ctx context.Context, id uint) (models.Reservation, error)
	Create(ctx context.Context, r *models.Reservation) error

	// WithinTransaction runs fn against a repository bound to one transaction.
	// Returning an error from fn rolls the transaction back.
	WithinTransaction(ctx context.Context, fn func(repo ReservationRepository) error) error
}

type GormReservationRepository struct {
	DB *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{DB: db}
}

func (r *GormReservationRepository) ListTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *GormReservationRepository) TableExists(ctx context.Context, tableID int) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Table{}).Where("id = ?", tableID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormReservationRepository) FindByTableAndDate(ctx context.Context, tableID int, date string) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.DB.WithContext(ctx).
		Where("stolik_id = ? AND data_rezerwacji = ?", tableID, date).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormReservationRepository) FindByDate(ctx context.Context, date string) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.DB.WithContext(ctx).
		Where("data_rezerwacji = ?", date).
		Order("stolik_id ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormReservationRepository) GetByID(ctx context.Context, id uint) (models.Reservation, error) {
	var res models.Reservation
	if err := r.DB.WithContext(ctx).First(&res, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Reservation{}, ErrNotFound
		}
		return models.Reservation{}, err
	}
	return res, nil
}

func (r *GormReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	return r.DB.WithContext(ctx).Create(res).Error
}

func (r *GormReservationRepository) WithinTransaction(ctx context.Context, fn func(repo ReservationRepository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormReservationRepository{DB: tx})
	})
}
