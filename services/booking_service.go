package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/repository"
	"github.com/yeremiapane/table-reservation/utils"
)

// Column widths of the rezerwacje table.
const (
	maxNameLen  = 50
	maxEmailLen = 100
	maxPhoneLen = 20
)

// BookingRequest carries the raw form fields of a reservation request.
type BookingRequest struct {
	TableID   string
	Name      string
	Email     string
	Phone     string
	PartySize string
	Date      string
	Time      string
}

type BookingService struct {
	Repo       repository.ReservationRepository
	Locker     SlotLocker
	Publishers []EventPublisher
	LockWait   time.Duration
}

func NewBookingService(repo repository.ReservationRepository, locker SlotLocker, publishers ...EventPublisher) *BookingService {
	if locker == nil {
		locker = NewLocalSlotLocker()
	}
	return &BookingService{
		Repo:       repo,
		Locker:     locker,
		Publishers: publishers,
		LockWait:   5 * time.Second,
	}
}

// Book validates req, checks it against reservations for the same table and
// date string, and persists it. The check and the insert run under a slot
// lock and inside one transaction, so concurrent requests cannot both pass.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*models.Reservation, error) {
	tableID, err := parseInt(req.TableID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableID, req.TableID)
	}
	partySize, err := parseInt(req.PartySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPartySize, req.PartySize)
	}
	slot, err := ParseSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if partySize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPartySize, partySize)
	}
	if err := validateContact(req); err != nil {
		return nil, err
	}

	exists, err := s.Repo.TableExists(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTable, tableID)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.LockWait)
	defer cancel()
	release, err := s.Locker.Lock(lockCtx, SlotKey(tableID, req.Date))
	if err != nil {
		return nil, fmt.Errorf("acquire slot lock: %w", err)
	}

	res := models.Reservation{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		PartySize: partySize,
		TableID:   tableID,
		Date:      req.Date,
		Time:      req.Time,
	}
	// the lock covers only fetch+check+insert; publishers run after it is released
	err = func() error {
		defer release()
		return s.Repo.WithinTransaction(ctx, func(tx repository.ReservationRepository) error {
			existing, err := tx.FindByTableAndDate(ctx, tableID, req.Date)
			if err != nil {
				return err
			}
			if err := CheckConflict(slot, existing); err != nil {
				return err
			}
			return tx.Create(ctx, &res)
		})
	}()
	if err != nil {
		return nil, err
	}

	s.publish(ctx, NewReservationCreatedEvent(res))
	return &res, nil
}

// CheckAvailability runs the conflict rule without persisting anything.
func (s *BookingService) CheckAvailability(ctx context.Context, tableRaw, date, hour string) (bool, error) {
	tableID, err := parseInt(tableRaw)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidTableID, tableRaw)
	}
	slot, err := ParseSlot(date, hour)
	if err != nil {
		return false, err
	}
	exists, err := s.Repo.TableExists(ctx, tableID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("%w: %d", ErrUnknownTable, tableID)
	}

	existing, err := s.Repo.FindByTableAndDate(ctx, tableID, date)
	if err != nil {
		return false, err
	}
	if err := CheckConflict(slot, existing); err != nil {
		if IsBookingRejected(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListReservations returns reservations for a date string, optionally for a
// single table, ordered by table and start time.
func (s *BookingService) ListReservations(ctx context.Context, date, tableRaw string) ([]models.Reservation, error) {
	var (
		out []models.Reservation
		err error
	)
	if strings.TrimSpace(tableRaw) == "" {
		out, err = s.Repo.FindByDate(ctx, date)
	} else {
		tableID, perr := parseInt(tableRaw)
		if perr != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTableID, tableRaw)
		}
		out, err = s.Repo.FindByTableAndDate(ctx, tableID, date)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TableID != out[j].TableID {
			return out[i].TableID < out[j].TableID
		}
		ti, erri := out[i].Slot()
		tj, errj := out[j].Slot()
		if erri != nil || errj != nil {
			return false
		}
		return ti.Before(tj)
	})
	return out, nil
}

func (s *BookingService) publish(ctx context.Context, ev ReservationCreatedEvent) {
	for _, p := range s.Publishers {
		if err := p.PublishReservationCreated(ctx, ev); err != nil {
			utils.ErrorLogger.Printf("publish reservation %d: %v", ev.ReservationID, err)
		}
	}
}

func validateContact(req BookingRequest) error {
	if req.Name == "" || req.Email == "" {
		return ErrMissingContact
	}
	switch {
	case utf8.RuneCountInString(req.Name) > maxNameLen:
		return fmt.Errorf("%w: name exceeds %d characters", ErrContactTooLong, maxNameLen)
	case utf8.RuneCountInString(req.Email) > maxEmailLen:
		return fmt.Errorf("%w: email exceeds %d characters", ErrContactTooLong, maxEmailLen)
	case utf8.RuneCountInString(req.Phone) > maxPhoneLen:
		return fmt.Errorf("%w: phone exceeds %d characters", ErrContactTooLong, maxPhoneLen)
	}
	return nil
}

// parseInt accepts surrounding whitespace and an optional sign.
func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
