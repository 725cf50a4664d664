package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/repository"
	"github.com/yeremiapane/table-reservation/testutil"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ReservationCreatedEvent
	err    error
}

func (p *recordingPublisher) PublishReservationCreated(_ context.Context, ev ReservationCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newTestBookingService(t *testing.T, publishers ...EventPublisher) (*BookingService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewBookingService(repository.NewReservationRepository(db), nil, publishers...), db
}

func request(table, date, hour string) BookingRequest {
	return BookingRequest{
		TableID:   table,
		Name:      "Jan Kowalski",
		Email:     "jan@example.com",
		Phone:     "+48 600 100 200",
		PartySize: "4",
		Date:      date,
		Time:      hour,
	}
}

func TestBookPersistsFieldsUnchanged(t *testing.T) {
	pub := &recordingPublisher{}
	svc, db := newTestBookingService(t, pub)

	res, err := svc.Book(context.Background(), request("3", "2024-06-01", "18:00"))
	require.NoError(t, err)
	require.NotZero(t, res.ID)

	var stored models.Reservation
	require.NoError(t, db.First(&stored, res.ID).Error)
	assert.Equal(t, "Jan Kowalski", stored.Name)
	assert.Equal(t, "jan@example.com", stored.Email)
	assert.Equal(t, "+48 600 100 200", stored.Phone)
	assert.Equal(t, 4, stored.PartySize)
	assert.Equal(t, 3, stored.TableID)
	assert.Equal(t, "2024-06-01", stored.Date)
	assert.Equal(t, "18:00", stored.Time)

	require.Equal(t, 1, pub.count())
	assert.Equal(t, res.ID, pub.events[0].ReservationID)
	assert.Equal(t, 3, pub.events[0].TableID)
}

func TestBookExampleScenario(t *testing.T) {
	svc, db := newTestBookingService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, request("3", "2024-06-01", "18:00"))
	assert.NoError(t, err)

	_, err = svc.Book(ctx, request("3", "2024-06-01", "19:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)

	_, err = svc.Book(ctx, request("3", "2024-06-01", "23:00"))
	assert.NoError(t, err)

	_, err = svc.Book(ctx, request("4", "2024-06-01", "18:00"))
	assert.NoError(t, err)

	assert.Equal(t, int64(3), testutil.CountReservations(t, db))
}

func TestBookBoundaries(t *testing.T) {
	svc, db := newTestBookingService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, request("5", "2024-06-01", "12:00"))
	require.NoError(t, err)

	_, err = svc.Book(ctx, request("5", "2024-06-01", "16:59"))
	assert.ErrorIs(t, err, ErrSlotConflict, "4h59m apart must be rejected")

	_, err = svc.Book(ctx, request("5", "2024-06-01", "17:00"))
	assert.NoError(t, err, "exactly 5h apart must be accepted")

	assert.Equal(t, int64(2), testutil.CountReservations(t, db))
}

func TestBookDifferentDateStringsNeverConflict(t *testing.T) {
	svc, db := newTestBookingService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, request("2", "2024-06-01", "18:00"))
	require.NoError(t, err)

	_, err = svc.Book(ctx, request("2", "2024-06-02", "18:00"))
	assert.NoError(t, err)

	// same calendar day written differently is filtered out by the exact-string lookup
	_, err = svc.Book(ctx, request("2", "2024-6-1", "18:00"))
	assert.NoError(t, err)

	// late evening vs early next morning is not compared either
	_, err = svc.Book(ctx, request("2", "2024-06-01", "23:30"))
	require.NoError(t, err)
	_, err = svc.Book(ctx, request("2", "2024-06-02", "00:30"))
	assert.NoError(t, err)

	assert.Equal(t, int64(5), testutil.CountReservations(t, db))
}

func TestBookRejections(t *testing.T) {
	long := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'a'
		}
		return string(b)
	}

	tests := []struct {
		name   string
		mutate func(r *BookingRequest)
		want   error
	}{
		{"non numeric table", func(r *BookingRequest) { r.TableID = "trzy" }, ErrInvalidTableID},
		{"empty table", func(r *BookingRequest) { r.TableID = "" }, ErrInvalidTableID},
		{"non numeric party", func(r *BookingRequest) { r.PartySize = "many" }, ErrInvalidPartySize},
		{"zero party", func(r *BookingRequest) { r.PartySize = "0" }, ErrInvalidPartySize},
		{"negative party", func(r *BookingRequest) { r.PartySize = "-2" }, ErrInvalidPartySize},
		{"month 13", func(r *BookingRequest) { r.Date = "2024-13-01" }, ErrInvalidSlot},
		{"hour 25", func(r *BookingRequest) { r.Time = "25:00" }, ErrInvalidSlot},
		{"garbage time", func(r *BookingRequest) { r.Time = "evening" }, ErrInvalidSlot},
		{"missing name", func(r *BookingRequest) { r.Name = "" }, ErrMissingContact},
		{"missing email", func(r *BookingRequest) { r.Email = "" }, ErrMissingContact},
		{"name too long", func(r *BookingRequest) { r.Name = long(51) }, ErrContactTooLong},
		{"phone too long", func(r *BookingRequest) { r.Phone = long(21) }, ErrContactTooLong},
		{"unknown table", func(r *BookingRequest) { r.TableID = "11" }, ErrUnknownTable},
		{"table zero", func(r *BookingRequest) { r.TableID = "0" }, ErrUnknownTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			svc, db := newTestBookingService(t, pub)
			req := request("3", "2024-06-01", "18:00")
			tt.mutate(&req)

			res, err := svc.Book(context.Background(), req)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsBookingRejected(err))
			assert.Equal(t, int64(0), testutil.CountReservations(t, db))
			assert.Equal(t, 0, pub.count())
		})
	}
}

func TestBookValidationOrder(t *testing.T) {
	svc, _ := newTestBookingService(t)
	req := BookingRequest{TableID: "x", PartySize: "y", Date: "bad", Time: "bad"}

	_, err := svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTableID)

	req.TableID = "1"
	_, err = svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidPartySize)

	req.PartySize = "2"
	_, err = svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestBookAcceptsPaddedNumbers(t *testing.T) {
	svc, _ := newTestBookingService(t)
	req := request(" 3 ", "2024-06-01", "18:00")
	req.PartySize = "+2"

	res, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TableID)
	assert.Equal(t, 2, res.PartySize)
}

func TestBookPublisherFailureDoesNotFailBooking(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, db := newTestBookingService(t, pub)

	_, err := svc.Book(context.Background(), request("1", "2024-06-01", "18:00"))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), testutil.CountReservations(t, db))
	assert.Equal(t, 1, pub.count())
}

// slowPublisher blocks every publish until its delay elapses and signals entry.
type slowPublisher struct {
	delay   time.Duration
	entered chan struct{}
	once    sync.Once
}

func (p *slowPublisher) PublishReservationCreated(_ context.Context, _ ReservationCreatedEvent) error {
	p.once.Do(func() { close(p.entered) })
	time.Sleep(p.delay)
	return nil
}

func TestBookSlowPublisherDoesNotHoldSlotLock(t *testing.T) {
	pub := &slowPublisher{delay: 500 * time.Millisecond, entered: make(chan struct{})}
	svc, db := newTestBookingService(t, pub)
	svc.LockWait = 100 * time.Millisecond

	first := make(chan error, 1)
	go func() {
		_, err := svc.Book(context.Background(), request("3", "2024-06-01", "06:00"))
		first <- err
	}()

	select {
	case <-pub.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first booking never reached its publisher")
	}

	// 12h apart, so no conflict; must not wait for the first publish to finish
	_, err := svc.Book(context.Background(), request("3", "2024-06-01", "18:00"))
	assert.NoError(t, err)
	assert.NoError(t, <-first)
	assert.Equal(t, int64(2), testutil.CountReservations(t, db))
}

func TestBookConcurrentSameSlotOnlyOneWins(t *testing.T) {
	svc, db := newTestBookingService(t)

	const n = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), request("7", "2024-06-01", "18:00"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, int64(1), testutil.CountReservations(t, db))
}

func TestCheckAvailability(t *testing.T) {
	svc, db := newTestBookingService(t)
	ctx := context.Background()
	testutil.InsertReservation(t, db, 3, "2024-06-01", "18:00")

	ok, err := svc.CheckAvailability(ctx, "3", "2024-06-01", "19:00")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CheckAvailability(ctx, "3", "2024-06-01", "23:00")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CheckAvailability(ctx, "4", "2024-06-01", "18:00")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.CheckAvailability(ctx, "x", "2024-06-01", "18:00")
	assert.ErrorIs(t, err, ErrInvalidTableID)
	_, err = svc.CheckAvailability(ctx, "3", "2024-06-01", "18")
	assert.ErrorIs(t, err, ErrInvalidSlot)
	_, err = svc.CheckAvailability(ctx, "42", "2024-06-01", "18:00")
	assert.ErrorIs(t, err, ErrUnknownTable)

	assert.Equal(t, int64(1), testutil.CountReservations(t, db))
}

func TestListReservationsOrdered(t *testing.T) {
	svc, db := newTestBookingService(t)
	ctx := context.Background()
	testutil.InsertReservation(t, db, 2, "2024-06-01", "19:00")
	testutil.InsertReservation(t, db, 1, "2024-06-01", "18:00")
	testutil.InsertReservation(t, db, 2, "2024-06-01", "9:00")
	testutil.InsertReservation(t, db, 2, "2024-06-02", "9:00")

	all, err := svc.ListReservations(ctx, "2024-06-01", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 1, all[0].TableID)
	assert.Equal(t, "9:00", all[1].Time)
	assert.Equal(t, "19:00", all[2].Time)

	table2, err := svc.ListReservations(ctx, "2024-06-01", "2")
	require.NoError(t, err)
	require.Len(t, table2, 2)
	assert.Equal(t, "9:00", table2[0].Time)

	_, err = svc.ListReservations(ctx, "2024-06-01", "two")
	assert.ErrorIs(t, err, ErrInvalidTableID)
}

func TestHandleDelivery(t *testing.T) {
	var got ReservationCreatedEvent
	err := handleDelivery([]byte(`{"reservation_id":7,"stolik_id":3,"data":"2024-06-01","godzina":"18:00","liczba_osob":2}`),
		func(ev ReservationCreatedEvent) error {
			got = ev
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, uint(7), got.ReservationID)
	assert.Equal(t, 3, got.TableID)
	assert.Equal(t, "18:00", got.Time)

	err = handleDelivery([]byte(`not json`), func(ReservationCreatedEvent) error { return nil })
	assert.Error(t, err)
}
