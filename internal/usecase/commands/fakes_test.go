//go:build unit

package commands_test

import (
	"context"
	"time"

	"plogo-server/internal/domain/charging"
	"plogo-server/internal/domain/payment"
	"plogo-server/internal/infra"
	"plogo-server/internal/infra/enode"
	"plogo-server/internal/usecase/commands"

	"github.com/google/uuid"
)

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

type fakeStationRepo struct {
	station        *commands.StationSnapshot
	membership     *commands.MembershipSnapshot
	hasOtherLinked bool

	linkedChargers    []enode.Charger
	ensuredMembership []uuid.UUID
}

func (f *fakeStationRepo) FindByID(_ context.Context, id uuid.UUID) (*commands.StationSnapshot, error) {
	if f.station == nil || f.station.ID != id {
		return nil, notFound("station not found")
	}
	return f.station, nil
}

func (f *fakeStationRepo) FindApprovedMembership(_ context.Context, stationID, profileID uuid.UUID) (*commands.MembershipSnapshot, error) {
	if f.membership == nil || f.membership.StationID != stationID || f.membership.ProfileID != profileID {
		return nil, notFound("membership not found")
	}
	return f.membership, nil
}

func (f *fakeStationRepo) OwnerHasOtherLinkedCharger(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return f.hasOtherLinked, nil
}

func (f *fakeStationRepo) LinkCharger(_ context.Context, _ uuid.UUID, charger enode.Charger) error {
	f.linkedChargers = append(f.linkedChargers, charger)
	return nil
}

func (f *fakeStationRepo) EnsureOwnerMembership(_ context.Context, stationID, _ uuid.UUID) error {
	f.ensuredMembership = append(f.ensuredMembership, stationID)
	return nil
}

type fakeProfileRepo struct {
	owner *commands.OwnerSnapshot

	backfilled []string
}

func (f *fakeProfileRepo) FindOwner(_ context.Context, profileID uuid.UUID) (*commands.OwnerSnapshot, error) {
	if f.owner == nil || f.owner.ProfileID != profileID {
		return nil, notFound("owner profile not found")
	}
	return f.owner, nil
}

func (f *fakeProfileRepo) SetExternalAccountID(_ context.Context, _ uuid.UUID, accountID string) error {
	f.backfilled = append(f.backfilled, accountID)
	acct := accountID
	if f.owner != nil {
		f.owner.ExternalAccountID = &acct
	}
	return nil
}

type fakeSlotRepo struct {
	active *charging.Slot
	byID   map[uuid.UUID]*charging.Slot
}

func (f *fakeSlotRepo) FindByID(_ context.Context, id uuid.UUID) (*charging.Slot, error) {
	if slot, ok := f.byID[id]; ok {
		return slot, nil
	}
	return nil, notFound("slot not found")
}

func (f *fakeSlotRepo) FindActiveForMembership(_ context.Context, _, _ uuid.UUID, _ time.Time) (*charging.Slot, error) {
	if f.active == nil {
		return nil, notFound("no active slot")
	}
	return f.active, nil
}

type fakeSessionRepo struct {
	active   *charging.Session
	byID     map[uuid.UUID]*charging.Session
	energies []float64
	amounts  []float64

	created []*charging.Session
	updated []*charging.Session
}

func (f *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*charging.Session, error) {
	if session, ok := f.byID[id]; ok {
		return session, nil
	}
	return nil, notFound("session not found")
}

func (f *fakeSessionRepo) FindActive(_ context.Context, _, _ uuid.UUID) (*charging.Session, error) {
	if f.active == nil {
		return nil, notFound("no active session")
	}
	return f.active, nil
}

func (f *fakeSessionRepo) CreateReplacingActive(_ context.Context, session *charging.Session, _ time.Time) error {
	f.created = append(f.created, session)
	f.active = session
	return nil
}

func (f *fakeSessionRepo) Update(_ context.Context, session *charging.Session) error {
	f.updated = append(f.updated, session)
	return nil
}

func (f *fakeSessionRepo) SumBySlot(context.Context, uuid.UUID) ([]float64, []float64, error) {
	return f.energies, f.amounts, nil
}

type fakePaymentRepo struct {
	bySlot map[uuid.UUID]*payment.BookingPayment

	inserted []*payment.BookingPayment
	updated  []*payment.BookingPayment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{bySlot: map[uuid.UUID]*payment.BookingPayment{}}
}

func (f *fakePaymentRepo) FindBySlot(_ context.Context, slotID uuid.UUID) (*payment.BookingPayment, error) {
	if record, ok := f.bySlot[slotID]; ok {
		return record, nil
	}
	return nil, notFound("booking payment not found")
}

func (f *fakePaymentRepo) Insert(_ context.Context, record *payment.BookingPayment) (*payment.BookingPayment, error) {
	if existing, ok := f.bySlot[record.SlotID]; ok {
		return existing, nil
	}
	f.bySlot[record.SlotID] = record
	f.inserted = append(f.inserted, record)
	return record, nil
}

func (f *fakePaymentRepo) Update(_ context.Context, record *payment.BookingPayment) error {
	f.bySlot[record.SlotID] = record
	f.updated = append(f.updated, record)
	return nil
}

type fakeGateway struct {
	actionSnapshots map[enode.ActionKind]*enode.ActionSnapshot
	sendErr         error
	fetched         map[string]*enode.ActionSnapshot
	stats           []charging.UsageRecord
	statsErr        error
	linkURL         string
	chargers        []enode.Charger

	sendCalls  []enode.ActionKind
	fetchCalls []string
}

func (f *fakeGateway) SendAction(_ context.Context, _ string, kind enode.ActionKind) (*enode.ActionSnapshot, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sendCalls = append(f.sendCalls, kind)
	return f.actionSnapshots[kind], nil
}

func (f *fakeGateway) FetchAction(_ context.Context, _, actionID string) (*enode.ActionSnapshot, error) {
	f.fetchCalls = append(f.fetchCalls, actionID)
	return f.fetched[actionID], nil
}

func (f *fakeGateway) FetchStats(context.Context, string, string, time.Time, time.Time) ([]charging.UsageRecord, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeGateway) CreateLinkSession(context.Context, string, string) (string, error) {
	return f.linkURL, nil
}

func (f *fakeGateway) ListChargers(context.Context, string) ([]enode.Charger, error) {
	return f.chargers, nil
}

type fakeCodec struct {
	payload map[string]string
	err     error

	created []map[string]string
}

func (f *fakeCodec) Create(payload map[string]string) (string, error) {
	f.created = append(f.created, payload)
	return "signed-state", nil
}

func (f *fakeCodec) Verify(string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}
