package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinio/clinio_backend/internal/model"
)

// Memory is the in-memory Store used by tests and local development. It
// enforces the same non-cancelled commission uniqueness invariant as the
// relational partial index, and InTx gives all-or-nothing semantics by
// snapshotting state before running fn.
type Memory struct {
	mu   sync.RWMutex
	data *memData
}

type memData struct {
	rules        map[uuid.UUID]model.CommissionRule
	ruleOrder    []uuid.UUID
	commissions  map[uuid.UUID]model.Commission
	commOrder    []uuid.UUID
	payments     map[uuid.UUID]model.Payment
	appointments map[uuid.UUID]model.Appointment
	apptOrder    []uuid.UUID
	staff        map[uuid.UUID]model.StaffMember
	prices       map[uuid.UUID]model.ProcedurePrice
	priceOrder   []uuid.UUID
	clinics      map[uuid.UUID]model.Clinic
}

func newMemData() *memData {
	return &memData{
		rules:        make(map[uuid.UUID]model.CommissionRule),
		commissions:  make(map[uuid.UUID]model.Commission),
		payments:     make(map[uuid.UUID]model.Payment),
		appointments: make(map[uuid.UUID]model.Appointment),
		staff:        make(map[uuid.UUID]model.StaffMember),
		prices:       make(map[uuid.UUID]model.ProcedurePrice),
		clinics:      make(map[uuid.UUID]model.Clinic),
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	for k, v := range d.rules {
		c.rules[k] = v
	}
	for k, v := range d.commissions {
		c.commissions[k] = v
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	for k, v := range d.appointments {
		c.appointments[k] = v
	}
	for k, v := range d.staff {
		c.staff[k] = v
	}
	for k, v := range d.prices {
		c.prices[k] = v
	}
	for k, v := range d.clinics {
		c.clinics[k] = v
	}
	c.ruleOrder = append([]uuid.UUID(nil), d.ruleOrder...)
	c.commOrder = append([]uuid.UUID(nil), d.commOrder...)
	c.apptOrder = append([]uuid.UUID(nil), d.apptOrder...)
	c.priceOrder = append([]uuid.UUID(nil), d.priceOrder...)
	return c
}

func NewMemory() *Memory {
	return &Memory{data: newMemData()}
}

// view binds repository methods either to the outer store (self-locking) or
// to an open transaction (lock already held by InTx).
type memView struct {
	m    *Memory
	inTx bool
}

func (v *memView) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.m.mu.Lock()
	return v.m.mu.Unlock
}

func (v *memView) rlock() func() {
	if v.inTx {
		return func() {}
	}
	v.m.mu.RLock()
	return v.m.mu.RUnlock
}

func (m *Memory) view() *memView             { return &memView{m: m} }
func (m *Memory) Rules() Rules               { return &memRules{v: m.view()} }
func (m *Memory) Commissions() Commissions   { return &memCommissions{v: m.view()} }
func (m *Memory) Payments() Payments         { return &memPayments{v: m.view()} }
func (m *Memory) Appointments() Appointments { return &memAppointments{v: m.view()} }
func (m *Memory) Staff() Staff               { return &memStaff{v: m.view()} }
func (m *Memory) Prices() Prices             { return &memPrices{v: m.view()} }
func (m *Memory) Clinics() Clinics           { return &memClinics{v: m.view()} }

// InTx serializes against all other writers, snapshots the data and restores
// the snapshot when fn fails.
func (m *Memory) InTx(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.data.clone()
	tx := &memTx{m: m}
	if err := fn(tx); err != nil {
		m.data = snapshot
		return err
	}
	return nil
}

// memTx is the Store handed to InTx callbacks: same data, no re-locking.
type memTx struct {
	m *Memory
}

func (t *memTx) txView() *memView           { return &memView{m: t.m, inTx: true} }
func (t *memTx) Rules() Rules               { return &memRules{v: t.txView()} }
func (t *memTx) Commissions() Commissions   { return &memCommissions{v: t.txView()} }
func (t *memTx) Payments() Payments         { return &memPayments{v: t.txView()} }
func (t *memTx) Appointments() Appointments { return &memAppointments{v: t.txView()} }
func (t *memTx) Staff() Staff               { return &memStaff{v: t.txView()} }
func (t *memTx) Prices() Prices             { return &memPrices{v: t.txView()} }
func (t *memTx) Clinics() Clinics           { return &memClinics{v: t.txView()} }

func (t *memTx) InTx(ctx context.Context, fn func(Store) error) error {
	// Nested transactions join the outer one.
	return fn(t)
}

// ---------------------------------------------------------------------------
// Rules
// ---------------------------------------------------------------------------

type memRules struct{ v *memView }

func (r *memRules) Create(ctx context.Context, rule *model.CommissionRule) error {
	unlock := r.v.lock()
	defer unlock()

	if rule.ID == uuid.Nil {
		rule.ID = uuid.Must(uuid.NewV7())
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	r.v.m.data.rules[rule.ID] = *rule
	r.v.m.data.ruleOrder = append(r.v.m.data.ruleOrder, rule.ID)
	return nil
}

func (r *memRules) Update(ctx context.Context, rule *model.CommissionRule) error {
	unlock := r.v.lock()
	defer unlock()

	cur, ok := r.v.m.data.rules[rule.ID]
	if !ok || cur.ClinicID != rule.ClinicID || cur.DeletedAt.Valid {
		return ErrNotFound
	}
	rule.CreatedAt = cur.CreatedAt
	rule.UpdatedAt = time.Now()
	r.v.m.data.rules[rule.ID] = *rule
	return nil
}

func (r *memRules) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.CommissionRule, error) {
	unlock := r.v.rlock()
	defer unlock()

	rule, ok := r.v.m.data.rules[id]
	if !ok || rule.ClinicID != clinicID || rule.DeletedAt.Valid {
		return nil, ErrNotFound
	}
	out := rule
	return &out, nil
}

func (r *memRules) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]model.CommissionRule, error) {
	unlock := r.v.rlock()
	defer unlock()

	out := r.listLocked(clinicID, false)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

func (r *memRules) ListActiveByClinic(ctx context.Context, clinicID uuid.UUID) ([]model.CommissionRule, error) {
	unlock := r.v.rlock()
	defer unlock()

	return r.listLocked(clinicID, true), nil
}

func (r *memRules) listLocked(clinicID uuid.UUID, activeOnly bool) []model.CommissionRule {
	var out []model.CommissionRule
	for _, id := range r.v.m.data.ruleOrder {
		rule, ok := r.v.m.data.rules[id]
		if !ok || rule.ClinicID != clinicID || rule.DeletedAt.Valid {
			continue
		}
		if activeOnly && !rule.IsActive {
			continue
		}
		out = append(out, rule)
	}
	return out
}

func (r *memRules) Deactivate(ctx context.Context, clinicID, id uuid.UUID) error {
	unlock := r.v.lock()
	defer unlock()

	rule, ok := r.v.m.data.rules[id]
	if !ok || rule.ClinicID != clinicID || rule.DeletedAt.Valid {
		return ErrNotFound
	}
	rule.IsActive = false
	rule.UpdatedAt = time.Now()
	r.v.m.data.rules[id] = rule
	return nil
}

func (r *memRules) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	unlock := r.v.lock()
	defer unlock()

	rule, ok := r.v.m.data.rules[id]
	if !ok || rule.ClinicID != clinicID || rule.DeletedAt.Valid {
		return ErrNotFound
	}
	rule.DeletedAt.Time = time.Now()
	rule.DeletedAt.Valid = true
	r.v.m.data.rules[id] = rule
	return nil
}

// ---------------------------------------------------------------------------
// Commissions
// ---------------------------------------------------------------------------

type memCommissions struct{ v *memView }

func (r *memCommissions) CreateBatch(ctx context.Context, commissions []*model.Commission) error {
	unlock := r.v.lock()
	defer unlock()

	// Uniqueness check first, against stored rows and the batch itself, so a
	// violating batch writes nothing.
	seen := make(map[string]bool)
	for _, c := range commissions {
		k := c.AppointmentID.String() + "|" + string(c.BeneficiaryType) + "|" + c.BeneficiaryKey
		if seen[k] {
			return ErrDuplicate
		}
		seen[k] = true
	}
	for _, existing := range r.v.m.data.commissions {
		if existing.Status == model.CommissionCancelled {
			continue
		}
		k := existing.AppointmentID.String() + "|" + string(existing.BeneficiaryType) + "|" + existing.BeneficiaryKey
		if seen[k] {
			return ErrDuplicate
		}
	}

	now := time.Now()
	for _, c := range commissions {
		if c.ID == uuid.Nil {
			c.ID = uuid.Must(uuid.NewV7())
		}
		if c.Status == "" {
			c.Status = model.CommissionPending
		}
		c.CreatedAt = now
		r.v.m.data.commissions[c.ID] = *c
		r.v.m.data.commOrder = append(r.v.m.data.commOrder, c.ID)
	}
	return nil
}

func (r *memCommissions) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Commission, error) {
	unlock := r.v.rlock()
	defer unlock()

	c, ok := r.v.m.data.commissions[id]
	if !ok || c.ClinicID != clinicID {
		return nil, ErrNotFound
	}
	out := c
	return &out, nil
}

func (r *memCommissions) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]model.Commission, error) {
	unlock := r.v.rlock()
	defer unlock()

	var out []model.Commission
	for _, id := range r.v.m.data.commOrder {
		c, ok := r.v.m.data.commissions[id]
		if ok && c.PaymentID == paymentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCommissions) ListByClinic(ctx context.Context, clinicID uuid.UUID, f CommissionFilter) ([]model.Commission, error) {
	unlock := r.v.rlock()
	defer unlock()

	var out []model.Commission
	for i := len(r.v.m.data.commOrder) - 1; i >= 0; i-- {
		c, ok := r.v.m.data.commissions[r.v.m.data.commOrder[i]]
		if !ok || c.ClinicID != clinicID {
			continue
		}
		if f.BeneficiaryID != nil && c.BeneficiaryID != *f.BeneficiaryID {
			continue
		}
		if f.Status != nil && c.Status != *f.Status {
			continue
		}
		if f.From != nil && c.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !c.CreatedAt.Before(*f.To) {
			continue
		}
		out = append(out, c)
	}

	page, perPage := normalizePage(f.Page, f.PerPage)
	start := (page - 1) * perPage
	if start >= len(out) {
		return nil, nil
	}
	end := start + perPage
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (r *memCommissions) ExistsActive(ctx context.Context, appointmentID uuid.UUID, bt model.BeneficiaryType) (bool, error) {
	unlock := r.v.rlock()
	defer unlock()

	for _, c := range r.v.m.data.commissions {
		if c.AppointmentID == appointmentID && c.BeneficiaryType == bt && c.Status != model.CommissionCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCommissions) ExistsForRule(ctx context.Context, ruleID uuid.UUID) (bool, error) {
	unlock := r.v.rlock()
	defer unlock()

	for _, c := range r.v.m.data.commissions {
		if c.RuleID == ruleID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCommissions) Update(ctx context.Context, c *model.Commission) error {
	unlock := r.v.lock()
	defer unlock()

	cur, ok := r.v.m.data.commissions[c.ID]
	if !ok || cur.ClinicID != c.ClinicID {
		return ErrNotFound
	}
	cur.Status = c.Status
	cur.PaidAt = c.PaidAt
	r.v.m.data.commissions[c.ID] = cur
	return nil
}

func (r *memCommissions) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	unlock := r.v.lock()
	defer unlock()

	c, ok := r.v.m.data.commissions[id]
	if !ok || c.ClinicID != clinicID {
		return ErrNotFound
	}
	delete(r.v.m.data.commissions, id)
	return nil
}

func (r *memCommissions) CancelByPayment(ctx context.Context, paymentID uuid.UUID) (int, error) {
	unlock := r.v.lock()
	defer unlock()

	n := 0
	for id, c := range r.v.m.data.commissions {
		if c.PaymentID == paymentID && c.Status == model.CommissionPending {
			c.Status = model.CommissionCancelled
			r.v.m.data.commissions[id] = c
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

type memPayments struct{ v *memView }

func (r *memPayments) Create(ctx context.Context, p *model.Payment) error {
	unlock := r.v.lock()
	defer unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.Must(uuid.NewV7())
	}
	if p.Status == "" {
		p.Status = model.PaymentPending
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.v.m.data.payments[p.ID] = *p
	return nil
}

func (r *memPayments) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Payment, error) {
	unlock := r.v.rlock()
	defer unlock()

	p, ok := r.v.m.data.payments[id]
	if !ok || p.ClinicID != clinicID {
		return nil, ErrNotFound
	}
	out := p
	return &out, nil
}

func (r *memPayments) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	unlock := r.v.rlock()
	defer unlock()

	var latest *model.Payment
	for _, p := range r.v.m.data.payments {
		if p.AppointmentID != appointmentID {
			continue
		}
		q := p
		if latest == nil || q.CreatedAt.After(latest.CreatedAt) {
			latest = &q
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (r *memPayments) Update(ctx context.Context, p *model.Payment) error {
	unlock := r.v.lock()
	defer unlock()

	cur, ok := r.v.m.data.payments[p.ID]
	if !ok || cur.ClinicID != p.ClinicID {
		return ErrNotFound
	}
	cur.Status = p.Status
	cur.AllowWithoutRule = p.AllowWithoutRule
	cur.ConfirmedAt = p.ConfirmedAt
	cur.CancelledAt = p.CancelledAt
	cur.UpdatedAt = time.Now()
	r.v.m.data.payments[p.ID] = cur
	return nil
}

// ---------------------------------------------------------------------------
// Appointments
// ---------------------------------------------------------------------------

type memAppointments struct{ v *memView }

func (r *memAppointments) Create(ctx context.Context, a *model.Appointment) error {
	unlock := r.v.lock()
	defer unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.Must(uuid.NewV7())
	}
	if a.Status == "" {
		a.Status = model.AppointmentScheduled
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	r.v.m.data.appointments[a.ID] = *a
	r.v.m.data.apptOrder = append(r.v.m.data.apptOrder, a.ID)
	return nil
}

func (r *memAppointments) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	unlock := r.v.rlock()
	defer unlock()

	a, ok := r.v.m.data.appointments[id]
	if !ok || a.ClinicID != clinicID {
		return nil, ErrNotFound
	}
	out := a
	return &out, nil
}

func (r *memAppointments) ListByClinic(ctx context.Context, clinicID uuid.UUID, page, perPage int) ([]model.Appointment, error) {
	unlock := r.v.rlock()
	defer unlock()

	var out []model.Appointment
	for i := len(r.v.m.data.apptOrder) - 1; i >= 0; i-- {
		a, ok := r.v.m.data.appointments[r.v.m.data.apptOrder[i]]
		if ok && a.ClinicID == clinicID {
			out = append(out, a)
		}
	}
	page, perPage = normalizePage(page, perPage)
	start := (page - 1) * perPage
	if start >= len(out) {
		return nil, nil
	}
	end := start + perPage
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (r *memAppointments) Update(ctx context.Context, a *model.Appointment) error {
	unlock := r.v.lock()
	defer unlock()

	cur, ok := r.v.m.data.appointments[a.ID]
	if !ok || cur.ClinicID != a.ClinicID {
		return ErrNotFound
	}
	cur.Status = a.Status
	cur.CompletedAt = a.CompletedAt
	cur.Notes = a.Notes
	cur.UpdatedAt = time.Now()
	r.v.m.data.appointments[a.ID] = cur
	return nil
}

// ---------------------------------------------------------------------------
// Staff / Prices / Clinics
// ---------------------------------------------------------------------------

type memStaff struct{ v *memView }

func (r *memStaff) Create(ctx context.Context, m *model.StaffMember) error {
	unlock := r.v.lock()
	defer unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.Must(uuid.NewV7())
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	r.v.m.data.staff[m.ID] = *m
	return nil
}

func (r *memStaff) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.StaffMember, error) {
	unlock := r.v.rlock()
	defer unlock()

	m, ok := r.v.m.data.staff[id]
	if !ok || m.ClinicID != clinicID {
		return nil, ErrNotFound
	}
	out := m
	return &out, nil
}

type memPrices struct{ v *memView }

func (r *memPrices) Create(ctx context.Context, p *model.ProcedurePrice) error {
	unlock := r.v.lock()
	defer unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.Must(uuid.NewV7())
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.v.m.data.prices[p.ID] = *p
	r.v.m.data.priceOrder = append(r.v.m.data.priceOrder, p.ID)
	return nil
}

func (r *memPrices) FindExact(ctx context.Context, clinicID uuid.UUID, name string) (*model.ProcedurePrice, error) {
	unlock := r.v.rlock()
	defer unlock()

	for _, id := range r.v.m.data.priceOrder {
		p, ok := r.v.m.data.prices[id]
		if ok && p.ClinicID == clinicID && p.IsActive && p.Name == name {
			out := p
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memPrices) FindSubstring(ctx context.Context, clinicID uuid.UUID, name string) (*model.ProcedurePrice, error) {
	unlock := r.v.rlock()
	defer unlock()

	needle := strings.ToLower(name)
	var candidates []model.ProcedurePrice
	for _, id := range r.v.m.data.priceOrder {
		p, ok := r.v.m.data.prices[id]
		if !ok || p.ClinicID != clinicID || !p.IsActive {
			continue
		}
		entry := strings.ToLower(p.Name)
		if strings.Contains(entry, needle) || strings.Contains(needle, entry) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })
	out := candidates[0]
	return &out, nil
}

type memClinics struct{ v *memView }

func (r *memClinics) Create(ctx context.Context, c *model.Clinic) error {
	unlock := r.v.lock()
	defer unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.Must(uuid.NewV7())
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.v.m.data.clinics[c.ID] = *c
	return nil
}

func (r *memClinics) GetByID(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	unlock := r.v.rlock()
	defer unlock()

	c, ok := r.v.m.data.clinics[id]
	if !ok || c.DeletedAt.Valid {
		return nil, ErrNotFound
	}
	out := c
	return &out, nil
}

func (r *memClinics) ExistsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	unlock := r.v.rlock()
	defer unlock()

	c, ok := r.v.m.data.clinics[id]
	return ok && c.IsActive && !c.DeletedAt.Valid, nil
}
