package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinio/clinio_backend/internal/model"
)

// gormStore is the production Store. It relies on the connection being opened
// with TranslateError so unique-index violations surface as
// gorm.ErrDuplicatedKey (see pkg/database).
type gormStore struct {
	db *gorm.DB
}

// NewGorm wraps a GORM connection in the Store interface.
func NewGorm(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Rules() Rules               { return &gormRules{db: s.db} }
func (s *gormStore) Commissions() Commissions   { return &gormCommissions{db: s.db} }
func (s *gormStore) Payments() Payments         { return &gormPayments{db: s.db} }
func (s *gormStore) Appointments() Appointments { return &gormAppointments{db: s.db} }
func (s *gormStore) Staff() Staff               { return &gormStaff{db: s.db} }
func (s *gormStore) Prices() Prices             { return &gormPrices{db: s.db} }
func (s *gormStore) Clinics() Clinics           { return &gormClinics{db: s.db} }

func (s *gormStore) InTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// ---------------------------------------------------------------------------
// Rules
// ---------------------------------------------------------------------------

type gormRules struct{ db *gorm.DB }

func (r *gormRules) Create(ctx context.Context, rule *model.CommissionRule) error {
	return translate(r.db.WithContext(ctx).Create(rule).Error)
}

func (r *gormRules) Update(ctx context.Context, rule *model.CommissionRule) error {
	res := r.db.WithContext(ctx).
		Model(&model.CommissionRule{}).
		Where("id = ? AND clinic_id = ?", rule.ID, rule.ClinicID).
		Select("beneficiary_type", "professional_id", "beneficiary_id", "procedure",
			"weekday", "calc_type", "calc_unit", "value", "priority", "is_active", "notes").
		Updates(rule)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRules) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.CommissionRule, error) {
	var rule model.CommissionRule
	err := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&rule).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rule, nil
}

func (r *gormRules) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]model.CommissionRule, error) {
	var rules []model.CommissionRule
	err := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("priority DESC, created_at ASC").
		Find(&rules).Error
	return rules, translate(err)
}

func (r *gormRules) ListActiveByClinic(ctx context.Context, clinicID uuid.UUID) ([]model.CommissionRule, error) {
	var rules []model.CommissionRule
	err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND is_active = true", clinicID).
		Order("created_at ASC").
		Find(&rules).Error
	return rules, translate(err)
}

func (r *gormRules) Deactivate(ctx context.Context, clinicID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.CommissionRule{}).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		Update("is_active", false)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRules) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		Delete(&model.CommissionRule{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Commissions
// ---------------------------------------------------------------------------

type gormCommissions struct{ db *gorm.DB }

func (r *gormCommissions) CreateBatch(ctx context.Context, commissions []*model.Commission) error {
	if len(commissions) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range commissions {
			if err := tx.Create(c).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err)
}

func (r *gormCommissions) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Commission, error) {
	var c model.Commission
	err := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormCommissions) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]model.Commission, error) {
	var cs []model.Commission
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&cs).Error
	return cs, translate(err)
}

func (r *gormCommissions) ListByClinic(ctx context.Context, clinicID uuid.UUID, f CommissionFilter) ([]model.Commission, error) {
	page, perPage := normalizePage(f.Page, f.PerPage)

	q := r.db.WithContext(ctx).Where("clinic_id = ?", clinicID)
	if f.BeneficiaryID != nil {
		q = q.Where("beneficiary_id = ?", *f.BeneficiaryID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var cs []model.Commission
	err := q.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&cs).Error
	return cs, translate(err)
}

func (r *gormCommissions) ExistsActive(ctx context.Context, appointmentID uuid.UUID, bt model.BeneficiaryType) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Commission{}).
		Where("appointment_id = ? AND beneficiary_type = ? AND status <> ?",
			appointmentID, bt, model.CommissionCancelled).
		Count(&n).Error
	return n > 0, translate(err)
}

func (r *gormCommissions) ExistsForRule(ctx context.Context, ruleID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Commission{}).
		Where("rule_id = ?", ruleID).
		Count(&n).Error
	return n > 0, translate(err)
}

func (r *gormCommissions) Update(ctx context.Context, c *model.Commission) error {
	res := r.db.WithContext(ctx).
		Model(&model.Commission{}).
		Where("id = ? AND clinic_id = ?", c.ID, c.ClinicID).
		Select("status", "paid_at").
		Updates(c)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormCommissions) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		Delete(&model.Commission{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormCommissions) CancelByPayment(ctx context.Context, paymentID uuid.UUID) (int, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Commission{}).
		Where("payment_id = ? AND status = ?", paymentID, model.CommissionPending).
		Update("status", model.CommissionCancelled)
	return int(res.RowsAffected), translate(res.Error)
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

type gormPayments struct{ db *gorm.DB }

func (r *gormPayments) Create(ctx context.Context, p *model.Payment) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *gormPayments) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPayments) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPayments) Update(ctx context.Context, p *model.Payment) error {
	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND clinic_id = ?", p.ID, p.ClinicID).
		Select("status", "allow_without_rule", "confirmed_at", "cancelled_at").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Appointments
// ---------------------------------------------------------------------------

type gormAppointments struct{ db *gorm.DB }

func (r *gormAppointments) Create(ctx context.Context, a *model.Appointment) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *gormAppointments) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	var a model.Appointment
	err := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *gormAppointments) ListByClinic(ctx context.Context, clinicID uuid.UUID, page, perPage int) ([]model.Appointment, error) {
	page, perPage = normalizePage(page, perPage)
	var as []model.Appointment
	err := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("date DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&as).Error
	return as, translate(err)
}

func (r *gormAppointments) Update(ctx context.Context, a *model.Appointment) error {
	res := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("id = ? AND clinic_id = ?", a.ID, a.ClinicID).
		Select("status", "completed_at", "notes").
		Updates(a)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Staff / Prices / Clinics
// ---------------------------------------------------------------------------

type gormStaff struct{ db *gorm.DB }

func (r *gormStaff) Create(ctx context.Context, m *model.StaffMember) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *gormStaff) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*model.StaffMember, error) {
	var m model.StaffMember
	err := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

type gormPrices struct{ db *gorm.DB }

func (r *gormPrices) Create(ctx context.Context, p *model.ProcedurePrice) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *gormPrices) FindExact(ctx context.Context, clinicID uuid.UUID, name string) (*model.ProcedurePrice, error) {
	var p model.ProcedurePrice
	err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND is_active = true AND name = ?", clinicID, name).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPrices) FindSubstring(ctx context.Context, clinicID uuid.UUID, name string) (*model.ProcedurePrice, error) {
	var p model.ProcedurePrice
	err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND is_active = true", clinicID).
		Where("name ILIKE '%' || ? || '%' OR ? ILIKE '%' || name || '%'", name, name).
		Order("name ASC").
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

type gormClinics struct{ db *gorm.DB }

func (r *gormClinics) Create(ctx context.Context, c *model.Clinic) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *gormClinics) GetByID(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	var c model.Clinic
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormClinics) ExistsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Clinic{}).
		Where("id = ? AND is_active = true", id).
		Count(&n).Error
	return n > 0, translate(err)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

// commissionUniqueIndex is the storage-level duplicate guard: at most one
// non-cancelled commission per (appointment, beneficiary type, beneficiary
// key). GORM tags cannot express a partial index, so migration issues it
// directly.
const commissionUniqueIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS uq_commissions_active_beneficiary
ON commissions (appointment_id, beneficiary_type, beneficiary_key)
WHERE status <> 'cancelled'`

// Migrate creates all engine tables plus the partial unique index.
func Migrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(
		&model.Clinic{},
		&model.StaffMember{},
		&model.ProcedurePrice{},
		&model.Appointment{},
		&model.Payment{},
		&model.CommissionRule{},
		&model.Commission{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := db.WithContext(ctx).Exec(commissionUniqueIndex).Error; err != nil {
		return fmt.Errorf("create commission unique index: %w", err)
	}
	return nil
}
