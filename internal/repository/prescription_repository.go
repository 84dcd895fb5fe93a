package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medifit/medifit-api/internal/domain/prescription"
)

type PrescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *prescription.Prescription) error {
	// Medication lines are inserted in the same transaction via the
	// has-many association.
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("inserting prescription: %w", err)
	}
	return nil
}

func (r *PrescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	var p prescription.Prescription
	err := r.db.WithContext(ctx).Preload("Medications").First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, prescription.ErrPrescriptionNotFound
		}
		return nil, fmt.Errorf("querying prescription: %w", err)
	}
	return &p, nil
}

func (r *PrescriptionRepository) GetByNumber(ctx context.Context, number string) (*prescription.Prescription, error) {
	var p prescription.Prescription
	err := r.db.WithContext(ctx).Preload("Medications").First(&p, "number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, prescription.ErrPrescriptionNotFound
		}
		return nil, fmt.Errorf("querying prescription by number: %w", err)
	}
	return &p, nil
}

func (r *PrescriptionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status prescription.PrescriptionStatus) error {
	res := r.db.WithContext(ctx).Model(&prescription.Prescription{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("updating prescription status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return prescription.ErrPrescriptionNotFound
	}
	return nil
}

func (r *PrescriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&prescription.Prescription{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting prescription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return prescription.ErrPrescriptionNotFound
	}
	return nil
}

func (r *PrescriptionRepository) List(ctx context.Context, q *prescription.ListPrescriptionsQuery) (*prescription.PagedPrescriptions, error) {
	tx := r.db.WithContext(ctx).Model(&prescription.Prescription{})

	if q.PatientID != nil {
		tx = tx.Where("patient_id = ?", *q.PatientID)
	}
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting prescriptions: %w", err)
	}

	var prescriptions []*prescription.Prescription
	offset := (q.Page - 1) * q.PageSize
	err := tx.Preload("Medications").
		Order("prescribed_at DESC").
		Offset(offset).Limit(q.PageSize).
		Find(&prescriptions).Error
	if err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}

	return &prescription.PagedPrescriptions{
		Prescriptions: prescriptions,
		TotalCount:    total,
		Page:          q.Page,
		PageSize:      q.PageSize,
		TotalPages:    totalPages(total, q.PageSize),
	}, nil
}

func (r *PrescriptionRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*prescription.Prescription, error) {
	var prescriptions []*prescription.Prescription
	err := r.db.WithContext(ctx).Preload("Medications").
		Where("patient_id = ?", patientID).
		Order("prescribed_at DESC").
		Find(&prescriptions).Error
	if err != nil {
		return nil, fmt.Errorf("listing patient prescriptions: %w", err)
	}
	return prescriptions, nil
}
