package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medifit/medifit-api/internal/domain/patient"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return patient.ErrDuplicatePhoneNumber
		}
		return fmt.Errorf("inserting patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, fmt.Errorf("querying patient: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) GetByPhoneNumber(ctx context.Context, phone string) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).First(&p, "phone_number = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, fmt.Errorf("querying patient by phone: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) Update(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	updates := map[string]any{}
	if cmd.Name != nil {
		updates["name"] = *cmd.Name
	}
	if cmd.PhoneNumber != nil {
		updates["phone_number"] = *cmd.PhoneNumber
	}
	if cmd.Address != nil {
		updates["address"] = *cmd.Address
	}
	if cmd.Gender != nil {
		updates["gender"] = *cmd.Gender
	}
	if cmd.BloodType != nil {
		updates["blood_type"] = *cmd.BloodType
	}
	if cmd.Allergies != nil {
		updates["allergies"] = *cmd.Allergies
	}
	if cmd.MedicalHistory != nil {
		updates["medical_history"] = *cmd.MedicalHistory
	}
	if cmd.HospitalID != nil {
		updates["hospital_id"] = *cmd.HospitalID
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&patient.Patient{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil, patient.ErrDuplicatePhoneNumber
			}
			return nil, fmt.Errorf("updating patient: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, patient.ErrPatientNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&patient.Patient{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return patient.ErrPatientNotFound
	}
	return nil
}

func (r *PatientRepository) List(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	tx := r.db.WithContext(ctx).Model(&patient.Patient{})

	if q.Search != "" {
		like := "%" + q.Search + "%"
		tx = tx.Where("name ILIKE ? OR phone_number ILIKE ? OR address ILIKE ?", like, like, like)
	}
	if q.HospitalID != nil {
		tx = tx.Where("hospital_id = ?", *q.HospitalID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}

	var patients []*patient.Patient
	offset := (q.Page - 1) * q.PageSize
	if err := tx.Order("created_at DESC").Offset(offset).Limit(q.PageSize).Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}

	return &patient.PagedPatients{
		Patients:   patients,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages(total, q.PageSize),
	}, nil
}

func (r *PatientRepository) ExistsByPhoneNumber(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&patient.Patient{}).Where("phone_number = ?", phone)
	if excludeID != nil {
		tx = tx.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking phone uniqueness: %w", err)
	}
	return count > 0, nil
}

func (r *PatientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&patient.Patient{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting patients: %w", err)
	}
	return count, nil
}

func (r *PatientRepository) CountRegisteredBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&patient.Patient{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting registrations: %w", err)
	}
	return count, nil
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
