package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medifit/medifit-api/internal/domain/medication"
)

type MedicationRepository struct {
	db *gorm.DB
}

func NewMedicationRepository(db *gorm.DB) *MedicationRepository {
	return &MedicationRepository{db: db}
}

func (r *MedicationRepository) Create(ctx context.Context, m *medication.Medication) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("inserting medication: %w", err)
	}
	return nil
}

func (r *MedicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*medication.Medication, error) {
	var m medication.Medication
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, medication.ErrMedicationNotFound
		}
		return nil, fmt.Errorf("querying medication: %w", err)
	}
	return &m, nil
}

func (r *MedicationRepository) Save(ctx context.Context, m *medication.Medication) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("saving medication: %w", err)
	}
	return nil
}

func (r *MedicationRepository) Update(ctx context.Context, id uuid.UUID, cmd *medication.UpdateMedicationCommand) (*medication.Medication, error) {
	updates := map[string]any{}
	if cmd.Name != nil {
		updates["name"] = *cmd.Name
	}
	if cmd.Dosage != nil {
		updates["dosage"] = *cmd.Dosage
	}
	if cmd.FrequencyPerDay != nil {
		updates["frequency_per_day"] = *cmd.FrequencyPerDay
	}
	if cmd.StartDate != nil {
		updates["start_date"] = *cmd.StartDate
	}
	if cmd.EndDate != nil {
		updates["end_date"] = *cmd.EndDate
	}
	if cmd.TimeOfDay != nil {
		updates["time_of_day"] = *cmd.TimeOfDay
	}
	if cmd.Instructions != nil {
		updates["instructions"] = *cmd.Instructions
	}
	if cmd.SideEffects != nil {
		updates["side_effects"] = *cmd.SideEffects
	}
	if cmd.ReminderEnabled != nil {
		updates["reminder_enabled"] = *cmd.ReminderEnabled
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&medication.Medication{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("updating medication: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, medication.ErrMedicationNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *MedicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&medication.Medication{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting medication: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return medication.ErrMedicationNotFound
	}
	return nil
}

func (r *MedicationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*medication.Medication, error) {
	var meds []*medication.Medication
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&meds).Error
	if err != nil {
		return nil, fmt.Errorf("listing medications: %w", err)
	}
	return meds, nil
}

func (r *MedicationRepository) ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*medication.Medication, error) {
	var meds []*medication.Medication
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND status = ?", patientID, medication.StatusActive).
		Order("start_date DESC").
		Find(&meds).Error
	if err != nil {
		return nil, fmt.Errorf("listing active medications: %w", err)
	}
	return meds, nil
}

func (r *MedicationRepository) ListByStatus(ctx context.Context, status medication.MedicationStatus) ([]*medication.Medication, error) {
	var meds []*medication.Medication
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&meds).Error
	if err != nil {
		return nil, fmt.Errorf("listing medications by status: %w", err)
	}
	return meds, nil
}

func (r *MedicationRepository) ListForDay(ctx context.Context, patientID uuid.UUID, day time.Time) ([]*medication.Medication, error) {
	d := day.Format("2006-01-02")
	var meds []*medication.Medication
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND status = ?", patientID, medication.StatusActive).
		Where("start_date <= ? AND end_date >= ?", d, d).
		Order("time_of_day ASC").
		Find(&meds).Error
	if err != nil {
		return nil, fmt.Errorf("listing today's medications: %w", err)
	}
	return meds, nil
}

func (r *MedicationRepository) ListDueForReminder(ctx context.Context, bucket medication.TimeOfDay, day time.Time) ([]*medication.Medication, error) {
	d := day.Format("2006-01-02")
	var meds []*medication.Medication
	err := r.db.WithContext(ctx).
		Where("status = ? AND reminder_enabled = true", medication.StatusActive).
		Where("time_of_day = ?", bucket).
		Where("start_date <= ? AND end_date >= ?", d, d).
		Find(&meds).Error
	if err != nil {
		return nil, fmt.Errorf("listing medications due for reminder: %w", err)
	}
	return meds, nil
}

func (r *MedicationRepository) ListActiveExpired(ctx context.Context, day time.Time) ([]*medication.Medication, error) {
	var meds []*medication.Medication
	err := r.db.WithContext(ctx).
		Where("status = ?", medication.StatusActive).
		Where("end_date < ?", day.Format("2006-01-02")).
		Find(&meds).Error
	if err != nil {
		return nil, fmt.Errorf("listing expired medications: %w", err)
	}
	return meds, nil
}
