package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	mr "github.com/medifit/medifit-api/internal/domain/medical_record"
)

type MedicalRecordRepository struct {
	db *gorm.DB
}

func NewMedicalRecordRepository(db *gorm.DB) *MedicalRecordRepository {
	return &MedicalRecordRepository{db: db}
}

func (r *MedicalRecordRepository) Create(ctx context.Context, rec *mr.MedicalRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("inserting medical record: %w", err)
	}
	return nil
}

func (r *MedicalRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*mr.MedicalRecord, error) {
	var rec mr.MedicalRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mr.ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying medical record: %w", err)
	}
	return &rec, nil
}

func (r *MedicalRecordRepository) Update(ctx context.Context, id uuid.UUID, cmd *mr.UpdateRecordCommand) (*mr.MedicalRecord, error) {
	updates := map[string]any{}
	if cmd.Department != nil {
		updates["department"] = *cmd.Department
	}
	if cmd.Symptoms != nil {
		updates["symptoms"] = *cmd.Symptoms
	}
	if cmd.Diagnosis != nil {
		updates["diagnosis"] = *cmd.Diagnosis
	}
	if cmd.Treatment != nil {
		updates["treatment"] = *cmd.Treatment
	}
	if cmd.DoctorNotes != nil {
		updates["doctor_notes"] = *cmd.DoctorNotes
	}
	if cmd.Status != nil {
		updates["status"] = *cmd.Status
	}
	if cmd.VisitDate != nil {
		updates["visit_date"] = *cmd.VisitDate
	}
	if cmd.MedicalFee != nil {
		updates["medical_fee"] = *cmd.MedicalFee
	}
	if cmd.Room != nil {
		updates["room"] = *cmd.Room
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&mr.MedicalRecord{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("updating medical record: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, mr.ErrRecordNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *MedicalRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&mr.MedicalRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting medical record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return mr.ErrRecordNotFound
	}
	return nil
}

func (r *MedicalRecordRepository) List(ctx context.Context, q *mr.ListRecordsQuery) (*mr.PagedRecords, error) {
	tx := r.db.WithContext(ctx).Model(&mr.MedicalRecord{})

	if q.PatientID != nil {
		tx = tx.Where("patient_id = ?", *q.PatientID)
	}
	if q.Department != nil {
		tx = tx.Where("department = ?", *q.Department)
	}
	if q.DateFrom != nil {
		tx = tx.Where("visit_date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		tx = tx.Where("visit_date < ?", *q.DateTo)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting medical records: %w", err)
	}

	var records []*mr.MedicalRecord
	offset := (q.Page - 1) * q.PageSize
	if err := tx.Order("visit_date DESC").Offset(offset).Limit(q.PageSize).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing medical records: %w", err)
	}

	return &mr.PagedRecords{
		Records:    records,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages(total, q.PageSize),
	}, nil
}

func (r *MedicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*mr.MedicalRecord, error) {
	tx := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("visit_date DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var records []*mr.MedicalRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing patient records: %w", err)
	}
	return records, nil
}

func (r *MedicalRecordRepository) Search(ctx context.Context, keyword string) ([]*mr.MedicalRecord, error) {
	like := "%" + keyword + "%"
	var records []*mr.MedicalRecord
	err := r.db.WithContext(ctx).
		Where("diagnosis ILIKE ? OR symptoms ILIKE ? OR treatment ILIKE ? OR doctor_notes ILIKE ?", like, like, like, like).
		Order("visit_date DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("searching medical records: %w", err)
	}
	return records, nil
}

func (r *MedicalRecordRepository) SetAISummary(ctx context.Context, id uuid.UUID, summary string) error {
	res := r.db.WithContext(ctx).Model(&mr.MedicalRecord{}).
		Where("id = ?", id).
		Update("ai_summary", summary)
	if res.Error != nil {
		return fmt.Errorf("storing ai summary: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return mr.ErrRecordNotFound
	}
	return nil
}

func (r *MedicalRecordRepository) GroupDiagnosisFrequency(ctx context.Context, patientID uuid.UUID) (map[string]int64, error) {
	var rows []labelCount
	err := r.db.WithContext(ctx).Model(&mr.MedicalRecord{}).
		Select("lower(trim(diagnosis)) AS label, count(*) AS count").
		Where("patient_id = ? AND diagnosis <> ''", patientID).
		Group("1").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("grouping diagnosis frequency: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Label] = row.Count
	}
	return out, nil
}

func (r *MedicalRecordRepository) GroupDepartmentFrequency(ctx context.Context, patientID uuid.UUID) (map[string]int64, error) {
	var rows []labelCount
	err := r.db.WithContext(ctx).Model(&mr.MedicalRecord{}).
		Select("department AS label, count(*) AS count").
		Where("patient_id = ? AND department <> ''", patientID).
		Group("department").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("grouping department frequency: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Label] = row.Count
	}
	return out, nil
}

func (r *MedicalRecordRepository) GroupMonthlyVisits(ctx context.Context, patientID uuid.UUID, since time.Time) (map[string]int64, error) {
	var rows []monthCount
	err := r.db.WithContext(ctx).Model(&mr.MedicalRecord{}).
		Select("to_char(visit_date, 'YYYY-MM') AS month, count(*) AS count").
		Where("patient_id = ? AND visit_date >= ?", patientID, since).
		Group("1").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("grouping monthly visits: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Month] = row.Count
	}
	return out, nil
}

func (r *MedicalRecordRepository) FeeAggregates(ctx context.Context, patientID uuid.UUID) (*mr.FeeStatistics, error) {
	var stats mr.FeeStatistics
	err := r.db.WithContext(ctx).Model(&mr.MedicalRecord{}).
		Select(`coalesce(sum(medical_fee), 0) AS total_fee,
			coalesce(avg(medical_fee), 0) AS average_fee,
			coalesce(min(medical_fee), 0) AS min_fee,
			coalesce(max(medical_fee), 0) AS max_fee,
			count(medical_fee) AS record_count`).
		Where("patient_id = ? AND medical_fee IS NOT NULL", patientID).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating fees: %w", err)
	}
	return &stats, nil
}
