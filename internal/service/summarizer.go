package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/medifit/medifit-api/internal/domain/medical_record"
)

// Summarizer produces a patient-readable summary of a medical record.
// The default implementation is a local template; an LLM-backed one can
// be swapped in without touching the record service.
type Summarizer interface {
	Summarize(ctx context.Context, r *medical_record.MedicalRecord) (string, error)
}

type templateSummarizer struct{}

func NewTemplateSummarizer() Summarizer {
	return templateSummarizer{}
}

func (templateSummarizer) Summarize(_ context.Context, r *medical_record.MedicalRecord) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Visit on %s", r.VisitDate.Format("2006-01-02"))
	if r.Department != "" {
		fmt.Fprintf(&b, " (%s)", r.Department)
	}
	fmt.Fprintf(&b, ". Diagnosis: %s.", r.Diagnosis)

	if r.Symptoms != "" {
		fmt.Fprintf(&b, " Reported symptoms: %s.", r.Symptoms)
	}
	if r.Treatment != "" {
		fmt.Fprintf(&b, " Treatment: %s.", r.Treatment)
	}
	if r.DoctorNotes != "" {
		fmt.Fprintf(&b, " Notes: %s.", r.DoctorNotes)
	}

	return b.String(), nil
}
