package records

import (
	"context"
	"fmt"
	"time"

	"github.com/carebook/carebook/internal/domain/triage"
)

type Service struct {
	repo           Repository
	predictor      *triage.Predictor
	patientIDs     *Sequence
	appointmentIDs *Sequence
	now            func() time.Time
}

func NewService(repo Repository, predictor *triage.Predictor) *Service {
	if predictor == nil {
		predictor = triage.NewPredictor()
	}
	return &Service{
		repo:           repo,
		predictor:      predictor,
		patientIDs:     NewSequence(PatientIDPrefix, 0),
		appointmentIDs: NewSequence(AppointmentIDPrefix, 0),
		now:            time.Now,
	}
}

// SeedIDs advances the identifier sequences past every identifier already
// stored, so numbering continues across restarts.
func (s *Service) SeedIDs(ctx context.Context) error {
	patients, err := s.repo.ListPatients(ctx)
	if err != nil {
		return fmt.Errorf("list patients: %w", err)
	}
	for _, p := range patients {
		s.patientIDs.Observe(p.PatientID)
	}

	appts, err := s.repo.ListAppointments(ctx)
	if err != nil {
		return fmt.Errorf("list appointments: %w", err)
	}
	for _, a := range appts {
		s.appointmentIDs.Observe(a.AppointmentID)
	}
	return nil
}

// LastIDs reports the most recently issued patient and appointment counters.
func (s *Service) LastIDs() (patient, appointment int) {
	return s.patientIDs.Last(), s.appointmentIDs.Last()
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, in PatientInput) (*Patient, error) {
	p, err := NewPatient(in, s.patientIDs, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddPatient(ctx, *p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context) ([]Patient, error) {
	return s.repo.ListPatients(ctx)
}

// DeletePatient removes the patient and its BMI and symptom records.
// Appointments for the patient are left in place.
func (s *Service) DeletePatient(ctx context.Context, patientID string) error {
	return s.repo.DeletePatient(ctx, patientID)
}

// -- Appointment --

func (s *Service) CreateAppointment(ctx context.Context, in AppointmentInput) (*Appointment, error) {
	a, err := NewAppointment(in, s.appointmentIDs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddAppointment(ctx, *a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListAppointments(ctx context.Context) ([]Appointment, error) {
	return s.repo.ListAppointments(ctx)
}

func (s *Service) DeleteAppointment(ctx context.Context, appointmentID string) error {
	return s.repo.DeleteAppointment(ctx, appointmentID)
}

// -- BMI --

func (s *Service) RecordBMI(ctx context.Context, in HealthMetricInput) (*HealthMetric, error) {
	m, err := NewHealthMetric(in, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddHealthMetric(ctx, *m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ListBMI(ctx context.Context) ([]HealthMetric, error) {
	return s.repo.ListHealthMetrics(ctx)
}

func (s *Service) DeleteBMI(ctx context.Context, patientID string) error {
	return s.repo.DeleteHealthMetrics(ctx, patientID)
}

// -- Symptoms --

func (s *Service) RecordSymptoms(ctx context.Context, in SymptomInput) (*SymptomRecord, error) {
	rec, err := NewSymptomRecord(in, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddSymptom(ctx, *rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) ListSymptoms(ctx context.Context) ([]SymptomRecord, error) {
	return s.repo.ListSymptoms(ctx)
}

// -- Prediction --

// Predict scores the patient's disease risk from the most recently added
// BMI record and the number of symptom reports on file.
func (s *Service) Predict(ctx context.Context, patientID string) (triage.Assessment, error) {
	metrics, err := s.repo.ListHealthMetrics(ctx)
	if err != nil {
		return triage.Assessment{}, err
	}
	symptoms, err := s.repo.ListSymptoms(ctx)
	if err != nil {
		return triage.Assessment{}, err
	}

	var facts triage.Facts
	for i := len(metrics) - 1; i >= 0; i-- {
		if metrics[i].PatientID == patientID {
			bmi := metrics[i].BMI
			facts.BMI = &bmi
			break
		}
	}
	for _, rec := range symptoms {
		if rec.PatientID == patientID {
			facts.SymptomCount++
		}
	}
	return s.predictor.Assess(facts), nil
}
