package records

import "context"

// Snapshot is the whole persisted document: four flat tables in insertion
// order.
type Snapshot struct {
	Patients     []Patient       `json:"patients"`
	Appointments []Appointment   `json:"appointments"`
	BMI          []HealthMetric  `json:"bmi"`
	Symptoms     []SymptomRecord `json:"symptoms"`
}

// EmptySnapshot returns a snapshot with four empty, non-nil tables.
func EmptySnapshot() *Snapshot {
	s := &Snapshot{}
	s.normalize()
	return s
}

// Counts reports the number of rows per table, keyed by JSON table name.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		"patients":     len(s.Patients),
		"appointments": len(s.Appointments),
		"bmi":          len(s.BMI),
		"symptoms":     len(s.Symptoms),
	}
}

func (s *Snapshot) normalize() {
	if s.Patients == nil {
		s.Patients = []Patient{}
	}
	if s.Appointments == nil {
		s.Appointments = []Appointment{}
	}
	if s.BMI == nil {
		s.BMI = []HealthMetric{}
	}
	if s.Symptoms == nil {
		s.Symptoms = []SymptomRecord{}
	}
}

func (s *Snapshot) clone() *Snapshot {
	return &Snapshot{
		Patients:     append([]Patient{}, s.Patients...),
		Appointments: append([]Appointment{}, s.Appointments...),
		BMI:          append([]HealthMetric{}, s.BMI...),
		Symptoms:     append([]SymptomRecord{}, s.Symptoms...),
	}
}

// Persister loads and saves the whole snapshot. SaveAll replaces whatever
// was stored before.
type Persister interface {
	Load() (*Snapshot, error)
	SaveAll(s *Snapshot) error
}

// Repository is the table-level storage used by the service.
type Repository interface {
	AddPatient(ctx context.Context, p Patient) error
	ListPatients(ctx context.Context) ([]Patient, error)
	// DeletePatient also removes the patient's BMI and symptom records.
	DeletePatient(ctx context.Context, patientID string) error

	AddAppointment(ctx context.Context, a Appointment) error
	ListAppointments(ctx context.Context) ([]Appointment, error)
	DeleteAppointment(ctx context.Context, appointmentID string) error

	AddHealthMetric(ctx context.Context, m HealthMetric) error
	ListHealthMetrics(ctx context.Context) ([]HealthMetric, error)
	DeleteHealthMetrics(ctx context.Context, patientID string) error

	AddSymptom(ctx context.Context, s SymptomRecord) error
	ListSymptoms(ctx context.Context) ([]SymptomRecord, error)
}
