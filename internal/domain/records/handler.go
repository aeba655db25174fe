package records

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients", h.ListPatients)
	api.DELETE("/patients/:id", h.DeletePatient)

	api.POST("/appointments", h.CreateAppointment)
	api.GET("/appointments", h.ListAppointments)
	api.DELETE("/appointments/:id", h.DeleteAppointment)

	api.POST("/bmi", h.RecordBMI)
	api.GET("/bmi", h.ListBMI)
	api.DELETE("/bmi/:patient_id", h.DeleteBMI)

	api.POST("/symptoms", h.RecordSymptoms)
	api.GET("/symptoms", h.ListSymptoms)

	api.GET("/predict/:patient_id", h.Predict)
}

// -- Patients --

func (h *Handler) CreatePatient(c echo.Context) error {
	var in PatientInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message":    "Patient added",
		"patient_id": p.PatientID,
	})
}

func (h *Handler) ListPatients(c echo.Context) error {
	patients, err := h.svc.ListPatients(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	if err := h.svc.DeletePatient(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Patient and related records deleted"})
}

// -- Appointments --

func (h *Handler) CreateAppointment(c echo.Context) error {
	var in AppointmentInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	a, err := h.svc.CreateAppointment(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message":        "Appointment booked",
		"appointment_id": a.AppointmentID,
	})
}

func (h *Handler) ListAppointments(c echo.Context) error {
	appts, err := h.svc.ListAppointments(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	if err := h.svc.DeleteAppointment(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Appointment cancelled"})
}

// -- BMI --

func (h *Handler) RecordBMI(c echo.Context) error {
	var in HealthMetricInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	m, err := h.svc.RecordBMI(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "BMI recorded",
		"bmi":      m.BMI,
		"category": m.Category,
	})
}

func (h *Handler) ListBMI(c echo.Context) error {
	metrics, err := h.svc.ListBMI(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, metrics)
}

func (h *Handler) DeleteBMI(c echo.Context) error {
	if err := h.svc.DeleteBMI(c.Request().Context(), c.Param("patient_id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "BMI record(s) deleted"})
}

// -- Symptoms --

func (h *Handler) RecordSymptoms(c echo.Context) error {
	var in SymptomInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	rec, err := h.svc.RecordSymptoms(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message":   "Symptoms recorded",
		"condition": rec.Condition,
		"action":    rec.Action,
	})
}

func (h *Handler) ListSymptoms(c echo.Context) error {
	symptoms, err := h.svc.ListSymptoms(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, symptoms)
}

// -- Prediction --

func (h *Handler) Predict(c echo.Context) error {
	result, err := h.svc.Predict(c.Request().Context(), c.Param("patient_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// bindBody decodes the JSON body. Oversized bodies keep their 413; every
// other decoding problem is a 400.
func bindBody(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	return nil
}

// httpError maps domain errors onto HTTP: invalid input is 400, anything
// else is 500. The detail of a 500 stays in the internal error for logging.
func httpError(err error) error {
	if errors.Is(err, ErrInvalidInput) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}
