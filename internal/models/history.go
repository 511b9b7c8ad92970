package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// HistoryField is the request field the history arrives in. Error paths are
// rooted here.
const HistoryField = "histopathologicalData"

// PatientHistory is the risk-factor / symptom / lesion questionnaire sent with
// an image. Pointers mark optional booleans so that "not answered" and "false"
// stay distinct.
type PatientHistory struct {
	AgeRange        string   `json:"ageRange" validate:"required,oneof='Under 30' 30-45 46-60 'Over 60'"`
	Gender          string   `json:"gender,omitempty" validate:"omitempty,oneof=Male Female Other"`
	TobaccoUse      string   `json:"tobaccoUse,omitempty" validate:"omitempty,oneof=Yes No Former"`
	TobaccoTypes    []string `json:"tobaccoTypes,omitempty"`
	AlcoholUse      string   `json:"alcoholUse,omitempty" validate:"omitempty,oneof=Never Occasional Regular Heavy"`
	BetelNutUse     string   `json:"betelNutUse,omitempty" validate:"omitempty,oneof=Yes No Former"`
	HPVStatus       string   `json:"hpvStatus,omitempty" validate:"omitempty,oneof=Positive Negative Unknown"`
	FamilyHistory   *bool    `json:"familyHistory,omitempty"`
	PreviousLesions *bool    `json:"previousLesions,omitempty"`
	Symptoms        []string `json:"symptoms,omitempty"`
	SymptomDuration string   `json:"symptomDuration" validate:"required,oneof='Less than 2 weeks' '2-4 weeks' '1-3 months' 'More than 3 months'"`
	LesionLocation  string   `json:"lesionLocation,omitempty"`
	LesionSize      string   `json:"lesionSize,omitempty"`
	LesionColor     string   `json:"lesionColor,omitempty"`
	LesionTexture   string   `json:"lesionTexture,omitempty"`
	PainLevel       string   `json:"painLevel,omitempty" validate:"omitempty,oneof=None Mild Moderate Severe"`
	Bleeding        *bool    `json:"bleeding,omitempty"`
	AdditionalNotes string   `json:"additionalNotes,omitempty"`
}

// FieldError names the offending field of a rejected history.
type FieldError struct {
	Path   string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

var (
	historyValidator     *validator.Validate
	historyValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	historyValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		historyValidator = v
	})
	return historyValidator
}

// DecodeHistory parses and validates a raw history payload. An empty or null
// payload yields (nil, nil): the history is optional on the wire.
func DecodeHistory(raw json.RawMessage) (*PatientHistory, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var h PatientHistory
	if err := json.Unmarshal(trimmed, &h); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, &FieldError{
				Path:   HistoryField + "." + typeErr.Field,
				Reason: fmt.Sprintf("expected %s", typeErr.Type),
			}
		}
		return nil, &FieldError{Path: HistoryField, Reason: "must be a JSON object"}
	}

	if err := ValidateHistory(&h); err != nil {
		return nil, err
	}
	return &h, nil
}

// ValidateHistory checks enum membership and the two mandatory fields.
func ValidateHistory(h *PatientHistory) error {
	err := getValidator().Struct(h)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &FieldError{Path: HistoryField, Reason: err.Error()}
	}

	fe := verrs[0]
	reason := "is required"
	if fe.Tag() == "oneof" {
		reason = fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return &FieldError{Path: HistoryField + "." + fe.Field(), Reason: reason}
}
