package models

import (
	"encoding/json"
	"fmt"
	"strings"

	dErrors "fieldsync/pkg/domain-errors"
)

// Payload is the module-specific part of a record.
type Payload interface {
	Module() Module
	Validate() error
}

// Pregnancy registers an expectant mother.
type Pregnancy struct {
	Name       string `json:"name,omitempty"`
	Age        string `json:"age,omitempty"`
	BloodGroup string `json:"bloodGroup,omitempty"`
	EDD        string `json:"edd,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Village    string `json:"village,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func (Pregnancy) Module() Module { return ModulePregnancy }

func (p Pregnancy) Validate() error {
	return requireFields(ModulePregnancy,
		"name", p.Name, "age", p.Age, "bloodGroup", p.BloodGroup,
		"edd", p.EDD, "phone", p.Phone, "village", p.Village)
}

// ChildHealth records a child check-up.
type ChildHealth struct {
	ChildName    string `json:"childName,omitempty"`
	Age          string `json:"age,omitempty"`
	Gender       string `json:"gender,omitempty"`
	Immunization string `json:"immunization,omitempty"`
	Weight       string `json:"weight,omitempty"`
	Village      string `json:"village,omitempty"`
	ParentName   string `json:"parentName,omitempty"`
	Phone        string `json:"phone,omitempty"`
	BloodGroup   string `json:"bloodGroup,omitempty"`
}

func (ChildHealth) Module() Module { return ModuleChildHealth }

func (c ChildHealth) Validate() error {
	return requireFields(ModuleChildHealth,
		"childName", c.ChildName, "age", c.Age, "gender", c.Gender,
		"village", c.Village, "parentName", c.ParentName, "phone", c.Phone)
}

// FamilyPlanning records a counselling visit and chosen method.
type FamilyPlanning struct {
	Name    string `json:"name,omitempty"`
	Age     string `json:"age,omitempty"`
	Method  string `json:"method,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Village string `json:"village,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

func (FamilyPlanning) Module() Module { return ModuleFamilyPlanning }

func (f FamilyPlanning) Validate() error {
	return requireFields(ModuleFamilyPlanning,
		"name", f.Name, "method", f.Method, "village", f.Village)
}

// DiseaseSurveillance reports a suspected case.
type DiseaseSurveillance struct {
	PatientName string `json:"patientName,omitempty"`
	Age         string `json:"age,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Disease     string `json:"disease,omitempty"`
	ReportDate  string `json:"reportDate,omitempty"`
	Village     string `json:"village,omitempty"`
	Notes       string `json:"notes,omitempty"`
	BloodGroup  string `json:"bloodGroup,omitempty"`
}

func (DiseaseSurveillance) Module() Module { return ModuleDiseaseSurveillance }

func (d DiseaseSurveillance) Validate() error {
	return requireFields(ModuleDiseaseSurveillance,
		"patientName", d.PatientName, "age", d.Age, "gender", d.Gender, "village", d.Village)
}

// Referral sends a patient to a facility.
type Referral struct {
	PatientName  string `json:"patientName,omitempty"`
	Age          string `json:"age,omitempty"`
	Gender       string `json:"gender,omitempty"`
	Reason       string `json:"reason,omitempty"`
	ReferredTo   string `json:"referredTo,omitempty"`
	ReferralDate string `json:"referralDate,omitempty"`
	Village      string `json:"village,omitempty"`
	FollowUp     string `json:"followUp,omitempty"`
	Notes        string `json:"notes,omitempty"`
	BloodGroup   string `json:"bloodGroup,omitempty"`
}

func (Referral) Module() Module { return ModuleReferrals }

func (r Referral) Validate() error {
	return requireFields(ModuleReferrals,
		"patientName", r.PatientName, "reason", r.Reason,
		"referredTo", r.ReferredTo, "village", r.Village)
}

// HealthAwareness records a community session.
type HealthAwareness struct {
	Topic        string `json:"topic,omitempty"`
	TargetGroup  string `json:"targetGroup,omitempty"`
	Participants string `json:"participants,omitempty"`
	SessionDate  string `json:"sessionDate,omitempty"`
	Village      string `json:"village,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func (HealthAwareness) Module() Module { return ModuleHealthAwareness }

func (h HealthAwareness) Validate() error {
	return requireFields(ModuleHealthAwareness,
		"topic", h.Topic, "targetGroup", h.TargetGroup, "village", h.Village)
}

// NewPayload returns an empty payload of the module's concrete type.
func NewPayload(m Module) (Payload, error) {
	switch m {
	case ModulePregnancy:
		return &Pregnancy{}, nil
	case ModuleChildHealth:
		return &ChildHealth{}, nil
	case ModuleFamilyPlanning:
		return &FamilyPlanning{}, nil
	case ModuleDiseaseSurveillance:
		return &DiseaseSurveillance{}, nil
	case ModuleReferrals:
		return &Referral{}, nil
	case ModuleHealthAwareness:
		return &HealthAwareness{}, nil
	}
	return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown module %q", m))
}

// DecodePayload builds the module's payload from a field map. Unknown fields
// are rejected so typos in a form binding surface immediately.
func DecodePayload(m Module, fields map[string]string) (Payload, error) {
	p, err := NewPayload(m)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "encode fields")
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("invalid %s fields", m))
	}
	return p, nil
}

// FormFields turns a submitted JSON object into a field map. Numbers and
// booleans are kept as their literal text, nulls are dropped and nested
// objects or arrays are rejected.
func FormFields(obj map[string]json.RawMessage) (map[string]string, error) {
	for k, v := range obj {
		if t := strings.TrimSpace(string(v)); strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("field %q must be a string or number", k))
		}
	}
	return stringifyValues(obj), nil
}

// PayloadFields flattens a payload into its non-empty field map.
func PayloadFields(p Payload) (map[string]string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func requireFields(m Module, pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("%s: missing required fields: %s", m, strings.Join(missing, ", ")))
	}
	return nil
}
