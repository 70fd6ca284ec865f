package models

import (
	"fmt"

	dErrors "fieldsync/pkg/domain-errors"
)

// Module is one of the fixed record categories.
type Module string

const (
	ModulePregnancy           Module = "pregnancy"
	ModuleChildHealth         Module = "childHealth"
	ModuleFamilyPlanning      Module = "familyPlanning"
	ModuleDiseaseSurveillance Module = "diseaseSurveillance"
	ModuleReferrals           Module = "referrals"
	ModuleHealthAwareness     Module = "healthAwareness"
)

var allModules = []Module{
	ModulePregnancy,
	ModuleChildHealth,
	ModuleFamilyPlanning,
	ModuleDiseaseSurveillance,
	ModuleReferrals,
	ModuleHealthAwareness,
}

var modulePrefixes = map[Module]string{
	ModulePregnancy:           "P",
	ModuleChildHealth:         "CH",
	ModuleFamilyPlanning:      "FP",
	ModuleDiseaseSurveillance: "DS",
	ModuleReferrals:           "R",
	ModuleHealthAwareness:     "HA",
}

// AllModules returns the modules in their fixed processing order.
func AllModules() []Module {
	return append([]Module(nil), allModules...)
}

// ParseModule validates a module name.
func ParseModule(s string) (Module, error) {
	m := Module(s)
	if !m.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown module %q", s))
	}
	return m, nil
}

func (m Module) IsValid() bool {
	_, ok := modulePrefixes[m]
	return ok
}

// Prefix is the client-ID prefix for the module.
func (m Module) Prefix() string {
	return modulePrefixes[m]
}

func (m Module) String() string {
	return string(m)
}

// ClientID formats the seq-th identifier of a module: prefix + 5-digit zero pad.
func ClientID(m Module, seq int) string {
	return fmt.Sprintf("%s%05d", m.Prefix(), seq)
}

// Status tracks whether the remote endpoint has accepted a record.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSynced  Status = "SYNCED"
)

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusSynced:
		return Status(s), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown status %q", s))
}
