package models

import (
	"fmt"
	"strings"

	dErrors "fieldsync/pkg/domain-errors"
)

// ASHAProfile identifies a community health worker on this device.
type ASHAProfile struct {
	Name       string `json:"name"`
	AshaID     string `json:"ashaId"`
	Age        string `json:"age"`
	Gender     string `json:"gender,omitempty"`
	BloodGroup string `json:"bloodGroup,omitempty"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Village    string `json:"village"`
}

func (p ASHAProfile) Validate() error {
	return requireFields("asha profile",
		"name", p.Name, "ashaId", p.AshaID, "age", p.Age, "phone", p.Phone, "village", p.Village)
}

// PHCProfile describes the primary health centre officer the device reports to.
type PHCProfile struct {
	FullName    string `json:"fullName"`
	PhcID       string `json:"phcId"`
	Designation string `json:"designation"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	AreaCovered string `json:"areaCovered"`
	Age         string `json:"age,omitempty"`
	BloodGroup  string `json:"bloodGroup,omitempty"`
}

func (p PHCProfile) Validate() error {
	return requireFields("phc profile",
		"fullName", p.FullName, "phcId", p.PhcID, "designation", p.Designation,
		"phone", p.Phone, "areaCovered", p.AreaCovered)
}

func requireFields(what string, pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("%s: missing required fields: %s", what, strings.Join(missing, ", ")))
	}
	return nil
}
