// Package drugs serves the imported drug reference used by doctors
// during consultations.
package drugs

import "errors"

var ErrNotFound = errors.New("drugs: no match")

type Drug struct {
	ID                          int64   `json:"id"`
	Name                        string  `json:"drug_name"`
	MedicalCondition            string  `json:"medical_condition"`
	SideEffects                 string  `json:"side_effects"`
	GenericName                 string  `json:"generic_name"`
	DrugClasses                 string  `json:"drug_classes"`
	BrandNames                  string  `json:"brand_names"`
	Activity                    string  `json:"activity"`
	RxOTC                       string  `json:"rx_otc"`
	PregnancyCategory           string  `json:"pregnancy_category"`
	CSA                         string  `json:"csa"`
	Alcohol                     string  `json:"alcohol"`
	RelatedDrugs                string  `json:"related_drugs"`
	MedicalConditionDescription string  `json:"medical_condition_description"`
	Rating                      float64 `json:"rating"`
	ReviewCount                 int     `json:"no_of_reviews"`
	Link                        string  `json:"drug_link"`
}
