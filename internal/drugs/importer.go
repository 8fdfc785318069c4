package drugs

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV parses a header-mapped drug reference export. Columns may
// appear in any order; unknown columns are ignored and missing ones
// leave the field empty. Blank numeric cells default to zero.
func ReadCSV(r io.Reader) ([]*Drug, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := col["drug_name"]; !ok {
		return nil, fmt.Errorf("csv missing drug_name column")
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var out []*Drug
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		d := &Drug{
			Name:                        field(record, "drug_name"),
			MedicalCondition:            field(record, "medical_condition"),
			SideEffects:                 field(record, "side_effects"),
			GenericName:                 field(record, "generic_name"),
			DrugClasses:                 field(record, "drug_classes"),
			BrandNames:                  field(record, "brand_names"),
			Activity:                    field(record, "activity"),
			RxOTC:                       field(record, "rx_otc"),
			PregnancyCategory:           field(record, "pregnancy_category"),
			CSA:                         field(record, "csa"),
			Alcohol:                     field(record, "alcohol"),
			RelatedDrugs:                field(record, "related_drugs"),
			MedicalConditionDescription: field(record, "medical_condition_description"),
			Link:                        field(record, "drug_link"),
		}
		if d.Name == "" {
			continue
		}

		if raw := field(record, "rating"); raw != "" {
			d.Rating, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: bad rating %q", line, raw)
			}
		}
		if raw := field(record, "no_of_reviews"); raw != "" {
			d.ReviewCount, err = strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: bad no_of_reviews %q", line, raw)
			}
		}

		out = append(out, d)
	}
	return out, nil
}
