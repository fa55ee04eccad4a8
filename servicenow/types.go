package servicenow

import "encoding/json"

// FieldValue holds one field of a record. With DisplayAll the API returns an
// object carrying both the raw value and a human-readable display value;
// otherwise a bare string. Both shapes decode into this type.
type FieldValue struct {
	Value        string
	DisplayValue string
}

// fieldObject is the dual-value wire shape returned under sysparm_display_value=all.
type fieldObject struct {
	Value        string `json:"value"`
	DisplayValue string `json:"display_value"`
}

// UnmarshalJSON accepts either a bare string or a {value, display_value} object.
func (f *FieldValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.Value = s
		f.DisplayValue = ""
		return nil
	}
	var obj fieldObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	f.Value = obj.Value
	f.DisplayValue = obj.DisplayValue
	return nil
}

// MarshalJSON emits the dual-value object shape.
func (f FieldValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldObject{Value: f.Value, DisplayValue: f.DisplayValue})
}

// Display returns the display value, falling back to the raw value.
func (f FieldValue) Display() string {
	if f.DisplayValue != "" {
		return f.DisplayValue
	}
	return f.Value
}

// Record is one row returned by the Table API.
type Record map[string]FieldValue

// Value returns the raw value of field, or "" if absent.
func (r Record) Value(field string) string {
	return r[field].Value
}

// Display returns the display value of field, falling back to the raw value.
func (r Record) Display(field string) string {
	return r[field].Display()
}
