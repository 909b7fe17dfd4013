package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"akreditasi_backend/internals/constants"
	helper "akreditasi_backend/internals/helpers"
)

// TemplateKind = jenis form_config sebuah butir.
type TemplateKind string

const (
	KindTable     TemplateKind = "table"
	KindNarrative TemplateKind = "narrative"
	KindChecklist TemplateKind = "checklist"
	KindMetric    TemplateKind = "metric"
	KindMixed     TemplateKind = "mixed"
)

/* =======================================================
   Skema per jenis template
   ======================================================= */

type FieldDef struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,max=64"`
	Label       string   `json:"label,omitempty" validate:"omitempty,max=255"`
	Type        string   `json:"type,omitempty" validate:"omitempty,oneof=text number currency decimal percentage select date"`
	Required    bool     `json:"required,omitempty"`
	Width       string   `json:"width,omitempty" validate:"omitempty,max=20"`
	Placeholder string   `json:"placeholder,omitempty" validate:"omitempty,max=255"`
	HelpText    string   `json:"help_text,omitempty"`
	Options     []string `json:"options,omitempty" validate:"omitempty,dive,required"`
}

type TableSchema struct {
	Columns     []FieldDef `json:"columns" validate:"required,min=1,dive"`
	AllowAddRow *bool      `json:"allow_add_row,omitempty"`
	MaxRows     *int       `json:"max_rows,omitempty" validate:"omitempty,min=1"`
}

type NarrativeSchema struct {
	Fields   []FieldDef `json:"fields" validate:"required,min=1,dive"`
	MinWords *int       `json:"min_words,omitempty" validate:"omitempty,min=0"`
	MaxWords *int       `json:"max_words,omitempty" validate:"omitempty,min=1"`
}

type ChecklistSchema struct {
	Items []FieldDef `json:"items" validate:"required,min=1,dive"`
}

type MetricDef struct {
	FieldDef
	Unit   string   `json:"unit,omitempty" validate:"omitempty,max=30"`
	Target *float64 `json:"target,omitempty"`
}

type MetricSchema struct {
	Metrics []MetricDef `json:"metrics" validate:"required,min=1,dive"`
}

type MixedSchema struct {
	Sections []Section `json:"sections" validate:"required,min=1,dive"`
}

// Section = satu bagian template mixed; isinya template non-mixed + judul.
type Section struct {
	Title string `json:"title,omitempty"`
	FormConfig
}

/* =======================================================
   FormConfig (tagged union)
   ======================================================= */

// FormConfig hanya boleh berisi satu skema sesuai Kind.
type FormConfig struct {
	Kind      TemplateKind
	Table     *TableSchema
	Narrative *NarrativeSchema
	Checklist *ChecklistSchema
	Metric    *MetricSchema
	Mixed     *MixedSchema
}

type kindProbe struct {
	Type     TemplateKind    `json:"type"`
	Columns  json.RawMessage `json:"columns"`
	Fields   json.RawMessage `json:"fields"`
	Items    json.RawMessage `json:"items"`
	Metrics  json.RawMessage `json:"metrics"`
	Sections json.RawMessage `json:"sections"`
}

// UnmarshalJSON membaca "type"; kalau kosong (data lama) jenis ditebak dari key yang ada.
func (f *FormConfig) UnmarshalJSON(b []byte) error {
	var p kindProbe
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	kind := TemplateKind(strings.ToLower(strings.TrimSpace(string(p.Type))))
	if kind == "" {
		switch {
		case len(p.Sections) > 0:
			kind = KindMixed
		case len(p.Columns) > 0:
			kind = KindTable
		case len(p.Metrics) > 0:
			kind = KindMetric
		case len(p.Items) > 0:
			kind = KindChecklist
		case len(p.Fields) > 0:
			kind = KindNarrative
		default:
			return fmt.Errorf("form_config: type wajib diisi")
		}
	}

	*f = FormConfig{Kind: kind}
	switch kind {
	case KindTable:
		f.Table = &TableSchema{}
		return json.Unmarshal(b, f.Table)
	case KindNarrative:
		f.Narrative = &NarrativeSchema{}
		return json.Unmarshal(b, f.Narrative)
	case KindChecklist:
		f.Checklist = &ChecklistSchema{}
		return json.Unmarshal(b, f.Checklist)
	case KindMetric:
		f.Metric = &MetricSchema{}
		return json.Unmarshal(b, f.Metric)
	case KindMixed:
		f.Mixed = &MixedSchema{}
		return json.Unmarshal(b, f.Mixed)
	default:
		return fmt.Errorf("form_config: type %q tidak dikenal", kind)
	}
}

func (f FormConfig) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case KindTable:
		return json.Marshal(struct {
			Type TemplateKind `json:"type"`
			*TableSchema
		}{f.Kind, f.Table})
	case KindNarrative:
		return json.Marshal(struct {
			Type TemplateKind `json:"type"`
			*NarrativeSchema
		}{f.Kind, f.Narrative})
	case KindChecklist:
		return json.Marshal(struct {
			Type TemplateKind `json:"type"`
			*ChecklistSchema
		}{f.Kind, f.Checklist})
	case KindMetric:
		return json.Marshal(struct {
			Type TemplateKind `json:"type"`
			*MetricSchema
		}{f.Kind, f.Metric})
	case KindMixed:
		return json.Marshal(struct {
			Type TemplateKind `json:"type"`
			*MixedSchema
		}{f.Kind, f.Mixed})
	default:
		return nil, fmt.Errorf("form_config: type %q tidak dikenal", f.Kind)
	}
}

func (s *Section) UnmarshalJSON(b []byte) error {
	var head struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	s.Title = head.Title
	return s.FormConfig.UnmarshalJSON(b)
}

func (s Section) MarshalJSON() ([]byte, error) {
	body, err := s.FormConfig.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if s.Title == "" {
		return body, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	t, _ := json.Marshal(s.Title)
	m["title"] = t
	return json.Marshal(m)
}

/* =======================================================
   Turunan field (dipakai setup column mapping)
   ======================================================= */

// TemplateField = field hasil normalisasi dari template, siap dipetakan ke kolom.
type TemplateField struct {
	Name        string
	Label       string
	Type        string
	Required    bool
	Width       string
	Placeholder string
	HelpText    string
	Config      map[string]any
	// Path lokasi field di template, dipakai pesan validasi ("columns[2]").
	Path string
}

// Fields mengembalikan semua field yang dideklarasikan, berurutan sesuai template.
// Untuk mixed, field tiap section digabung sesuai urutan section.
func (f FormConfig) Fields() []TemplateField {
	switch f.Kind {
	case KindTable:
		if f.Table == nil {
			return nil
		}
		return fromDefs(f.Table.Columns, "columns", constants.FieldTypeText)
	case KindNarrative:
		if f.Narrative == nil {
			return nil
		}
		return fromDefs(f.Narrative.Fields, "fields", constants.FieldTypeText)
	case KindChecklist:
		if f.Checklist == nil {
			return nil
		}
		return fromDefs(f.Checklist.Items, "items", constants.FieldTypeText)
	case KindMetric:
		if f.Metric == nil {
			return nil
		}
		out := make([]TemplateField, 0, len(f.Metric.Metrics))
		for i, m := range f.Metric.Metrics {
			tf := fromDef(m.FieldDef, fmt.Sprintf("metrics[%d]", i), constants.FieldTypeNumber)
			if m.Unit != "" {
				tf.Config = withConfig(tf.Config, "unit", m.Unit)
			}
			if m.Target != nil {
				tf.Config = withConfig(tf.Config, "target", *m.Target)
			}
			out = append(out, tf)
		}
		return out
	case KindMixed:
		if f.Mixed == nil {
			return nil
		}
		var out []TemplateField
		for i, s := range f.Mixed.Sections {
			for _, tf := range s.FormConfig.Fields() {
				tf.Path = fmt.Sprintf("sections[%d].%s", i, tf.Path)
				out = append(out, tf)
			}
		}
		return out
	}
	return nil
}

func fromDefs(defs []FieldDef, section, defType string) []TemplateField {
	out := make([]TemplateField, 0, len(defs))
	for i, d := range defs {
		out = append(out, fromDef(d, fmt.Sprintf("%s[%d]", section, i), defType))
	}
	return out
}

func fromDef(d FieldDef, path, defType string) TemplateField {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = helper.FieldNameFromLabel(d.Label)
	}
	label := strings.TrimSpace(d.Label)
	if label == "" {
		label = name
	}
	typ := strings.ToLower(strings.TrimSpace(d.Type))
	if typ == "" {
		typ = defType
	}
	tf := TemplateField{
		Name:        name,
		Label:       label,
		Type:        typ,
		Required:    d.Required,
		Width:       d.Width,
		Placeholder: d.Placeholder,
		HelpText:    d.HelpText,
		Path:        path,
	}
	if len(d.Options) > 0 {
		tf.Config = withConfig(tf.Config, "options", d.Options)
	}
	return tf
}

func withConfig(m map[string]any, k string, v any) map[string]any {
	if m == nil {
		m = map[string]any{}
	}
	m[k] = v
	return m
}
