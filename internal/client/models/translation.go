package models

// Translation is one localized string row.
type Translation struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	LangCode string `json:"lang_code"`
}

// ReferenceValue is one entry of an enumerated vocabulary, such as a body
// part. Name is a translation key.
type ReferenceValue struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
