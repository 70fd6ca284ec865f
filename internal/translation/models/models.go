package models

// Language is one entry in the selectable language list.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages the UI offers by default. Other codes may still be activated.
var Languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "ta", Name: "தமிழ்"},
}

// Dictionary maps string keys to display text in one language.
type Dictionary struct {
	Code    string            `json:"code"`
	Strings map[string]string `json:"strings"`
}

// Get returns the text for key, or the key itself when absent.
func (d *Dictionary) Get(key string) string {
	if v, ok := d.Strings[key]; ok {
		return v
	}
	return key
}

// Result is the translation outcome for one key: the translated text, or the
// base text with the reason the translation was not used.
type Result struct {
	Key      string `json:"key"`
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
	Reason   string `json:"reason,omitempty"`
}

func Ok(key, text string) Result {
	return Result{Key: key, Text: text}
}

func Fallback(key, original, reason string) Result {
	return Result{Key: key, Text: original, Fallback: true, Reason: reason}
}

// DownloadReport counts how a download went per key.
type DownloadReport struct {
	Code       string   `json:"code"`
	Total      int      `json:"total"`
	Translated int      `json:"translated"`
	Fallbacks  []Result `json:"fallbacks"`
}
