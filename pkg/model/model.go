package model

// Match is one language that passed the detection threshold.
type Match struct {
	Code       string  `json:"code"`        // Language code, copied from the table record
	Name       string  `json:"name"`        // English name
	NativeName string  `json:"native_name"` // Name in native script
	Count      uint64  `json:"count"`       // Codepoints present in both the input and the language
	Score      float64 `json:"score"`       // Count divided by the language total, in [0, 1]
}

// NewMatch builds the match of lang for count matched codepoints.
// lang.Total must be positive; the table loader guarantees it.
func NewMatch(lang *Language, count uint64) Match {
	return Match{
		Code:       lang.Code,
		Name:       lang.Name,
		NativeName: lang.NativeName,
		Count:      count,
		Score:      float64(count) / float64(lang.Total),
	}
}
