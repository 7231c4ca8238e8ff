package medglot

import "strings"

// Language identifies a catalog language. Code matches the language tag used
// in the data store; Script steers the generation prompt toward the correct
// writing system.
type Language struct {
	Code   string // store language tag, e.g. "bengali"
	Name   string // display name for prompts, e.g. "Bengali"
	Script string // writing-system hint, e.g. "regular Bengali script"
	// MetaSuffix is the localized "know the uses and benefits" tail appended
	// to generated meta titles. Empty for the source language.
	MetaSuffix string
}

// Languages lists every language tag the catalog carries.
var Languages = map[string]Language{
	"english":  {Code: "english", Name: "English", Script: "Latin script"},
	"hindi":    {Code: "hindi", Name: "Hindi", Script: "Devanagari script", MetaSuffix: "उपयोग व फायदे जानिए"},
	"bengali":  {Code: "bengali", Name: "Bengali", Script: "regular Bengali script", MetaSuffix: "ব্যবহার ও উপকারিতা জানুন"},
	"gujarati": {Code: "gujarati", Name: "Gujarati", Script: "Gujarati script", MetaSuffix: "ઉપયોગ અને ફાયદા જાણો"},
	"marathi":  {Code: "marathi", Name: "Marathi", Script: "Devanagari script", MetaSuffix: "उपयोग आणि फायदे जाणून घ्या"},
	"tamil":    {Code: "tamil", Name: "Tamil", Script: "Tamil script", MetaSuffix: "பயன்கள் மற்றும் நன்மைகளை அறியுங்கள்"},
	"telugu":   {Code: "telugu", Name: "Telugu", Script: "Telugu script", MetaSuffix: "ఉపయోగాలు మరియు ప్రయోజనాలు తెలుసుకోండి"},
	"kannada":  {Code: "kannada", Name: "Kannada", Script: "Kannada script", MetaSuffix: "ಬಳಕೆ ಮತ್ತು ಪ್ರಯೋಜನಗಳನ್ನು ತಿಳಿಯಿರಿ"},
	"punjabi":  {Code: "punjabi", Name: "Punjabi", Script: "Gurmukhi script", MetaSuffix: "ਵਰਤੋਂ ਅਤੇ ਫਾਇਦੇ ਜਾਣੋ"},
	"odia":     {Code: "odia", Name: "Odia", Script: "Odia script", MetaSuffix: "ବ୍ୟବହାର ଓ ଉପକାରିତା ଜାଣନ୍ତୁ"},
	"urdu":     {Code: "urdu", Name: "Urdu", Script: "Urdu script", MetaSuffix: "استعمال اور فوائد جانیں"},
}

// LookupLanguage resolves a language tag, case-insensitively.
func LookupLanguage(code string) (Language, bool) {
	lang, ok := Languages[strings.ToLower(strings.TrimSpace(code))]
	return lang, ok
}

// SourceLanguage is the canonical authoring language of the catalog.
var SourceLanguage = Languages["english"]
