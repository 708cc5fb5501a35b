package models

import "strings"

// Genre, Country and Language are fixed reference tables. Their ids are
// stable so uploaded catalog files can be resolved without a database hit.

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

type Country struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	ISOCode string `gorm:"uniqueIndex;size:2;not null" json:"iso_code"`
	Name    string `gorm:"not null" json:"name"`
}

type Language struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	ISOCode string `gorm:"uniqueIndex;size:2;not null" json:"iso_code"`
	Name    string `gorm:"not null" json:"name"`
}

var GenreTable = []Genre{
	{1, "Action"},
	{2, "Adventure"},
	{3, "Animation"},
	{4, "Comedy"},
	{5, "Crime"},
	{6, "Documentary"},
	{7, "Drama"},
	{8, "Family"},
	{9, "Fantasy"},
	{10, "History"},
	{11, "Horror"},
	{12, "Music"},
	{13, "Mystery"},
	{14, "Romance"},
	{15, "Science Fiction"},
	{16, "TV Movie"},
	{17, "Thriller"},
	{18, "War"},
	{19, "Western"},
}

var CountryTable = []Country{
	{1, "US", "United States of America"},
	{2, "GB", "United Kingdom"},
	{3, "FR", "France"},
	{4, "DE", "Germany"},
	{5, "IT", "Italy"},
	{6, "ES", "Spain"},
	{7, "JP", "Japan"},
	{8, "KR", "South Korea"},
	{9, "CN", "China"},
	{10, "HK", "Hong Kong"},
	{11, "IN", "India"},
	{12, "CA", "Canada"},
	{13, "AU", "Australia"},
	{14, "NZ", "New Zealand"},
	{15, "MX", "Mexico"},
	{16, "BR", "Brazil"},
	{17, "AR", "Argentina"},
	{18, "SE", "Sweden"},
	{19, "DK", "Denmark"},
	{20, "NO", "Norway"},
	{21, "FI", "Finland"},
	{22, "IE", "Ireland"},
	{23, "BE", "Belgium"},
	{24, "NL", "Netherlands"},
	{25, "RU", "Russia"},
	{26, "PL", "Poland"},
	{27, "TR", "Turkey"},
	{28, "TH", "Thailand"},
	{29, "ZA", "South Africa"},
	{30, "NG", "Nigeria"},
}

var LanguageTable = []Language{
	{1, "EN", "English"},
	{2, "FR", "French"},
	{3, "DE", "German"},
	{4, "IT", "Italian"},
	{5, "ES", "Spanish"},
	{6, "JA", "Japanese"},
	{7, "KO", "Korean"},
	{8, "ZH", "Mandarin"},
	{9, "CN", "Cantonese"},
	{10, "HI", "Hindi"},
	{11, "PT", "Portuguese"},
	{12, "SV", "Swedish"},
	{13, "DA", "Danish"},
	{14, "NO", "Norwegian"},
	{15, "FI", "Finnish"},
	{16, "RU", "Russian"},
	{17, "PL", "Polish"},
	{18, "TR", "Turkish"},
	{19, "TH", "Thai"},
	{20, "NL", "Dutch"},
	{21, "TE", "Telugu"},
	{22, "TA", "Tamil"},
}

var (
	genreIDs    = buildIndex(len(GenreTable), func(i int) (uint, []string) { g := GenreTable[i]; return g.ID, []string{g.Name} })
	countryIDs  = buildIndex(len(CountryTable), func(i int) (uint, []string) { c := CountryTable[i]; return c.ID, []string{c.ISOCode, c.Name} })
	languageIDs = buildIndex(len(LanguageTable), func(i int) (uint, []string) { l := LanguageTable[i]; return l.ID, []string{l.ISOCode, l.Name} })
)

func buildIndex(n int, entry func(i int) (uint, []string)) map[string]uint {
	index := make(map[string]uint, n*2)
	for i := 0; i < n; i++ {
		id, keys := entry(i)
		for _, k := range keys {
			index[strings.ToUpper(k)] = id
		}
	}
	return index
}

// LookupGenreID resolves a genre name (case-insensitive). ok is false for
// unknown names.
func LookupGenreID(name string) (uint, bool) {
	id, ok := genreIDs[strings.ToUpper(strings.TrimSpace(name))]
	return id, ok
}

// LookupCountryID resolves an ISO 3166-1 alpha-2 code or a country name.
func LookupCountryID(name string) (uint, bool) {
	id, ok := countryIDs[strings.ToUpper(strings.TrimSpace(name))]
	return id, ok
}

// LookupLanguageID resolves an ISO 639-1 code or a language name.
func LookupLanguageID(name string) (uint, bool) {
	id, ok := languageIDs[strings.ToUpper(strings.TrimSpace(name))]
	return id, ok
}
