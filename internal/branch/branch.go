// Package branch holds the static directory of the five service locations.
package branch

type Branch struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

type JobTitle struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var branches = []Branch{
	{Code: "1", Name: "Bursa", City: "Bursa"},
	{Code: "2", Name: "İzmit", City: "Kocaeli"},
	{Code: "3", Name: "Orhanlı", City: "İstanbul"},
	{Code: "4", Name: "Hadımköy", City: "İstanbul"},
	{Code: "5", Name: "Keşan", City: "Edirne"},
}

var jobTitles = []JobTitle{
	{Code: "garanti_danisman", Name: "Garanti Danışmanı"},
	{Code: "hasar_danisman", Name: "Hasar Danışmanı"},
	{Code: "musteri_kabul", Name: "Müşteri Kabul Personeli"},
}

func All() []Branch {
	out := make([]Branch, len(branches))
	copy(out, branches)
	return out
}

func Lookup(code string) (Branch, bool) {
	for _, b := range branches {
		if b.Code == code {
			return b, true
		}
	}
	return Branch{}, false
}

func Valid(code string) bool {
	_, ok := Lookup(code)
	return ok
}

func Name(code string) string {
	b, ok := Lookup(code)
	if !ok {
		return ""
	}
	return b.Name
}

func JobTitles() []JobTitle {
	out := make([]JobTitle, len(jobTitles))
	copy(out, jobTitles)
	return out
}

func ValidJobTitle(code string) bool {
	for _, t := range jobTitles {
		if t.Code == code {
			return true
		}
	}
	return false
}
