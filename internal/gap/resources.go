package gap

import (
	"net/url"
	"strings"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

// Provider names used as keys of every ResourceSet.
const (
	ProviderYouTube  = "YouTube"
	ProviderCoursera = "Coursera"
	ProviderUdemy    = "Udemy"
)

type provider struct {
	name    string
	baseURL string // query string is appended verbatim
	suffix  string // appended to the skill to form the search query
}

var providers = []provider{
	{name: ProviderYouTube, baseURL: "https://www.youtube.com/results?search_query=", suffix: " full course tutorial"},
	{name: ProviderCoursera, baseURL: "https://www.coursera.org/search?query=", suffix: " specialization Coursera"},
	{name: ProviderUdemy, baseURL: "https://www.udemy.com/courses/search/?q=", suffix: " masterclass Udemy"},
}

// Resources builds the provider search links for skill. Pure string synthesis,
// no network access.
func Resources(skill string) model.ResourceSet {
	rs := make(model.ResourceSet, len(providers))
	for _, p := range providers {
		rs[p.name] = p.baseURL + quote(skill+p.suffix)
	}
	return rs
}

var quoteFixer = strings.NewReplacer("+", "%20", "%2F", "/")

// quote percent-encodes s for use inside a query value. Spaces become %20 and
// '/' is left alone; '+' is always encoded so "C++" survives the round trip.
func quote(s string) string {
	return quoteFixer.Replace(url.QueryEscape(s))
}
