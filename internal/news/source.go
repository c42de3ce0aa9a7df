package news

import (
	"net/url"
	"strings"
)

// Source is one RSS or Atom feed.
type Source struct {
	Name string
	URL  string
}

// DefaultSources are the security advisories shown on the site.
var DefaultSources = []Source{
	{Name: "CISA", URL: "https://www.cisa.gov/cybersecurity-advisories/all.xml"},
	{Name: "The Hacker News", URL: "https://feeds.feedburner.com/TheHackersNews"},
	{Name: "BleepingComputer", URL: "https://www.bleepingcomputer.com/feed/"},
}

// ParseSources reads "Name|https://feed,Other|https://feed2". A bare URL is
// named after its host. Blank input returns DefaultSources.
func ParseSources(raw string) []Source {
	var sources []Source
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, link, found := strings.Cut(entry, "|")
		if !found {
			name, link = "", entry
		}
		name, link = strings.TrimSpace(name), strings.TrimSpace(link)
		parsed, err := url.Parse(link)
		if err != nil || parsed.Host == "" {
			continue
		}
		if name == "" {
			name = parsed.Host
		}
		sources = append(sources, Source{Name: name, URL: link})
	}
	if len(sources) == 0 {
		return DefaultSources
	}
	return sources
}
