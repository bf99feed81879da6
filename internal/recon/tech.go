package recon

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
)

// Technology detected on a fetched page
type Technology struct {
	Name     string
	Category string
	Version  string
	// Evidence - where the match was found (header name, "html", "cookie")
	Evidence string
}

type techSource int

const (
	inHeader techSource = iota
	inHTML
	inCookie
)

// techRule matches a technology; the first capture group, if any, is the version
type techRule struct {
	name     string
	category string
	source   techSource
	header   string
	re       *regexp.Regexp
}

// Правила обнаружения технологий по заголовкам, HTML и cookies
var techRules = []techRule{
	// Веб-серверы
	{name: "Nginx", category: "server", source: inHeader, header: "Server", re: regexp.MustCompile(`(?i)nginx(?:/([\d.]+))?`)},
	{name: "Apache", category: "server", source: inHeader, header: "Server", re: regexp.MustCompile(`(?i)apache(?:/([\d.]+))?`)},
	{name: "Microsoft IIS", category: "server", source: inHeader, header: "Server", re: regexp.MustCompile(`(?i)microsoft-iis(?:/([\d.]+))?`)},
	{name: "Gunicorn", category: "server", source: inHeader, header: "Server", re: regexp.MustCompile(`(?i)gunicorn(?:/([\d.]+))?`)},

	// Backend
	{name: "PHP", category: "backend", source: inHeader, header: "X-Powered-By", re: regexp.MustCompile(`(?i)php(?:/([\d.]+))?`)},
	{name: "PHP", category: "backend", source: inCookie, re: regexp.MustCompile(`PHPSESSID`)},
	{name: "Express", category: "framework", source: inHeader, header: "X-Powered-By", re: regexp.MustCompile(`(?i)express`)},
	{name: "ASP.NET", category: "framework", source: inHeader, header: "X-AspNet-Version", re: regexp.MustCompile(`([\d.]+)`)},
	{name: "ASP.NET", category: "framework", source: inHeader, header: "X-Powered-By", re: regexp.MustCompile(`(?i)asp\.net`)},
	{name: "Java Servlet", category: "backend", source: inCookie, re: regexp.MustCompile(`JSESSIONID`)},
	{name: "Django", category: "framework", source: inHTML, re: regexp.MustCompile(`csrfmiddlewaretoken`)},
	{name: "Django", category: "framework", source: inCookie, re: regexp.MustCompile(`csrftoken`)},
	{name: "Laravel", category: "framework", source: inCookie, re: regexp.MustCompile(`laravel_session`)},
	{name: "Ruby on Rails", category: "framework", source: inHTML, re: regexp.MustCompile(`name="csrf-param" content="authenticity_token"`)},

	// CMS
	{name: "WordPress", category: "cms", source: inHTML, re: regexp.MustCompile(`(?i)<meta[^>]+generator[^>]+WordPress ?([\d.]+)?`)},
	{name: "WordPress", category: "cms", source: inHTML, re: regexp.MustCompile(`/wp-(?:content|includes)/`)},
	{name: "Drupal", category: "cms", source: inHTML, re: regexp.MustCompile(`(?i)<meta[^>]+generator[^>]+Drupal ?([\d.]+)?`)},

	// Frontend
	{name: "React", category: "frontend", source: inHTML, re: regexp.MustCompile(`data-reactroot|react-dom`)},
	{name: "Vue.js", category: "frontend", source: inHTML, re: regexp.MustCompile(`data-v-[0-9a-f]{6,}`)},
	{name: "Angular", category: "frontend", source: inHTML, re: regexp.MustCompile(`ng-version="([\d.]+)"|_ngcontent-`)},
	{name: "jQuery", category: "frontend", source: inHTML, re: regexp.MustCompile(`jquery[-.]?([\d]+\.[\d.]+)?(?:\.min)?\.js`)},

	// CDN / proxy
	{name: "Cloudflare", category: "cdn", source: inHeader, header: "Server", re: regexp.MustCompile(`(?i)cloudflare`)},
	{name: "Varnish", category: "cdn", source: inHeader, header: "Via", re: regexp.MustCompile(`(?i)varnish`)},
}

// DetectTechnologies matches the page against the detection rules.
// Several rules for the same technology merge; the longest version wins.
func DetectTechnologies(headers http.Header, body string) []Technology {
	found := map[string]*Technology{}
	cookies := strings.Join(headers.Values("Set-Cookie"), "\n")

	for _, rule := range techRules {
		var text, evidence string
		switch rule.source {
		case inHeader:
			text, evidence = strings.Join(headers.Values(rule.header), ", "), rule.header+" header"
		case inHTML:
			text, evidence = body, "html"
		case inCookie:
			text, evidence = cookies, "cookie"
		}
		if text == "" {
			continue
		}

		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		version := ""
		for _, g := range m[1:] {
			if g != "" {
				version = strings.TrimRight(g, ".")
				break
			}
		}

		if t, ok := found[rule.name]; ok {
			if len(version) > len(t.Version) {
				t.Version = version
			}
			continue
		}
		found[rule.name] = &Technology{Name: rule.name, Category: rule.category, Version: version, Evidence: evidence}
	}

	techs := make([]Technology, 0, len(found))
	for _, t := range found {
		techs = append(techs, *t)
	}
	sort.Slice(techs, func(i, j int) bool {
		if techs[i].Category != techs[j].Category {
			return techs[i].Category < techs[j].Category
		}
		return techs[i].Name < techs[j].Name
	})
	return techs
}

// FormatTechnologies renders "[TECHNOLOGIES]" lines; empty when nothing was found
func FormatTechnologies(techs []Technology) string {
	if len(techs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("[TECHNOLOGIES]\n")
	for _, t := range techs {
		name := t.Name
		if t.Version != "" {
			name += " " + t.Version
		}
		fmt.Fprintf(&sb, "  %s (%s, via %s)\n", name, t.Category, t.Evidence)
	}
	return strings.TrimRight(sb.String(), "\n")
}
