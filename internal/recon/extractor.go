package recon

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Small pages are passed to the model as-is
const maxRawHTML = 4000

var (
	commentRe         = regexp.MustCompile(`(?s)<!--(.+?)-->`)
	securityKeywordRe = regexp.MustCompile(`(?i)debug|todo|fixme|hack|password|secret|token|csrf|auth|key|deprecated|temporary`)
)

// Extractor pulls security-relevant elements out of HTML:
// forms (CSRF, hidden inputs), meta tags, scripts (SRI, inline count),
// iframes and comments mentioning secrets or debug leftovers.
type Extractor struct {
	maxForms    int
	maxScripts  int
	maxMetaTags int
	maxComments int
	maxValue    int
}

func NewExtractor() *Extractor {
	return &Extractor{
		maxForms:    20,
		maxScripts:  30,
		maxMetaTags: 15,
		maxComments: 10,
		maxValue:    300,
	}
}

// Extract returns a plain-text digest of html. Parsing errors fall back to
// a truncated head of the document.
func (e *Extractor) Extract(html string) string {
	if len(html) <= maxRawHTML {
		return fmt.Sprintf("[HTML: small, preserved - %d bytes]\n%s", len(html), html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "[HTML: unparsable, head only]\n" + truncateValue(html, maxRawHTML)
	}

	sections := []string{
		e.title(doc),
		e.forms(doc),
		e.metaTags(doc),
		e.scripts(doc),
		e.iframes(doc),
		e.comments(html),
	}

	var out []string
	for _, s := range sections {
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fmt.Sprintf("[HTML: %d bytes, no security-relevant elements]", len(html))
	}
	return strings.Join(out, "\n")
}

func (e *Extractor) title(doc *goquery.Document) string {
	t := strings.TrimSpace(doc.Find("title").First().Text())
	if t == "" {
		return ""
	}
	return "[TITLE] " + truncateValue(t, e.maxValue)
}

func (e *Extractor) forms(doc *goquery.Document) string {
	var forms []string

	doc.Find("form").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= e.maxForms {
			return false
		}

		action, _ := s.Attr("action")
		method, _ := s.Attr("method")
		if method == "" {
			method = "GET"
		}

		form := fmt.Sprintf("  form[%d]: action=%s method=%s\n", i+1, truncateValue(action, e.maxValue), strings.ToUpper(method))
		hasCSRF := false
		s.Find("input").Each(func(_ int, input *goquery.Selection) {
			name, _ := input.Attr("name")
			inputType, _ := input.Attr("type")
			if inputType == "hidden" {
				form += fmt.Sprintf("    input [HIDDEN]: name=%s\n", truncateValue(name, 100))
				if strings.Contains(strings.ToLower(name), "csrf") || strings.Contains(strings.ToLower(name), "token") {
					hasCSRF = true
				}
				return
			}
			form += fmt.Sprintf("    input: name=%s type=%s\n", truncateValue(name, 100), inputType)
		})
		if strings.EqualFold(method, "POST") && !hasCSRF {
			form += "    [!] POST form without an anti-CSRF token field\n"
		}

		forms = append(forms, form)
		return true
	})

	if len(forms) == 0 {
		return ""
	}
	return "[FORMS]\n" + strings.Join(forms, "")
}

func (e *Extractor) metaTags(doc *goquery.Document) string {
	var tags []string

	doc.Find("meta").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= e.maxMetaTags {
			return false
		}
		content, _ := s.Attr("content")
		if name, ok := s.Attr("name"); ok && name != "" {
			tags = append(tags, fmt.Sprintf("  name=%s content=%s", name, truncateValue(content, e.maxValue)))
		} else if equiv, ok := s.Attr("http-equiv"); ok && equiv != "" {
			tags = append(tags, fmt.Sprintf("  http-equiv=%s content=%s", equiv, truncateValue(content, e.maxValue)))
		}
		return true
	})

	if len(tags) == 0 {
		return ""
	}
	return "[META TAGS]\n" + strings.Join(tags, "\n")
}

func (e *Extractor) scripts(doc *goquery.Document) string {
	var scripts []string
	inline := 0

	doc.Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= e.maxScripts {
			return false
		}
		src, ok := s.Attr("src")
		if !ok || src == "" {
			inline++
			return true
		}

		script := "  src=" + truncateValue(src, e.maxValue)
		if _, hasSRI := s.Attr("integrity"); !hasSRI && isExternal(src) {
			script += " [no SRI]"
		}
		scripts = append(scripts, script)
		return true
	})

	if len(scripts) == 0 && inline == 0 {
		return ""
	}

	out := "[SCRIPTS]\n"
	if len(scripts) > 0 {
		out += strings.Join(scripts, "\n") + "\n"
	}
	if inline > 0 {
		out += fmt.Sprintf("  [+] %d inline script(s)", inline)
	}
	return strings.TrimRight(out, "\n")
}

func (e *Extractor) iframes(doc *goquery.Document) string {
	var frames []string
	doc.Find("iframe").Each(func(i int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		frames = append(frames, fmt.Sprintf("  iframe[%d]: src=%s", i+1, truncateValue(src, e.maxValue)))
	})
	if len(frames) == 0 {
		return ""
	}
	return "[IFRAMES]\n" + strings.Join(frames, "\n")
}

// goquery does not expose comment nodes, so comments are matched on raw html
func (e *Extractor) comments(html string) string {
	var comments []string
	for _, m := range commentRe.FindAllStringSubmatch(html, -1) {
		c := strings.TrimSpace(m[1])
		if !securityKeywordRe.MatchString(c) {
			continue
		}
		comments = append(comments, "  "+truncateValue(c, e.maxValue))
		if len(comments) >= e.maxComments {
			break
		}
	}
	if len(comments) == 0 {
		return ""
	}
	return "[SECURITY COMMENTS]\n" + strings.Join(comments, "\n")
}

func isExternal(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") || strings.HasPrefix(src, "//")
}

// truncateValue cuts s to at most maxLen bytes without splitting a rune
func truncateValue(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
