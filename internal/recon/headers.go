package recon

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Response headers every page is expected to send
var expectedSecurityHeaders = []string{
	"Content-Security-Policy",
	"Strict-Transport-Security",
	"X-Content-Type-Options",
	"X-Frame-Options",
	"Referrer-Policy",
}

// Headers that disclose the technology stack
var disclosureHeaders = []string{
	"Server",
	"X-Powered-By",
	"X-AspNet-Version",
	"X-AspNetMvc-Version",
	"X-Generator",
}

// Fingerprint summarises headers relevant to a security review
type Fingerprint struct {
	Disclosed      map[string]string
	MissingHeaders []string
	InsecureCookie []string
}

// FingerprintHeaders inspects response headers. HSTS is only expected on https.
func FingerprintHeaders(h http.Header, https bool) Fingerprint {
	fp := Fingerprint{Disclosed: map[string]string{}}

	for _, name := range disclosureHeaders {
		if v := h.Get(name); v != "" {
			fp.Disclosed[name] = v
		}
	}

	for _, name := range expectedSecurityHeaders {
		if name == "Strict-Transport-Security" && !https {
			continue
		}
		if h.Get(name) == "" {
			fp.MissingHeaders = append(fp.MissingHeaders, name)
		}
	}

	for _, c := range h.Values("Set-Cookie") {
		lower := strings.ToLower(c)
		var missing []string
		if !strings.Contains(lower, "httponly") {
			missing = append(missing, "HttpOnly")
		}
		if https && !strings.Contains(lower, "secure") {
			missing = append(missing, "Secure")
		}
		if !strings.Contains(lower, "samesite") {
			missing = append(missing, "SameSite")
		}
		if len(missing) > 0 {
			name, _, _ := strings.Cut(c, "=")
			fp.InsecureCookie = append(fp.InsecureCookie, fmt.Sprintf("%s (missing %s)", name, strings.Join(missing, ", ")))
		}
	}
	return fp
}

// String renders the fingerprint for prompts
func (fp Fingerprint) String() string {
	var sb strings.Builder

	if len(fp.Disclosed) > 0 {
		keys := make([]string, 0, len(fp.Disclosed))
		for k := range fp.Disclosed {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("[TECHNOLOGY DISCLOSURE]\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %s\n", k, fp.Disclosed[k])
		}
	}
	if len(fp.MissingHeaders) > 0 {
		sb.WriteString("[MISSING SECURITY HEADERS]\n  " + strings.Join(fp.MissingHeaders, ", ") + "\n")
	}
	if len(fp.InsecureCookie) > 0 {
		sb.WriteString("[COOKIE FLAGS]\n  " + strings.Join(fp.InsecureCookie, "\n  ") + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
