package analysis

import (
	"net/url"
	"strconv"
	"strings"
)

// hstsMinAge is one year, the preload list minimum.
const hstsMinAge = 31536000

// SecurityHeaders holds the response headers that matter for security.
type SecurityHeaders struct {
	ContentSecurityPolicy     string `json:"content_security_policy,omitempty"`
	XContentTypeOptions       string `json:"x_content_type_options,omitempty"`
	XFrameOptions             string `json:"x_frame_options,omitempty"`
	ReferrerPolicy            string `json:"referrer_policy,omitempty"`
	PermissionsPolicy         string `json:"permissions_policy,omitempty"`
	StrictTransportSecurity   string `json:"strict_transport_security,omitempty"`
	CrossOriginOpenerPolicy   string `json:"cross_origin_opener_policy,omitempty"`
	CrossOriginResourcePolicy string `json:"cross_origin_resource_policy,omitempty"`
}

// Count returns how many of the headers are present.
func (h SecurityHeaders) Count() int {
	n := 0
	for _, v := range []string{
		h.ContentSecurityPolicy, h.XContentTypeOptions, h.XFrameOptions, h.ReferrerPolicy,
		h.PermissionsPolicy, h.StrictTransportSecurity, h.CrossOriginOpenerPolicy, h.CrossOriginResourcePolicy,
	} {
		if v != "" {
			n++
		}
	}
	return n
}

// TransportInfo describes HTTPS and HSTS for the final URL.
type TransportInfo struct {
	HTTPS                 bool  `json:"https"`
	HSTS                  bool  `json:"hsts"`
	HSTSMaxAge            int64 `json:"hsts_max_age,omitempty"`
	HSTSIncludeSubdomains bool  `json:"hsts_include_subdomains"`
	HSTSPreload           bool  `json:"hsts_preload"`
}

// SecurityIssue is one missing or weak protection.
type SecurityIssue struct {
	Header   string `json:"header"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// SecurityResult is the header analysis of one response.
type SecurityResult struct {
	Score           int             `json:"score"`
	Grade           string          `json:"grade"`
	Headers         SecurityHeaders `json:"headers"`
	Transport       TransportInfo   `json:"transport"`
	Issues          []SecurityIssue `json:"issues"`
	Recommendations []string        `json:"recommendations"`
}

// AnalyzeSecurity grades the response headers of finalURL. Header keys are
// expected lower-cased.
func AnalyzeSecurity(finalURL string, headers map[string]string) *SecurityResult {
	h := SecurityHeaders{
		ContentSecurityPolicy:     headers["content-security-policy"],
		XContentTypeOptions:       headers["x-content-type-options"],
		XFrameOptions:             headers["x-frame-options"],
		ReferrerPolicy:            headers["referrer-policy"],
		PermissionsPolicy:         headers["permissions-policy"],
		StrictTransportSecurity:   headers["strict-transport-security"],
		CrossOriginOpenerPolicy:   headers["cross-origin-opener-policy"],
		CrossOriginResourcePolicy: headers["cross-origin-resource-policy"],
	}

	https := false
	if u, err := url.Parse(finalURL); err == nil {
		https = u.Scheme == "https"
	}

	res := &SecurityResult{
		Headers:   h,
		Transport: parseHSTS(https, h.StrictTransportSecurity),
		Issues:    []SecurityIssue{},
	}
	res.collect()
	res.Score = res.score()
	res.Grade = SecurityGrade(res.Score)
	return res
}

func parseHSTS(https bool, value string) TransportInfo {
	t := TransportInfo{HTTPS: https, HSTS: value != ""}
	for _, d := range strings.Split(value, ";") {
		d = strings.ToLower(strings.TrimSpace(d))
		switch {
		case strings.HasPrefix(d, "max-age="):
			age, err := strconv.ParseInt(strings.Trim(strings.TrimPrefix(d, "max-age="), `"`), 10, 64)
			if err == nil {
				t.HSTSMaxAge = age
			}
		case d == "includesubdomains":
			t.HSTSIncludeSubdomains = true
		case d == "preload":
			t.HSTSPreload = true
		}
	}
	return t
}

func (r *SecurityResult) collect() {
	issue := func(header, sev, msg, rec string) {
		r.Issues = append(r.Issues, SecurityIssue{Header: header, Severity: sev, Message: msg})
		if rec != "" {
			r.Recommendations = append(r.Recommendations, rec)
		}
	}
	h := r.Headers

	if !r.Transport.HTTPS {
		issue("HTTPS", SeverityCritical, "Site is not served over HTTPS",
			"Enable HTTPS with a valid TLS certificate")
	}

	if h.ContentSecurityPolicy == "" {
		issue("Content-Security-Policy", SeverityHigh, "Missing Content-Security-Policy header",
			"Add a Content-Security-Policy header to prevent XSS and data injection")
	}

	switch {
	case h.XContentTypeOptions == "":
		issue("X-Content-Type-Options", SeverityMedium, "Missing X-Content-Type-Options header",
			"Add X-Content-Type-Options: nosniff to prevent MIME-type sniffing")
	case !strings.EqualFold(strings.TrimSpace(h.XContentTypeOptions), "nosniff"):
		issue("X-Content-Type-Options", SeverityLow, "X-Content-Type-Options is not nosniff",
			"Set X-Content-Type-Options to nosniff")
	}

	if h.XFrameOptions == "" && !strings.Contains(strings.ToLower(h.ContentSecurityPolicy), "frame-ancestors") {
		issue("X-Frame-Options", SeverityMedium, "Missing X-Frame-Options header (clickjacking protection)",
			"Add X-Frame-Options: DENY or SAMEORIGIN, or a CSP frame-ancestors directive")
	}

	if r.Transport.HTTPS {
		switch {
		case !r.Transport.HSTS:
			issue("Strict-Transport-Security", SeverityHigh, "Missing HSTS header",
				"Add a Strict-Transport-Security header with max-age of at least one year")
		case r.Transport.HSTSMaxAge < hstsMinAge:
			issue("Strict-Transport-Security", SeverityLow, "HSTS max-age is shorter than one year",
				"Raise the HSTS max-age to 31536000 or more")
		}
	}

	if h.ReferrerPolicy == "" {
		issue("Referrer-Policy", SeverityLow, "Missing Referrer-Policy header",
			"Add Referrer-Policy: strict-origin-when-cross-origin")
	}

	if h.PermissionsPolicy == "" {
		r.Recommendations = append(r.Recommendations, "Add a Permissions-Policy header to control browser features")
	}
	if h.CrossOriginOpenerPolicy == "" {
		r.Recommendations = append(r.Recommendations, "Add Cross-Origin-Opener-Policy: same-origin to isolate the browsing context")
	}
	if h.CrossOriginResourcePolicy == "" {
		r.Recommendations = append(r.Recommendations, "Add Cross-Origin-Resource-Policy to control who may embed resources")
	}
}

func (r *SecurityResult) score() int {
	score := 100
	if !r.Transport.HTTPS {
		score -= 30
	}
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityCritical:
			score -= 25
		case SeverityHigh:
			score -= 15
		case SeverityMedium:
			score -= 10
		default:
			score -= 5
		}
	}
	score = clamp(score)

	if r.Transport.HSTS {
		score += 5
		if r.Transport.HSTSIncludeSubdomains {
			score += 3
		}
		if r.Transport.HSTSPreload {
			score += 2
		}
	}
	return clamp(score)
}

// SecurityGrade maps a security score to A+ through F.
func SecurityGrade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}
