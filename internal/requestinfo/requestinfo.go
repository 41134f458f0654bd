//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (user-agent fingerprint, negotiated locale, client IP, URL, and
//  timestamp).  These structs are inert.  They contain no pointers to
//  database handles or large buffers, so they are safe to log or
//  JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer      (UA parsing)
//  • golang.org/x/text/language    (Accept-Language matching)
//

package requestinfo

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avct/uasurfer"
	"golang.org/x/text/language"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Raw      string // Entire User-Agent header
	Browser  string // "Chrome", "Firefox", "Safari", etc.
	Version  string // "124.0.6367"
	OS       string // "macOS", "Windows", "Android", "iOS", etc.
	Device   string // "Desktop", "Phone", "Tablet", "Bot", ...
	Platform string // "Mac", "Windows", "Linux", "iPad", "iPhone", ...
	IsBot    bool   // Crawler signature matched
}

// RequestInfo is attached to the request context by Enrich.
type RequestInfo struct {
	UA        UA
	Locale    string   // Best configured locale for Accept-Language
	Languages []string // Accept-Language tags, preference order
	IP        net.IP
	URL       *url.URL // Pointer copy, safe to dereference read-only
	Timestamp time.Time
}

//
//  -----------------------------
//  Locale negotiation
//  -----------------------------
//

// Negotiator picks one configured locale for an Accept-Language header.
// Safe for concurrent use.
type Negotiator struct {
	locales []string
	matcher language.Matcher
}

// NewNegotiator builds a Negotiator.  The first locale is the fallback.
func NewNegotiator(locales []string) *Negotiator {
	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		tags = append(tags, language.Make(l))
	}
	return &Negotiator{
		locales: append([]string(nil), locales...),
		matcher: language.NewMatcher(tags),
	}
}

// Match returns the configured locale closest to acceptLang.  An empty or
// unparseable header yields the first configured locale.
func (n *Negotiator) Match(acceptLang string) string {
	if len(n.locales) == 0 {
		return ""
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(prefs) == 0 {
		return n.locales[0]
	}
	_, idx, conf := n.matcher.Match(prefs...)
	if conf == language.No {
		return n.locales[0]
	}
	return n.locales[idx]
}

// languages lists Accept-Language tags, best first.
func languages(acceptLang string) []string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(prefs))
	for _, t := range prefs {
		out = append(out, t.String())
	}
	return out
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer previously stored by Enrich.
// It returns nil if the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// WithInfo returns a copy of ctx carrying info.
func WithInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(uaHeader string) UA {
	u := uasurfer.Parse(uaHeader)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	return UA{
		Raw:      uaHeader,
		Browser:  strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:  trimVersion(u.Browser.Version),
		OS:       osName,
		Device:   deviceTypeToString(u.DeviceType),
		Platform: strings.TrimPrefix(u.OS.Platform.String(), "Platform"),
		IsBot:    u.IsBot(),
	}
}

// trimVersion builds "major.minor.patch" and removes trailing ".0".
func trimVersion(v uasurfer.Version) string {
	s := strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
	for strings.HasSuffix(s, ".0") {
		s = strings.TrimSuffix(s, ".0")
	}
	if s == "" {
		return "0"
	}
	return s
}

// deviceTypeToString maps uasurfer.DeviceType to a user-friendly string.
func deviceTypeToString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}
