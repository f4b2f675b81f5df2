// Package platform classifies media URLs into the fixed set of supported
// platforms. Matching is substring based over an ordered alias table, so a
// shortener domain (youtu.be, vm.tiktok.com, fb.watch) maps to the same
// platform as its canonical domain.
package platform

import (
	"errors"
	"strings"
)

// ErrUnsupported is returned when a URL matches no known platform domain.
var ErrUnsupported = errors.New("platform: unsupported url")

// Platform identifies one supported source platform.
type Platform string

const (
	YouTube     Platform = "youtube"
	TikTok      Platform = "tiktok"
	Instagram   Platform = "instagram"
	Facebook    Platform = "facebook"
	Twitter     Platform = "twitter"
	Vimeo       Platform = "vimeo"
	Reddit      Platform = "reddit"
	LinkedIn    Platform = "linkedin"
	Pinterest   Platform = "pinterest"
	Dailymotion Platform = "dailymotion"
)

type alias struct {
	substr   string
	platform Platform
}

// Ordered: shorteners and specific hosts before broader substrings. x.com is
// matched as a host token rather than a bare substring to avoid false hits.
var aliases = []alias{
	{"youtu.be", YouTube},
	{"youtube.com", YouTube},
	{"vm.tiktok.com", TikTok},
	{"vt.tiktok.com", TikTok},
	{"tiktok.com", TikTok},
	{"instagr.am", Instagram},
	{"instagram.com", Instagram},
	{"fb.watch", Facebook},
	{"fb.me", Facebook},
	{"facebook.com", Facebook},
	{"twitter.com", Twitter},
	{"t.co/", Twitter},
	{"vimeo.com", Vimeo},
	{"redd.it", Reddit},
	{"reddit.com", Reddit},
	{"lnkd.in", LinkedIn},
	{"linkedin.com", LinkedIn},
	{"pin.it", Pinterest},
	{"pinterest.com", Pinterest},
	{"dai.ly", Dailymotion},
	{"dailymotion.com", Dailymotion},
}

// Resolve classifies rawURL, returning ErrUnsupported when no
// known domain matches. It performs no I/O and is deterministic.
func Resolve(rawURL string) (Platform, error) {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	if u == "" {
		return "", ErrUnsupported
	}
	for _, a := range aliases {
		if strings.Contains(u, a.substr) {
			return a.platform, nil
		}
	}
	// x.com needs a stricter match: "x.com" is a suffix of many hosts.
	if host := hostOf(u); host == "x.com" || strings.HasSuffix(host, ".x.com") {
		return Twitter, nil
	}
	return "", ErrUnsupported
}

func hostOf(u string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(u, "https://"), "http://")
	s = strings.TrimPrefix(s, "www.")
	for i := 0; i < len(s); i++ {
		if s[i] == '/' || s[i] == '?' || s[i] == '#' || s[i] == ':' {
			return s[:i]
		}
	}
	return s
}

// All lists every supported platform in display order.
func All() []Platform {
	return []Platform{
		YouTube, TikTok, Instagram, Facebook, Twitter,
		Vimeo, Reddit, LinkedIn, Pinterest, Dailymotion,
	}
}

// DisplayName returns the human-readable platform name.
func (p Platform) DisplayName() string {
	switch p {
	case YouTube:
		return "YouTube"
	case TikTok:
		return "TikTok"
	case Instagram:
		return "Instagram"
	case Facebook:
		return "Facebook"
	case Twitter:
		return "Twitter/X"
	case Vimeo:
		return "Vimeo"
	case Reddit:
		return "Reddit"
	case LinkedIn:
		return "LinkedIn"
	case Pinterest:
		return "Pinterest"
	case Dailymotion:
		return "Dailymotion"
	default:
		return string(p)
	}
}

// HasOEmbed reports whether the platform exposes a public oEmbed endpoint
// usable as a fast metadata probe.
func (p Platform) HasOEmbed() bool {
	switch p {
	case YouTube, TikTok, Vimeo, Dailymotion:
		return true
	default:
		return false
	}
}

// AuthWalled reports whether the platform commonly refuses anonymous
// extraction. These platforms are eligible for the sample-media degradation
// path when every tier fails.
func (p Platform) AuthWalled() bool {
	switch p {
	case Instagram, Facebook, LinkedIn:
		return true
	default:
		return false
	}
}

// NeedsTranscode reports whether video requests for the platform route to the
// transcode path by default. Twitter catalogs are HLS-only, so a direct byte
// fetch of a progressive file is generally not possible.
func (p Platform) NeedsTranscode() bool {
	return p == Twitter
}

// Referer returns the site root used as Referer/Origin on outbound requests
// for the platform. Several platforms only serve full preview markup or media
// bytes to requests that look like in-site navigation.
func (p Platform) Referer() string {
	switch p {
	case YouTube:
		return "https://www.youtube.com/"
	case TikTok:
		return "https://www.tiktok.com/"
	case Instagram:
		return "https://www.instagram.com/"
	case Facebook:
		return "https://www.facebook.com/"
	case Twitter:
		return "https://x.com/"
	case Vimeo:
		return "https://vimeo.com/"
	case Reddit:
		return "https://www.reddit.com/"
	case LinkedIn:
		return "https://www.linkedin.com/"
	case Pinterest:
		return "https://www.pinterest.com/"
	case Dailymotion:
		return "https://www.dailymotion.com/"
	default:
		return ""
	}
}

// SparseCatalog reports whether the platform typically declares very few
// formats, warranting a looser selector that accepts any HTTP-delivered
// stream over a strict container match.
func (p Platform) SparseCatalog() bool {
	switch p {
	case Reddit, LinkedIn, Pinterest:
		return true
	default:
		return false
	}
}
