package memeerr

import "fmt"

// Kind is the semantic category of a failed meme-generator call.
type Kind string

const (
	KindUnknown Kind = ""

	KindNoSuchMeme          Kind = "no-such-meme"
	KindTextOverLength      Kind = "text-over-length"
	KindOpenImageFailed     Kind = "open-image-failed"
	KindParserExit          Kind = "parser-exit"
	KindParamsMismatch      Kind = "params-mismatch"
	KindImageNumberMismatch Kind = "image-number-mismatch"
	KindTextNumberMismatch  Kind = "text-number-mismatch"
	KindTextOrNameNotEnough Kind = "text-or-name-not-enough"
	KindArgMismatch         Kind = "arg-mismatch"
	KindArgParserMismatch   Kind = "arg-parser-mismatch"
	KindArgModelMismatch    Kind = "arg-model-mismatch"
	KindGeneratorError      Kind = "meme-generator-error"

	KindImageDecodeError  Kind = "image-decode-error"
	KindImageEncodeError  Kind = "image-encode-error"
	KindImageAssetMissing Kind = "image-asset-missing"
	KindDeserializeError  Kind = "deserialize-error"
	KindMemeFeedback      Kind = "meme-feedback"
)

// String returns the kind label, "unknown" for KindUnknown.
func (k Kind) String() string {
	if k == KindUnknown {
		return "unknown"
	}
	return string(k)
}

// Matcher tests a numeric code against either a single value or an inclusive range.
type Matcher struct {
	low, high int
}

// Exact matches exactly one code.
func Exact(code int) Matcher { return Matcher{low: code, high: code} }

// Range matches every code in [low, high].
func Range(low, high int) Matcher {
	if low > high {
		low, high = high, low
	}
	return Matcher{low: low, high: high}
}

// Matches reports whether code is accepted by m.
func (m Matcher) Matches(code int) bool {
	return code >= m.low && code <= m.high
}

// IsRange reports whether m spans more than one code.
func (m Matcher) IsRange() bool { return m.low != m.high }

// Bounds returns the inclusive bounds of m.
func (m Matcher) Bounds() (low, high int) { return m.low, m.high }

func (m Matcher) String() string {
	if m.IsRange() {
		return fmt.Sprintf("Range(%d, %d)", m.low, m.high)
	}
	return fmt.Sprintf("Exact(%d)", m.low)
}

// KindRule binds a Kind to the status codes it covers.
type KindRule struct {
	Kind  Kind
	Match Matcher
}

// statusRules is evaluated in order and the first match wins. Exact entries that sit
// inside a range are listed before that range.
var statusRules = []KindRule{
	{Kind: KindNoSuchMeme, Match: Exact(531)},
	{Kind: KindTextOverLength, Match: Exact(532)},
	{Kind: KindOpenImageFailed, Match: Exact(533)},
	{Kind: KindParserExit, Match: Exact(534)},
	{Kind: KindImageNumberMismatch, Match: Exact(541)},
	{Kind: KindTextNumberMismatch, Match: Exact(542)},
	{Kind: KindTextOrNameNotEnough, Match: Exact(543)},
	{Kind: KindParamsMismatch, Match: Range(540, 549)},
	{Kind: KindArgParserMismatch, Match: Exact(551)},
	{Kind: KindArgModelMismatch, Match: Exact(552)},
	{Kind: KindArgMismatch, Match: Range(550, 559)},
	{Kind: KindGeneratorError, Match: Range(520, 529)},
}

// StatusRules returns a copy of the ordered status classification table.
func StatusRules() []KindRule {
	out := make([]KindRule, len(statusRules))
	copy(out, statusRules)
	return out
}

// KindForStatus returns the first kind whose matcher accepts status.
func KindForStatus(status int) Kind {
	for _, rule := range statusRules {
		if rule.Match.Matches(status) {
			return rule.Kind
		}
	}
	return KindUnknown
}
