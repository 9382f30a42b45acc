package agent

import (
	"errors"
	"strings"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter"
)

// Kind is the category of a failed model round-trip.
type Kind int

const (
	KindOther Kind = iota
	KindQuota
	KindRateLimited
	KindInvalidCredential
)

func (k Kind) String() string {
	switch k {
	case KindQuota:
		return "quota"
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidCredential:
		return "invalid_credential"
	default:
		return "other"
	}
}

// Fixed texts for each Kind. KindOther is prefixed to the error message.
const (
	QuotaText      = "CREDITS: Out of credits! Check https://platform.openai.com/usage"
	RateText       = "RATE: Rate limit reached. Please wait a minute and try again."
	CredentialText = "KEY: Invalid API key. Check your .env file."
	otherPrefix    = "ERROR: Error: "
	otherMaxLen    = 300
)

// Classify maps a transport error to a Kind by matching its message. The
// first match wins, in the order quota, rate limit, credential.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "insufficient_quota"), strings.Contains(lower, "quota"):
		return KindQuota
	case strings.Contains(lower, "rate"), isRateLimitError(err):
		return KindRateLimited
	case strings.Contains(lower, "invalid"), strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"):
		return KindInvalidCredential
	default:
		return KindOther
	}
}

// Text returns the terminal text for a failed round-trip.
func Text(kind Kind, err error) string {
	switch kind {
	case KindQuota:
		return QuotaText
	case KindRateLimited:
		return RateText
	case KindInvalidCredential:
		return CredentialText
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if r := []rune(msg); len(r) > otherMaxLen {
		msg = string(r[:otherMaxLen])
	}

	return otherPrefix + msg
}

func isRateLimitError(err error) bool {
	var rl *modeladapter.RateLimitError
	return errors.As(err, &rl)
}
