package domain

import (
	"fmt"
	"strings"
)

const (
	MaxHeadlineLength = 100
	MaxBodyLength     = 500
	MaxCTATextLength  = 50
	MaxURLLength      = 2048
)

type AdContent struct {
	Headline string `json:"ad_headline"`
	Body     string `json:"ad_body"`
	CTAText  string `json:"ad_cta_text"`
	CTAURL   string `json:"ad_cta_url"`
	ImageURL string `json:"ad_image_url"`
}

// Sanitize escapes HTML-sensitive characters so stored ad copy can be
// embedded into newsletter templates as-is.
func Sanitize(input string) string {
	replaced := strings.NewReplacer(
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
	).Replace(input)
	return strings.TrimSpace(replaced)
}

// ValidateAdContent sanitizes and validates sponsor-submitted ad copy.
// It returns the cleaned content or an ErrInvalidAdContent-wrapped
// error naming the offending field.
func ValidateAdContent(content AdContent) (AdContent, error) {
	headline := Sanitize(content.Headline)
	if headline == "" {
		return AdContent{}, fmt.Errorf("%w: headline is required", ErrInvalidAdContent)
	}
	if len(headline) > MaxHeadlineLength {
		return AdContent{}, fmt.Errorf("%w: headline exceeds %d characters", ErrInvalidAdContent, MaxHeadlineLength)
	}

	body := Sanitize(content.Body)
	if body == "" {
		return AdContent{}, fmt.Errorf("%w: body is required", ErrInvalidAdContent)
	}
	if len(body) > MaxBodyLength {
		return AdContent{}, fmt.Errorf("%w: body exceeds %d characters", ErrInvalidAdContent, MaxBodyLength)
	}

	ctaText := Sanitize(content.CTAText)
	if len(ctaText) > MaxCTATextLength {
		return AdContent{}, fmt.Errorf("%w: cta text exceeds %d characters", ErrInvalidAdContent, MaxCTATextLength)
	}

	ctaURL, err := validateURL(content.CTAURL)
	if err != nil {
		return AdContent{}, err
	}

	imageURL := strings.TrimSpace(content.ImageURL)
	if imageURL != "" {
		imageURL, err = validateURL(imageURL)
		if err != nil {
			return AdContent{}, err
		}
	}

	return AdContent{
		Headline: headline,
		Body:     body,
		CTAText:  ctaText,
		CTAURL:   ctaURL,
		ImageURL: imageURL,
	}, nil
}

func validateURL(raw string) (string, error) {
	url := strings.TrimSpace(raw)
	if url == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidAdContent)
	}
	if len(url) > MaxURLLength {
		return "", fmt.Errorf("%w: url exceeds %d characters", ErrInvalidAdContent, MaxURLLength)
	}

	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "vbscript:") {
		return "", fmt.Errorf("%w: url protocol not allowed", ErrInvalidAdContent)
	}
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "", fmt.Errorf("%w: url must start with http:// or https://", ErrInvalidAdContent)
	}
	return url, nil
}
