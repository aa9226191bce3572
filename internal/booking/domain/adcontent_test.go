package domain

import (
	"errors"
	"strings"
	"testing"
)

func validContent() AdContent {
	return AdContent{
		Headline: "Ship faster with Acme",
		Body:     "Acme handles your deploys so you can focus on product.",
		CTAText:  "Try Acme",
		CTAURL:   "https://acme.example.com",
	}
}

func TestValidateAdContentEscapesHTML(t *testing.T) {
	content := validContent()
	content.Headline = "<script>alert('xss')</script>"

	cleaned, err := ValidateAdContent(content)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cleaned.Headline != "&lt;script&gt;alert(&#x27;xss&#x27;)&lt;/script&gt;" {
		t.Fatalf("unexpected headline %q", cleaned.Headline)
	}
}

func TestValidateAdContentLengthLimits(t *testing.T) {
	content := validContent()
	content.Headline = strings.Repeat("a", MaxHeadlineLength+1)
	if _, err := ValidateAdContent(content); !errors.Is(err, ErrInvalidAdContent) {
		t.Fatalf("expected ErrInvalidAdContent for long headline, got %v", err)
	}

	content = validContent()
	content.Body = strings.Repeat("b", MaxBodyLength+1)
	if _, err := ValidateAdContent(content); !errors.Is(err, ErrInvalidAdContent) {
		t.Fatalf("expected ErrInvalidAdContent for long body, got %v", err)
	}

	content = validContent()
	content.CTAText = strings.Repeat("c", MaxCTATextLength+1)
	if _, err := ValidateAdContent(content); !errors.Is(err, ErrInvalidAdContent) {
		t.Fatalf("expected ErrInvalidAdContent for long cta, got %v", err)
	}
}

func TestValidateAdContentRequiredFields(t *testing.T) {
	content := validContent()
	content.Headline = "   "
	if _, err := ValidateAdContent(content); !errors.Is(err, ErrInvalidAdContent) {
		t.Fatalf("expected ErrInvalidAdContent for empty headline, got %v", err)
	}

	content = validContent()
	content.CTAURL = ""
	if _, err := ValidateAdContent(content); !errors.Is(err, ErrInvalidAdContent) {
		t.Fatalf("expected ErrInvalidAdContent for missing url, got %v", err)
	}
}

func TestValidateAdContentURLSchemes(t *testing.T) {
	bad := []string{
		"javascript:alert(1)",
		"data:text/html,<b>x</b>",
		"vbscript:msgbox",
		"ftp://example.com",
		"example.com",
	}
	for _, url := range bad {
		content := validContent()
		content.CTAURL = url
		if _, err := ValidateAdContent(content); !errors.Is(err, ErrInvalidAdContent) {
			t.Fatalf("expected rejection for %q, got %v", url, err)
		}
	}

	content := validContent()
	content.CTAURL = "http://plain.example.com"
	content.ImageURL = "https://cdn.example.com/banner.png"
	cleaned, err := ValidateAdContent(content)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cleaned.ImageURL != "https://cdn.example.com/banner.png" {
		t.Fatalf("unexpected image url %q", cleaned.ImageURL)
	}
}

func TestValidateAdContentOptionalImageURL(t *testing.T) {
	content := validContent()
	content.ImageURL = "   "
	cleaned, err := ValidateAdContent(content)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cleaned.ImageURL != "" {
		t.Fatalf("expected empty image url, got %q", cleaned.ImageURL)
	}
}
