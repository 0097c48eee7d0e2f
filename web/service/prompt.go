package service

import (
	"embed"
	"errors"
	"strings"
	"text/template"
)

// The preamble templates are versioned constant assets. Field interpolation
// order and labels follow the production templates and must not be
// reordered: they affect model output reproducibility.
//
//go:embed prompts/*.tmpl
var promptFS embed.FS

var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// ContentTypes are the selectable generation targets.
var ContentTypes = []string{"メールマガジン", "SMS", "SNS投稿"}

// LengthLabels are the selectable target-length labels.
var LengthLabels = []string{
	"短め (100字程度)",
	"標準 (300字程度)",
	"長め (500字程度)",
	"詳細 (1000字以上)",
}

// CheckOptions are the selectable proofreading focus categories.
var CheckOptions = []string{
	"景品表示法への抵触がないか",
	"金融商品取引法への抵触がないか",
	"文法/スペル",
	"わかりやすさ",
	"一貫性",
}

// allAspects substitutes for the check list when nothing is selected.
const allAspects = "すべての側面"

type PromptService struct{}

// BuildGenerationPrompt assembles the generation prompt. The topic must be
// validated non-empty by the caller; the other fields pass through as-is
// with no truncation or sanitization.
func (s *PromptService) BuildGenerationPrompt(contentType string, topic string, length string, additionalInfo string) (string, error) {
	if topic == "" {
		return "", errors.New("topic can not be empty")
	}

	var b strings.Builder
	err := promptTemplates.ExecuteTemplate(&b, "generation.tmpl", struct {
		Type           string
		Topic          string
		Length         string
		AdditionalInfo string
	}{
		Type:           contentType,
		Topic:          topic,
		Length:         length,
		AdditionalInfo: additionalInfo,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// BuildProofreadingPrompt assembles the proofreading prompt around the full
// input text and the comma-joined check categories.
func (s *PromptService) BuildProofreadingPrompt(text string, checks []string) (string, error) {
	joined := allAspects
	if len(checks) > 0 {
		joined = strings.Join(checks, ", ")
	}

	var b strings.Builder
	err := promptTemplates.ExecuteTemplate(&b, "proofreading.tmpl", struct {
		Checks string
		Text   string
	}{
		Checks: joined,
		Text:   text,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
