// Package provider wraps the optional OCR and speech-to-text backends.
// Neither performs remote calls in this build; each reports whether it
// holds credentials and otherwise tells the client to fall back to its
// own on-device capability.
package provider

import (
	"regexp"
	"strings"

	"gks/record-service/internal/models"
)

// Result is the success-shaped envelope both facades answer with. When
// the backend is unconfigured UseBrowser flags client-side fallback
// instead of a hard error.
type Result struct {
	Success    bool   `json:"success"`
	UseBrowser bool   `json:"use_browser"`
	Provider   string `json:"provider,omitempty"`
	Text       string `json:"text,omitempty"`
	Plate      string `json:"plate,omitempty"`
	Message    string `json:"message,omitempty"`
}

type Status struct {
	Configured bool   `json:"configured"`
	Provider   string `json:"provider,omitempty"`
}

func OCRStatus(settings models.Settings) Status {
	return Status{
		Configured: settings.OCRProvider == "vision" && settings.VisionAPIKey != "",
		Provider:   orDefault(settings.OCRProvider, "browser"),
	}
}

func VoiceStatus(settings models.Settings) Status {
	return Status{
		Configured: settings.VoiceProvider == "openai" && settings.OpenAIAPIKey != "",
		Provider:   orDefault(settings.VoiceProvider, "browser"),
	}
}

// DetectText runs server-side OCR when configured. Remote calls are not
// wired in this deployment, so the answer is always the browser
// fallback; the message distinguishes the two states for operators.
func DetectText(settings models.Settings, _ []byte) Result {
	status := OCRStatus(settings)
	if !status.Configured {
		return Result{UseBrowser: true, Provider: status.Provider, Message: "ocr provider not configured"}
	}
	return Result{UseBrowser: true, Provider: status.Provider, Message: "server-side ocr disabled in this deployment"}
}

var plateRe = regexp.MustCompile(`\b\d{2}\s?[A-Z]{1,3}\s?\d{2,4}\b`)

// DetectPlate is DetectText plus a plate-shaped extraction over any
// recognized text.
func DetectPlate(settings models.Settings, image []byte) Result {
	result := DetectText(settings, image)
	if result.Text != "" {
		if match := plateRe.FindString(result.Text); match != "" {
			result.Plate = strings.ReplaceAll(match, " ", "")
		}
	}
	return result
}

func Transcribe(settings models.Settings, _ []byte, language string) Result {
	status := VoiceStatus(settings)
	if !status.Configured {
		return Result{UseBrowser: true, Provider: status.Provider, Message: "voice provider not configured"}
	}
	return Result{UseBrowser: true, Provider: status.Provider, Message: "server-side transcription disabled in this deployment"}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
