package diagnosis

import (
	"strings"

	"oralscan-backend/internal/models"
)

const promptPreamble = `You are an experienced oral pathologist assisting with oral cancer screening.
Examine the attached image of the patient's oral cavity together with the patient history below.
Describe what is visible, weigh it against the reported risk factors and symptoms, and give a preliminary risk assessment.
This is a screening aid for a clinician and not a final diagnosis.`

const promptOutputFormat = `Respond using exactly this format:
CONFIDENCE_LEVEL: <integer from 0 to 100>%
RISK_LEVEL: <LOW, MEDIUM or HIGH>
ANALYSIS: <visible findings, how the history changes the risk, differential considerations and recommended next steps>`

type historyLine struct {
	label string
	value func(h *models.PatientHistory) string
}

// Order here is the order in the prompt.
var historyLines = []historyLine{
	{"Age range", func(h *models.PatientHistory) string { return h.AgeRange }},
	{"Gender", func(h *models.PatientHistory) string { return h.Gender }},
	{"Tobacco use", func(h *models.PatientHistory) string { return h.TobaccoUse }},
	{"Tobacco types", func(h *models.PatientHistory) string { return joinList(h.TobaccoTypes) }},
	{"Alcohol consumption", func(h *models.PatientHistory) string { return h.AlcoholUse }},
	{"Betel nut use", func(h *models.PatientHistory) string { return h.BetelNutUse }},
	{"HPV status", func(h *models.PatientHistory) string { return h.HPVStatus }},
	{"Family history of oral cancer", func(h *models.PatientHistory) string { return yesNo(h.FamilyHistory) }},
	{"Previous oral lesions", func(h *models.PatientHistory) string { return yesNo(h.PreviousLesions) }},
	{"Symptoms", func(h *models.PatientHistory) string { return joinList(h.Symptoms) }},
	{"Symptom duration", func(h *models.PatientHistory) string { return h.SymptomDuration }},
	{"Lesion location", func(h *models.PatientHistory) string { return h.LesionLocation }},
	{"Lesion size", func(h *models.PatientHistory) string { return h.LesionSize }},
	{"Lesion color", func(h *models.PatientHistory) string { return h.LesionColor }},
	{"Lesion texture", func(h *models.PatientHistory) string { return h.LesionTexture }},
	{"Pain level", func(h *models.PatientHistory) string { return h.PainLevel }},
	{"Bleeding", func(h *models.PatientHistory) string { return yesNo(h.Bleeding) }},
	{"Additional notes", func(h *models.PatientHistory) string { return h.AdditionalNotes }},
}

// ComposePrompt renders the fixed preamble, one "Label: value" line per
// answered history field, and the output-format block. Unanswered fields are
// left out entirely.
func ComposePrompt(h *models.PatientHistory) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\n")

	if h == nil {
		b.WriteString("No patient history was provided.\n")
	} else {
		b.WriteString("Patient history\n")
		for _, line := range historyLines {
			v := strings.TrimSpace(line.value(h))
			if v == "" {
				continue
			}
			b.WriteString("- ")
			b.WriteString(line.label)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteByte('\n')
		}
	}

	b.WriteByte('\n')
	b.WriteString(promptOutputFormat)
	return b.String()
}

func yesNo(v *bool) string {
	switch {
	case v == nil:
		return ""
	case *v:
		return "Yes"
	default:
		return "No"
	}
}

func joinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	return strings.Join(kept, ", ")
}
