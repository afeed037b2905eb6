package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"medication-tracker/internal/platform/logger"
	"medication-tracker/internal/ports/medinfo"
)

// Provider implementa medinfo.Provider sobre el cliente Gemini.
// El contrato con el modelo es "sólo JSON": los prompts piden únicamente
// el array/objeto y acá se tolera texto extra alrededor (fences, preámbulos).
type Provider struct {
	client *Client
	log    logger.Logger
}

func NewProvider(client *Client, log logger.Logger) *Provider {
	return &Provider{client: client, log: log}
}

func (p *Provider) CheckInteractions(ctx context.Context, meds []medinfo.Medication) ([]medinfo.Interaction, error) {
	// Con menos de dos medicamentos no hay nada que cruzar.
	if len(meds) < 2 {
		return []medinfo.Interaction{}, nil
	}

	names := make([]string, 0, len(meds))
	for _, m := range meds {
		names = append(names, fmt.Sprintf("%s (%s)", m.Name, m.Dosage))
	}

	var sb strings.Builder
	sb.WriteString("I need to check for potential drug interactions between the following medications:\n")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString("\n\nPlease provide a detailed analysis of any potential interactions in the following JSON format:\n")
	sb.WriteString(`[
  {
    "medications": [{"name": "MedicationA"}, {"name": "MedicationB"}],
    "severity": "HIGH|MEDIUM|LOW",
    "description": "Detailed description of the interaction",
    "recommendation": "Recommendation for managing this interaction"
  }
]`)
	sb.WriteString("\n\nIf there are no known interactions, return an empty array.\n")
	sb.WriteString("Only return the JSON array, nothing else.\n")

	raw, err := p.client.Generate(ctx, sb.String())
	if err != nil {
		return nil, err
	}

	items, ok := p.parseInteractions(raw)
	if !ok {
		// Output no parseable => lista vacía, no error (mejor degradar que romper).
		return []medinfo.Interaction{}, nil
	}

	// IDs sintéticos + resolución de IDs reales por nombre.
	byName := make(map[string]string, len(meds))
	for _, m := range meds {
		byName[strings.ToLower(strings.TrimSpace(m.Name))] = m.ID
	}

	out := make([]medinfo.Interaction, 0, len(items))
	for i, it := range items {
		it.ID = fmt.Sprintf("generated-%d", i)
		for j := range it.Medications {
			key := strings.ToLower(strings.TrimSpace(it.Medications[j].Name))
			if id, found := byName[key]; found {
				it.Medications[j].ID = id
			} else {
				it.Medications[j].ID = fmt.Sprintf("unknown-%d", j)
			}
		}
		out = append(out, it)
	}
	return out, nil
}

func (p *Provider) CheckTextInteractions(ctx context.Context, text string) ([]medinfo.Interaction, error) {
	if strings.TrimSpace(text) == "" {
		return []medinfo.Interaction{}, nil
	}

	var sb strings.Builder
	sb.WriteString("I need to check for potential drug interactions between medications listed in the following text:\n")
	sb.WriteString(fmt.Sprintf("%q\n\n", text))
	sb.WriteString("First, identify all distinct medications mentioned. If brand names are provided, convert to generic names.\n")
	sb.WriteString("Then analyze all possible interactions between these medications.\n\n")
	sb.WriteString("Please provide a detailed analysis of any potential interactions in the following JSON format:\n")
	sb.WriteString(`[
  {
    "medications": [{"name": "MedicationA"}, {"name": "MedicationB"}],
    "severity": "HIGH|MEDIUM|LOW",
    "description": "Detailed description of the interaction and mechanism",
    "recommendation": "Clinical recommendation for managing this interaction"
  }
]`)
	sb.WriteString("\n\nFollow these guidelines:\n")
	sb.WriteString("1. Always classify severity as exactly \"HIGH\", \"MEDIUM\", or \"LOW\" (uppercase)\n")
	sb.WriteString("2. For HIGH severity interactions, include urgent precautions in the recommendation\n")
	sb.WriteString("3. For all interactions, explain the mechanism and clinical consequences\n")
	sb.WriteString("4. If there are no known interactions, return an empty array\n")
	sb.WriteString("5. Only return the JSON array, nothing else\n")

	raw, err := p.client.Generate(ctx, sb.String())
	if err != nil {
		return nil, err
	}

	items, ok := p.parseInteractions(raw)
	if !ok {
		return []medinfo.Interaction{}, nil
	}

	out := make([]medinfo.Interaction, 0, len(items))
	for i, it := range items {
		it.ID = fmt.Sprintf("text-generated-%d", i)
		for j := range it.Medications {
			it.Medications[j].ID = fmt.Sprintf("text-%d", j)
		}
		out = append(out, it)
	}
	return out, nil
}

func (p *Provider) MedicationInfo(ctx context.Context, name string) (medinfo.MedicationInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return medinfo.MedicationInfo{}, medinfo.ErrNoInfo
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Please provide detailed information about the medication %q in the following JSON format:\n", name))
	sb.WriteString(`{
  "name": "Full medication name",
  "description": "Brief description of the medication",
  "usedFor": ["Condition 1", "Condition 2"],
  "sideEffects": ["Side effect 1", "Side effect 2"],
  "warnings": ["Warning 1", "Warning 2"],
  "interactions": ["Interaction 1", "Interaction 2"],
  "dosageInfo": "General dosage information"
}`)
	sb.WriteString("\n\nOnly return the JSON object, nothing else.\n")

	raw, err := p.client.Generate(ctx, sb.String())
	if err != nil {
		return medinfo.MedicationInfo{}, err
	}

	jsonStr, ok := extractJSON(raw, '{', '}')
	if !ok {
		p.logWarn("medication info: no json object in model output", nil)
		return medinfo.MedicationInfo{}, medinfo.ErrNoInfo
	}

	var info medinfo.MedicationInfo
	if err := json.Unmarshal([]byte(jsonStr), &info); err != nil {
		p.logWarn("medication info: invalid json from model", map[string]any{"error": err.Error()})
		return medinfo.MedicationInfo{}, medinfo.ErrNoInfo
	}
	return info, nil
}

func (p *Provider) parseInteractions(raw string) ([]medinfo.Interaction, bool) {
	jsonStr, ok := extractJSON(raw, '[', ']')
	if !ok {
		p.logWarn("interactions: no json array in model output", nil)
		return nil, false
	}

	var items []medinfo.Interaction
	if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
		p.logWarn("interactions: invalid json from model", map[string]any{"error": err.Error()})
		return nil, false
	}
	return items, true
}

func (p *Provider) logWarn(msg string, fields map[string]any) {
	if p.log == nil {
		return
	}
	p.log.Warn(msg, fields)
}

// extractJSON recorta el primer bloque delimitado por open/close, tolerando
// fences de markdown y texto alrededor.
func extractJSON(raw string, opening, closing byte) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, opening)
	end := strings.LastIndexByte(s, closing)
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
