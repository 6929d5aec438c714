package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/chenlehua/tara-sub000/internal/pipeline"
	"github.com/chenlehua/tara-sub000/internal/tara"
)

// LLMAnalyzer — анализаторы на базе LLM: идентификация активов,
// анализ угроз и оценка факторов риска. Модель отдаёт строгий JSON;
// арифметика рейтингов (потенциал атаки, матрица рисков) всегда
// считается локально, чтобы результат оставался детерминированным
// относительно входных факторов.
type LLMAnalyzer struct {
	client *openai.Client
	model  string
}

func NewLLMAnalyzer(apiKey, model string) *LLMAnalyzer {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &LLMAnalyzer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

const systemPrompt = "Ты — аналитик кибербезопасности автомобильных систем (ISO/SAE 21434). " +
	"Отвечай строго одним JSON-массивом без пояснений и без markdown."

func (a *LLMAnalyzer) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return stripFences(resp.Choices[0].Message.Content), nil
}

// Identify реализует pipeline.AssetIdentifier
func (a *LLMAnalyzer) Identify(ctx context.Context, content pipeline.ParsedContent) ([]tara.AssetDescriptor, error) {
	in, _ := json.Marshal(content)
	prompt := fmt.Sprintf(
		"Выдели активы транспортного средства из разобранных документов.\n"+
			"Документы: %s\n"+
			"Формат ответа: [{\"name\":string,\"category\":одно из "+
			"[ecu,gateway,bus,sensor,external_interface,backend,firmware,data_store],"+
			"\"interfaces\":[string],\"attributes\":{\"confidentiality\":bool,\"integrity\":bool,"+
			"\"availability\":bool,\"authenticity\":bool,\"authorization\":bool,\"non_repudiation\":bool}}]",
		in)

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var assets []tara.AssetDescriptor
	if err := json.Unmarshal([]byte(raw), &assets); err != nil {
		return nil, fmt.Errorf("decode asset list: %w", err)
	}
	return assets, nil
}

// Analyze реализует pipeline.ThreatAnalyzer
func (a *LLMAnalyzer) Analyze(ctx context.Context, assets []tara.AssetDescriptor) ([]tara.ThreatCandidate, error) {
	in, _ := json.Marshal(assets)
	prompt := fmt.Sprintf(
		"Сформируй угрозы STRIDE для активов.\n"+
			"Активы: %s\n"+
			"Формат ответа: [{\"asset_name\":string,\"category\":одно из "+
			"[spoofing,tampering,repudiation,information_disclosure,denial_of_service,elevation_of_privilege],"+
			"\"description\":string,\"attack_vector\":string}]",
		in)

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var threats []tara.ThreatCandidate
	if err := json.Unmarshal([]byte(raw), &threats); err != nil {
		return nil, fmt.Errorf("decode threat list: %w", err)
	}
	return threats, nil
}

// ответ модели на оценку риска: индексы факторов и тяжесть ущерба;
// рейтинг считается локально
type riskEstimate struct {
	ThreatIndex int                   `json:"threat_index"`
	Impact      tara.ImpactSet        `json:"impact"`
	Effort      tara.AttackPathEffort `json:"effort"`
}

// Assess реализует pipeline.RiskAssessor
func (a *LLMAnalyzer) Assess(ctx context.Context, threats []tara.ThreatCandidate) ([]tara.RiskAssessment, error) {
	in, _ := json.Marshal(threats)
	prompt := fmt.Sprintf(
		"Оцени для каждой угрозы тяжесть ущерба (0=negligible..4=severe по категориям "+
			"safety/financial/operational/privacy) и факторы трудоёмкости атаки "+
			"(elapsed_time 0..4, expertise 0..3, knowledge 0..3, window 0..3, equipment 0..3).\n"+
			"Угрозы: %s\n"+
			"Формат ответа: [{\"threat_index\":int,\"impact\":{\"safety\":int,\"financial\":int,"+
			"\"operational\":int,\"privacy\":int},\"effort\":{\"elapsed_time\":int,\"expertise\":int,"+
			"\"knowledge\":int,\"window\":int,\"equipment\":int}}]",
		in)

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var estimates []riskEstimate
	if err := json.Unmarshal([]byte(raw), &estimates); err != nil {
		return nil, fmt.Errorf("decode risk estimates: %w", err)
	}

	var out []tara.RiskAssessment
	for _, est := range estimates {
		if est.ThreatIndex < 0 || est.ThreatIndex >= len(threats) {
			continue
		}
		ra, err := tara.AssessThreat(threats[est.ThreatIndex], est.Impact, est.Effort)
		if err != nil {
			// фактор вне шкалы — отбрасываем только эту оценку
			log.Printf("risk estimate for threat %d rejected: %v", est.ThreatIndex, err)
			continue
		}
		out = append(out, ra)
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
