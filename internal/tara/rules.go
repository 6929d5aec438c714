package tara

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// ThreatRule — одно правило таблицы: условия срабатывания и шаблон угрозы
type ThreatRule struct {
	ID          string         `yaml:"id"`
	Categories  []string       `yaml:"categories"`
	Interfaces  []string       `yaml:"interfaces"`
	Threat      StrideCategory `yaml:"threat"`
	Vector      string         `yaml:"vector"`
	Description string         `yaml:"description"`
}

type ruleFile struct {
	Rules []ThreatRule `yaml:"rules"`
}

// RuleEngine генерирует кандидатов угроз по таблице правил.
// Правила — данные: новые комбинации актив/интерфейс добавляются
// в rules.yaml без изменения кода.
type RuleEngine struct {
	rules []ThreatRule
}

// NewRuleEngine загружает встроенную таблицу правил
func NewRuleEngine() (*RuleEngine, error) {
	return NewRuleEngineFrom(rulesYAML)
}

// NewRuleEngineFrom загружает таблицу правил из YAML (для тестов
// и кастомных каталогов)
func NewRuleEngineFrom(data []byte) (*RuleEngine, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse threat rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("threat rule table is empty")
	}
	for _, r := range f.Rules {
		if r.ID == "" || r.Threat == "" || r.Description == "" {
			return nil, fmt.Errorf("threat rule %q: id, threat and description are required", r.ID)
		}
	}
	return &RuleEngine{rules: f.Rules}, nil
}

// Rules отдаёт копию таблицы (для отчёта о покрытии правил)
func (e *RuleEngine) Rules() []ThreatRule {
	out := make([]ThreatRule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Threats выдаёт кандидатов угроз для одного актива.
// Чистая функция: одинаковый актив всегда даёт одинаковый набор
// кандидатов в одном и том же порядке (порядок таблицы правил).
func (e *RuleEngine) Threats(asset AssetDescriptor) []ThreatCandidate {
	var out []ThreatCandidate
	for _, r := range e.rules {
		iface, ok := r.match(asset)
		if !ok {
			continue
		}
		out = append(out, ThreatCandidate{
			AssetName:    asset.Name,
			Category:     r.Threat,
			Description:  renderRule(r.Description, asset.Name, iface),
			AttackVector: r.Vector,
		})
	}
	return out
}

// match проверяет условия правила; возвращает первый совпавший
// интерфейс актива (для подстановки в шаблон)
func (r ThreatRule) match(asset AssetDescriptor) (string, bool) {
	if len(r.Categories) > 0 {
		found := false
		for _, c := range r.Categories {
			if AssetCategory(c) == asset.Category {
				found = true
				break
			}
		}
		if !found {
			return "", false
		}
	}

	if len(r.Interfaces) == 0 {
		return "", true
	}
	// порядок перебора фиксирован объявлением интерфейсов актива
	for _, ai := range asset.Interfaces {
		for _, ri := range r.Interfaces {
			if strings.EqualFold(ai, ri) {
				return ai, true
			}
		}
	}
	return "", false
}

func renderRule(tmpl, asset, iface string) string {
	s := strings.ReplaceAll(tmpl, "{asset}", asset)
	return strings.ReplaceAll(s, "{interface}", iface)
}
