package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/chenlehua/tara-sub000/internal/tara"
)

// FallbackEngine — локальные деградированные реализации этапов
// анализа. Работают только на уже имеющихся данных задачи,
// детерминированы и никогда не возвращают ошибку: в худшем случае
// пустой результат, конвейер продолжается.
type FallbackEngine struct {
	rules *tara.RuleEngine
}

func NewFallbackEngine(rules *tara.RuleEngine) *FallbackEngine {
	return &FallbackEngine{rules: rules}
}

// Parse — минимальные структурные метаданные из имён файлов
func (f *FallbackEngine) Parse(files []UploadedFile) ParsedContent {
	out := ParsedContent{Files: make([]ParsedFile, 0, len(files))}
	for _, uf := range files {
		kind := uf.Kind
		if kind == "" {
			kind = kindFromName(uf.Name)
		}
		out.Files = append(out.Files, ParsedFile{
			Name: uf.Name,
			Kind: kind,
		})
	}
	return out
}

// IdentifyAssets — грубая эвристика по именам файлов и их структуре.
// Хуже внешнего сервиса извлечения, но той же формы.
func (f *FallbackEngine) IdentifyAssets(content ParsedContent) []tara.AssetDescriptor {
	var out []tara.AssetDescriptor
	seen := map[string]bool{}
	for _, pf := range content.Files {
		d, ok := assetFromFilename(pf.Name)
		if !ok || seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	return out
}

// AnalyzeThreats — локальный движок правил напрямую; поведенчески
// эквивалентен внешнему анализатору по форме результата
func (f *FallbackEngine) AnalyzeThreats(assets []tara.AssetDescriptor) []tara.ThreatCandidate {
	var out []tara.ThreatCandidate
	for _, a := range assets {
		out = append(out, f.rules.Threats(a)...)
	}
	return out
}

// AssessRisks — оценка по профилю трудоёмкости по умолчанию и
// табличной эвристике ущерба по категории угрозы
func (f *FallbackEngine) AssessRisks(threats []tara.ThreatCandidate) []tara.RiskAssessment {
	var out []tara.RiskAssessment
	for _, t := range threats {
		ra, err := tara.AssessThreat(t, defaultImpact(t.Category), tara.DefaultEffort)
		if err != nil {
			// профиль по умолчанию валиден, сюда не попадаем;
			// на всякий случай пропускаем только эту угрозу
			continue
		}
		out = append(out, ra)
	}
	return out
}

// Recommend — рекомендации из встроенного минимального каталога
func (f *FallbackEngine) Recommend(threats []tara.ThreatCandidate) []Recommendation {
	seen := map[tara.StrideCategory]bool{}
	var out []Recommendation
	for _, t := range threats {
		if seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		out = append(out, Recommendation{
			ThreatCategory: t.Category,
			Measure:        baselineMeasures[t.Category],
			Standard:       "ISO/SAE 21434",
		})
	}
	return out
}

var baselineMeasures = map[tara.StrideCategory]string{
	tara.StrideSpoofing:    "Аутентификация сообщений (SecOC) и взаимная аутентификация сторон",
	tara.StrideTampering:   "Контроль целостности прошивки и подписанные обновления",
	tara.StrideRepudiation: "Защищённый журнал событий безопасности",
	tara.StrideInfoLeak:    "Шифрование данных в хранении и при передаче",
	tara.StrideDoS:         "Ограничение частоты и фильтрация трафика на шлюзе",
	tara.StrideElevation:   "Минимизация привилегий и контроль доступа к диагностике",
}

// эвристика ущерба: категория угрозы → типовой профиль тяжести
func defaultImpact(c tara.StrideCategory) tara.ImpactSet {
	switch c {
	case tara.StrideTampering, tara.StrideElevation:
		return tara.ImpactSet{Safety: tara.SeveritySevere, Operational: tara.SeverityMajor}
	case tara.StrideSpoofing:
		return tara.ImpactSet{Safety: tara.SeverityMajor, Operational: tara.SeverityModerate}
	case tara.StrideDoS:
		return tara.ImpactSet{Operational: tara.SeverityMajor, Safety: tara.SeverityModerate}
	case tara.StrideInfoLeak:
		return tara.ImpactSet{Privacy: tara.SeverityMajor, Financial: tara.SeverityModerate}
	case tara.StrideRepudiation:
		return tara.ImpactSet{Financial: tara.SeverityModerate, Operational: tara.SeverityMinor}
	}
	return tara.ImpactSet{Operational: tara.SeverityModerate}
}

func kindFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "pdf"
	case ".doc", ".docx":
		return "word"
	case ".xls", ".xlsx":
		return "excel"
	case ".dbc":
		return "can_matrix"
	case ".arxml":
		return "autosar"
	default:
		return "unknown"
	}
}

// ключевые слова имени файла → типовой актив
var filenameHints = []struct {
	keyword    string
	category   tara.AssetCategory
	interfaces []string
	attrs      tara.SecurityAttributes
}{
	{"gateway", tara.AssetGateway, []string{"can", "ethernet"},
		tara.SecurityAttributes{Integrity: true, Availability: true, Authorization: true}},
	{"telematic", tara.AssetExternal, []string{"cellular", "wifi"},
		tara.SecurityAttributes{Confidentiality: true, Integrity: true, Authenticity: true}},
	{"tbox", tara.AssetExternal, []string{"cellular"},
		tara.SecurityAttributes{Confidentiality: true, Integrity: true, Authenticity: true}},
	{"sensor", tara.AssetSensor, []string{"can"},
		tara.SecurityAttributes{Integrity: true, Availability: true}},
	{"camera", tara.AssetSensor, []string{"ethernet"},
		tara.SecurityAttributes{Integrity: true, Availability: true, Confidentiality: true}},
	{"firmware", tara.AssetFirmware, nil,
		tara.SecurityAttributes{Integrity: true, Authenticity: true}},
	{"ecu", tara.AssetECU, []string{"can"},
		tara.SecurityAttributes{Integrity: true, Availability: true}},
}

func assetFromFilename(name string) (tara.AssetDescriptor, bool) {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	for _, h := range filenameHints {
		if strings.Contains(base, h.keyword) {
			return tara.AssetDescriptor{
				Name:       assetTitle(base),
				Category:   h.category,
				Interfaces: append([]string(nil), h.interfaces...),
				Attributes: h.attrs,
			}, true
		}
	}
	// документ без распознанных ключевых слов считаем описанием ЭБУ
	if base == "" {
		return tara.AssetDescriptor{}, false
	}
	return tara.AssetDescriptor{
		Name:       assetTitle(base),
		Category:   tara.AssetECU,
		Interfaces: []string{"can"},
		Attributes: tara.SecurityAttributes{Integrity: true, Availability: true},
	}, true
}

func assetTitle(base string) string {
	s := strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.TrimSpace(s)
}
