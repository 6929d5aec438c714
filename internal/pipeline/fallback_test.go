package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenlehua/tara-sub000/internal/tara"
)

func newFallback(t *testing.T) *FallbackEngine {
	t.Helper()
	rules, err := tara.NewRuleEngine()
	require.NoError(t, err)
	return NewFallbackEngine(rules)
}

func TestFallbackParseKinds(t *testing.T) {
	f := newFallback(t)

	content := f.Parse([]UploadedFile{
		{Name: "архитектура_шлюза.pdf"},
		{Name: "matrix.dbc"},
		{Name: "ecu_config.arxml"},
		{Name: "notes.txt"},
		{Name: "report.docx", Kind: "word"},
	})

	require.Len(t, content.Files, 5)
	assert.Equal(t, "pdf", content.Files[0].Kind)
	assert.Equal(t, "can_matrix", content.Files[1].Kind)
	assert.Equal(t, "autosar", content.Files[2].Kind)
	assert.Equal(t, "unknown", content.Files[3].Kind)
	// уже известный тип не перетирается
	assert.Equal(t, "word", content.Files[4].Kind)
}

func TestFallbackIdentifyAssets(t *testing.T) {
	f := newFallback(t)

	tests := []struct {
		name     string
		filename string
		category tara.AssetCategory
	}{
		{"шлюз по ключевому слову", "Central_Gateway_spec.pdf", tara.AssetGateway},
		{"телематика", "telematics_unit.docx", tara.AssetExternal},
		{"сенсор", "front_sensor_can.xlsx", tara.AssetSensor},
		{"неизвестный документ считается ЭБУ", "powertrain_module.pdf", tara.AssetECU},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			content := f.Parse([]UploadedFile{{Name: tc.filename}})
			assets := f.IdentifyAssets(content)
			require.Len(t, assets, 1)
			assert.Equal(t, tc.category, assets[0].Category)
			assert.NotEmpty(t, assets[0].Name)
		})
	}
}

func TestFallbackIdentifyAssetsDedup(t *testing.T) {
	f := newFallback(t)

	content := f.Parse([]UploadedFile{
		{Name: "gateway.pdf"},
		{Name: "gateway.docx"},
	})
	assets := f.IdentifyAssets(content)
	assert.Len(t, assets, 1)
}

func TestFallbackAnalyzeThreatsDeterministic(t *testing.T) {
	f := newFallback(t)

	assets := []tara.AssetDescriptor{
		{Name: "bcm", Category: tara.AssetECU, Interfaces: []string{"can", "lin"}},
		{Name: "tbox", Category: tara.AssetExternal, Interfaces: []string{"cellular"}},
	}

	first := f.AnalyzeThreats(assets)
	require.NotEmpty(t, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, f.AnalyzeThreats(assets))
	}
}

func TestFallbackAssessRisksNeverFails(t *testing.T) {
	f := newFallback(t)

	// пустой вход — пустой результат, без паники и без ошибки
	assert.Empty(t, f.AssessRisks(nil))

	threats := []tara.ThreatCandidate{
		{AssetName: "gw", Category: tara.StrideTampering},
		{AssetName: "gw", Category: tara.StrideInfoLeak},
		{AssetName: "gw", Category: tara.StrideCategory("unknown_category")},
	}
	risks := f.AssessRisks(threats)
	require.Len(t, risks, 3)
	for _, r := range risks {
		assert.GreaterOrEqual(t, r.Level, tara.RiskLow)
		assert.LessOrEqual(t, r.Level, tara.RiskCritical)
		assert.Equal(t, tara.FeasibilityLow, r.Feasibility)
	}

	// tampering бьёт по safety сильнее, чем утечка по privacy
	assert.Greater(t, int(risks[0].Level), 0)
	assert.Equal(t, tara.SeveritySevere, risks[0].Impact.Safety)
	assert.Equal(t, tara.SeverityMajor, risks[1].Impact.Privacy)
}

func TestFallbackRecommendCoversCategories(t *testing.T) {
	f := newFallback(t)

	threats := []tara.ThreatCandidate{
		{Category: tara.StrideSpoofing},
		{Category: tara.StrideSpoofing},
		{Category: tara.StrideDoS},
	}
	recs := f.Recommend(threats)
	require.Len(t, recs, 2)
	assert.Equal(t, tara.StrideSpoofing, recs[0].ThreatCategory)
	assert.Equal(t, tara.StrideDoS, recs[1].ThreatCategory)
	for _, r := range recs {
		assert.NotEmpty(t, r.Measure)
	}
}
