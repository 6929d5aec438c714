package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenlehua/tara-sub000/internal/tara"
)

// фейки внешних сервисов

type fakeParser struct {
	content ParsedContent
	err     error
	delay   time.Duration
}

func (f *fakeParser) Parse(ctx context.Context, files []UploadedFile) (ParsedContent, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ParsedContent{}, ctx.Err()
		}
	}
	return f.content, f.err
}

type fakeIdentifier struct {
	assets []tara.AssetDescriptor
	err    error
}

func (f *fakeIdentifier) Identify(ctx context.Context, content ParsedContent) ([]tara.AssetDescriptor, error) {
	return f.assets, f.err
}

type fakeAnalyzer struct {
	threats []tara.ThreatCandidate
	err     error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, assets []tara.AssetDescriptor) ([]tara.ThreatCandidate, error) {
	return f.threats, f.err
}

type fakeAssessor struct {
	risks []tara.RiskAssessment
	err   error
}

func (f *fakeAssessor) Assess(ctx context.Context, threats []tara.ThreatCandidate) ([]tara.RiskAssessment, error) {
	return f.risks, f.err
}

func newTestExecutor(t *testing.T, collab Collaborators, timeout time.Duration) *StageExecutor {
	t.Helper()
	rules, err := tara.NewRuleEngine()
	require.NoError(t, err)
	return NewStageExecutor(collab, NewFallbackEngine(rules), timeout)
}

func TestParseFatalOnEmptyInput(t *testing.T) {
	e := newTestExecutor(t, Collaborators{}, time.Second)

	_, _, err := e.Parse(context.Background(), nil)
	assert.Error(t, err)

	_, _, err = e.Parse(context.Background(), []UploadedFile{{Name: ""}})
	assert.Error(t, err)
}

func TestParseRemoteSuccess(t *testing.T) {
	remote := ParsedContent{Files: []ParsedFile{{Name: "spec.pdf", Kind: "pdf", Tables: 3}}}
	e := newTestExecutor(t, Collaborators{Parser: &fakeParser{content: remote}}, time.Second)

	content, degraded, err := e.Parse(context.Background(), []UploadedFile{{Name: "spec.pdf"}})
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, remote, content)
}

func TestParseFallbackOnRemoteError(t *testing.T) {
	e := newTestExecutor(t, Collaborators{Parser: &fakeParser{err: errors.New("boom")}}, time.Second)

	content, degraded, err := e.Parse(context.Background(), []UploadedFile{{Name: "gateway_spec.pdf"}})
	require.NoError(t, err)
	assert.True(t, degraded)
	require.Len(t, content.Files, 1)
	assert.Equal(t, "pdf", content.Files[0].Kind)
}

func TestParseFallbackOnTimeout(t *testing.T) {
	e := newTestExecutor(t, Collaborators{
		Parser: &fakeParser{
			content: ParsedContent{Files: []ParsedFile{{Name: "x"}}},
			delay:   200 * time.Millisecond,
		},
	}, 20*time.Millisecond)

	_, degraded, err := e.Parse(context.Background(), []UploadedFile{{Name: "ecu.docx"}})
	require.NoError(t, err)
	assert.True(t, degraded)
}

func TestIdentifyAssetsRejectsMalformedRemote(t *testing.T) {
	// актив без имени — некорректная форма ответа, уходим в фолбэк
	e := newTestExecutor(t, Collaborators{
		Assets: &fakeIdentifier{assets: []tara.AssetDescriptor{{Category: tara.AssetECU}}},
	}, time.Second)

	content := ParsedContent{Files: []ParsedFile{{Name: "engine_ecu.docx"}}}
	assets, degraded, err := e.IdentifyAssets(context.Background(), content)
	require.NoError(t, err)
	assert.True(t, degraded)
	require.NotEmpty(t, assets)
	assert.Equal(t, tara.AssetECU, assets[0].Category)
}

func TestAnalyzeThreatsRemoteSuccess(t *testing.T) {
	remote := []tara.ThreatCandidate{{
		AssetName: "gw", Category: tara.StrideTampering, Description: "x",
	}}
	e := newTestExecutor(t, Collaborators{Threats: &fakeAnalyzer{threats: remote}}, time.Second)

	threats, degraded, err := e.AnalyzeThreats(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, remote, threats)
}

func TestAssessRisksFallbackOnError(t *testing.T) {
	e := newTestExecutor(t, Collaborators{Risks: &fakeAssessor{err: errors.New("llm down")}}, time.Second)

	threats := []tara.ThreatCandidate{{
		AssetName: "ecu", Category: tara.StrideSpoofing, Description: "x",
	}}
	risks, degraded, err := e.AssessRisks(context.Background(), threats)
	require.NoError(t, err)
	assert.True(t, degraded)
	require.Len(t, risks, 1)
	// профиль трудоёмкости по умолчанию даёт низкую осуществимость
	assert.Equal(t, tara.FeasibilityLow, risks[0].Feasibility)
}

func TestAssessRisksRejectsOversizedRemote(t *testing.T) {
	// оценок больше, чем угроз — некорректный ответ
	e := newTestExecutor(t, Collaborators{
		Risks: &fakeAssessor{risks: []tara.RiskAssessment{
			{Level: tara.RiskLow}, {Level: tara.RiskLow},
		}},
	}, time.Second)

	threats := []tara.ThreatCandidate{{AssetName: "a", Category: tara.StrideDoS}}
	risks, degraded, err := e.AssessRisks(context.Background(), threats)
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.Len(t, risks, 1)
}
