package pipeline

// Этапы конвейера генерации. Выполняются строго по порядку,
// этап не пропускается — при недоступности внешнего сервиса
// он выполняется локальной деградированной реализацией.
type Stage int

const (
	StageParse Stage = iota
	StageIdentifyAssets
	StageAnalyzeThreats
	StageAssessRisk
	StageAssembleReport
)

// фиксированные целевые проценты прогресса по завершении этапа;
// 100 выставляется только при завершении всей задачи
var stageProgress = [...]int{
	StageParse:          10,
	StageIdentifyAssets: 30,
	StageAnalyzeThreats: 50,
	StageAssessRisk:     75,
	StageAssembleReport: 90,
}

var stageLabels = [...]string{
	StageParse:          "Разбор документов",
	StageIdentifyAssets: "Идентификация активов",
	StageAnalyzeThreats: "Анализ угроз",
	StageAssessRisk:     "Оценка рисков",
	StageAssembleReport: "Формирование отчёта",
}

// короткие имена этапов для аннотаций деградации и журнала
var stageNames = [...]string{
	StageParse:          "parse",
	StageIdentifyAssets: "assets",
	StageAnalyzeThreats: "threats",
	StageAssessRisk:     "risks",
	StageAssembleReport: "report",
}

func (s Stage) Progress() int { return stageProgress[s] }
func (s Stage) Label() string { return stageLabels[s] }
func (s Stage) Name() string  { return stageNames[s] }

// ProgressDone — прогресс завершённой задачи
const ProgressDone = 100
