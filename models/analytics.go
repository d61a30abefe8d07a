package models

// StageSummary 单个阶段的汇总
type StageSummary struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// PipelineStats 管道看板统计
type PipelineStats struct {
	TotalCount int     `json:"totalCount"`
	TotalValue float64 `json:"totalValue"`
	OpenCount  int     `json:"openCount"`
	OpenValue  float64 `json:"openValue"`
}

// PipelineAnalytics 管道分析结果，每次请求全量重算
type PipelineAnalytics struct {
	WinRate            float64        `json:"winRate"`
	AvgDealValue       float64        `json:"avgDealValue"`
	Forecast           float64        `json:"forecast"`
	TotalPipelineValue float64        `json:"totalPipelineValue"`
	ByStage            []StageSummary `json:"byStage"`
}
