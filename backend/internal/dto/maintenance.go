package dto

// ── 运维命令结果 ──

// ReconcileReport 完成标记回写结果
type ReconcileReport struct {
	UsersScanned     int `json:"usersScanned"`
	FlagsSet         int `json:"flagsSet"`
	FlagsWithoutData int `json:"flagsWithoutSurvey"`
}

// DedupeReport 重复问卷清理结果
type DedupeReport struct {
	Before  int `json:"before"`
	After   int `json:"after"`
	Removed int `json:"removed"`
}
