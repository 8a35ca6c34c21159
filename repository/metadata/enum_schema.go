package metadata

const (
	RunStatusDoing uint = 1
	RunStatusDone  uint = 2
	RunStatusFail  uint = 3
)

const (
	FileRoleInput    uint = 1
	FileRoleArtifact uint = 2
)

const (
	ExtraTypeRunReport = "run_report"
)

func RunStatusName(status uint) string {
	switch status {
	case RunStatusDoing:
		return "doing"
	case RunStatusDone:
		return "done"
	case RunStatusFail:
		return "fail"
	}
	return "unknown"
}
