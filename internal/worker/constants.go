package worker

// Log messages
const (
	LogMsgWorkerJobFailed = "Worker job failed"

	LogMsgFeverRollStandby   = "Fever roll standby"
	LogMsgFeverRollApproach  = "Fever roll approach"
	LogMsgFeverRollStarting  = "Starting fever roll"
	LogMsgFeverRollCompleted = "Fever roll completed"
	LogMsgFeverRollFailed    = "Fever roll failed"
)
