package config

type WorkerKeyStruct struct {
	PersistResponsesQueue string
	PersistReportsQueue   string
}

var WorkerKey = &WorkerKeyStruct{
	PersistResponsesQueue: "persist_responses_queue",
	PersistReportsQueue:   "persist_reports_queue",
}
