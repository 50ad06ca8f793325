package config

type WorkerKeyStruct struct {
	QuizResultsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	QuizResultsQueue: "quiz_results_queue",
}
