package tasks

// TaskSchedulerInterface is the scheduler surface used by the main
// application and the API: lifecycle control plus manual task
// submission (forced reindex, on-demand cleanup).
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
