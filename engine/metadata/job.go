package metadata

/** @brief Describes a type of job */
type JobType int

const (
	/**
	 * @brief A general job that does not have any specific thread requirements.
	 */
	JOB_TYPE_GENERAL JobType = 0x02
	/**
	 * @brief A resource loading job, such as reading a style sheet or feature file.
	 */
	JOB_TYPE_RESOURCE_LOAD JobType = 0x04
	/**
	 * @brief A feature batch pushed through the extrusion filter.
	 */
	JOB_TYPE_EXTRUDE JobType = 0x08
)

/**
 * @brief Determines how urgent a job is. Jobs of equal priority run in
 * submission order.
 */
type JobPriority int

const (
	/** @brief The lowest-priority job, used for things that can wait to be done if need be. */
	JOB_PRIORITY_LOW JobPriority = iota
	/** @brief A normal-priority job. */
	JOB_PRIORITY_NORMAL
	/** @brief The highest-priority job. Should be used sparingly. */
	JOB_PRIORITY_HIGH
)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief The type of job. */
	JobType JobType
	/** @brief The priority of this job. */
	Priority JobPriority
	/** @brief Data passed to the entry point. */
	InputParams interface{}
	/** @brief Invoked when the job starts. Required. */
	OnStart func(params interface{}) (interface{}, error)
	/** @brief Invoked with the result when the job succeeds. Optional. */
	OnComplete func(result interface{})
	/** @brief Invoked with the error when the job fails. Optional. */
	OnFailure func(err error)
	/** @brief Invoked after either outcome. Optional. */
	OnCompletionCallback func()
}
