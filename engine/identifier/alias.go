package identifier

// ProjectID and TaskID are both identifier.ID under the hood — spec.md
// distinguishes them only by convention: a TaskID is a ProjectID extended by
// exactly one terminal segment (the task name within its owning project).
// They are type aliases, so they share the underlying parsing/comparison
// logic and the compiler does not tell them apart.
type (
	ProjectID = ID
	TaskID    = ID
)

// NewTaskID joins a ProjectID and a task name into a TaskID.
func NewTaskID(project ProjectID, name string) (TaskID, error) {
	return Join(project, name)
}
