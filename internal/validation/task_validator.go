package validation

const (
	TitleMaxLength       = 255
	DescriptionMaxLength = 2000
)

// TaskValidator provides validation for Task-related operations
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// ValidateTitle validates a task title for creation or update
func (tv *TaskValidator) ValidateTitle(title string) error {
	validationError := NewValidationError()
	trimmed := tv.validator.TrimAndValidateString(title)

	if !tv.validator.IsNonEmptyString(trimmed) {
		validationError.AddRequiredError("title")
		return validationError
	}
	if !tv.validator.IsValidStringLength(trimmed, 1, TitleMaxLength) {
		validationError.AddInvalidLengthError("title", trimmed, 1, TitleMaxLength)
	}
	if tv.validator.HasControlCharacters(trimmed) {
		validationError.AddInvalidCharacterError("title", trimmed)
	}

	return validationError.OrNil()
}

// ValidateDescription allows empty descriptions but bounds their length
func (tv *TaskValidator) ValidateDescription(description string) error {
	validationError := NewValidationError()
	if !tv.validator.IsValidStringLength(description, 0, DescriptionMaxLength) {
		validationError.AddInvalidLengthError("description", description, 0, DescriptionMaxLength)
	}
	return validationError.OrNil()
}

// ValidateTaskForCreation validates every field of a new task
func (tv *TaskValidator) ValidateTaskForCreation(title, description string, folderID int64) error {
	validationError := NewValidationError()
	validationError.Merge(tv.ValidateTitle(title))
	validationError.Merge(tv.ValidateDescription(description))
	if folderID < 0 {
		validationError.AddInvalidValueError("folder_id", folderID, "must be a positive integer")
	}
	return validationError.OrNil()
}

// ValidateTaskForUpdate validates the fields present in an edit. Nil fields
// are left unchanged.
func (tv *TaskValidator) ValidateTaskForUpdate(id int64, title, description *string) error {
	validationError := NewValidationError()
	validationError.Merge(tv.ValidateTaskID(id))
	if title != nil {
		validationError.Merge(tv.ValidateTitle(*title))
	}
	if description != nil {
		validationError.Merge(tv.ValidateDescription(*description))
	}
	return validationError.OrNil()
}

// ValidateTaskID validates a task ID
func (tv *TaskValidator) ValidateTaskID(id int64) error {
	if !tv.validator.IsValidID(id) {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("task_id", id, "must be a positive integer")
		return validationError
	}
	return nil
}
