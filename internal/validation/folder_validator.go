package validation

const FolderNameMaxLength = 100

// FolderValidator checks folder input
type FolderValidator struct {
	validator *Validator
}

func NewFolderValidator() *FolderValidator {
	return &FolderValidator{validator: NewValidator()}
}

// ValidateName validates a folder name for creation or rename
func (fv *FolderValidator) ValidateName(name string) error {
	validationError := NewValidationError()
	trimmed := fv.validator.TrimAndValidateString(name)

	if !fv.validator.IsNonEmptyString(trimmed) {
		validationError.AddRequiredError("name")
		return validationError
	}
	if !fv.validator.IsValidStringLength(trimmed, 1, FolderNameMaxLength) {
		validationError.AddInvalidLengthError("name", trimmed, 1, FolderNameMaxLength)
	}
	if fv.validator.HasControlCharacters(trimmed) {
		validationError.AddInvalidCharacterError("name", trimmed)
	}
	return validationError.OrNil()
}

func (fv *FolderValidator) ValidateFolderID(id int64) error {
	if !fv.validator.IsValidID(id) {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("folder_id", id, "must be a positive integer")
		return validationError
	}
	return nil
}
