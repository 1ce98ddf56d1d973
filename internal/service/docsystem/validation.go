package docsystem

import (
	"regexp"
	"strings"

	"dealdesk/internal/config"
	"dealdesk/internal/domain"
	docsysSvc "dealdesk/internal/domain/services/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var noSlashes = regexp.MustCompile(`^[^/]+$`)

// nodeNameRules apply to every file and folder name
func nodeNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("name cannot be empty"),
		validation.RuneLength(1, config.MaxNodeNameLength),
		validation.Match(noSlashes).Error("name cannot contain slashes"),
	}
}

func validateCreateFolder(req *docsysSvc.CreateFolderRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	return asValidationError(validation.ValidateStruct(req,
		validation.Field(&req.DealID, validation.Required),
		validation.Field(&req.Name, nodeNameRules()...),
		validation.Field(&req.CreatedBy, validation.Required),
	))
}

func validateCreateFile(req *docsysSvc.CreateFileRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	return asValidationError(validation.ValidateStruct(req,
		validation.Field(&req.DealID, validation.Required),
		validation.Field(&req.Name, nodeNameRules()...),
		validation.Field(&req.StoragePath, validation.Required, validation.RuneLength(1, config.MaxStoragePathLength)),
		validation.Field(&req.ByteSize, validation.Min(int64(0))),
		validation.Field(&req.MediaType, validation.Required),
		validation.Field(&req.CreatedBy, validation.Required),
	))
}

func validateReplaceContent(req *docsysSvc.ReplaceContentRequest) error {
	return asValidationError(validation.ValidateStruct(req,
		validation.Field(&req.StoragePath, validation.Required, validation.RuneLength(1, config.MaxStoragePathLength)),
		validation.Field(&req.ByteSize, validation.Min(int64(0))),
		validation.Field(&req.MediaType, validation.Required),
	))
}

func validateNodeName(name string) error {
	return asValidationError(validation.Validate(name, nodeNameRules()...))
}

func validateCreateRequirement(req *docsysSvc.CreateRequirementRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	return asValidationError(validation.ValidateStruct(req,
		validation.Field(&req.DealID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, config.MaxRequirementNameLength)),
		validation.Field(&req.Category, validation.Required, validation.RuneLength(1, config.MaxCategoryLength)),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxDescriptionLength)),
	))
}

// asValidationError converts ozzo errors into a domain.ValidationError
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	return &domain.ValidationError{Message: err.Error()}
}
